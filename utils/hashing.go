package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// GenerateSHA256Hash returns the lowercase hex SHA-256 digest of text's
// bytes. Used by internal/indexer to hash raw transaction bytes (the
// indexer upper-cases the result itself, per spec §4.2's tx_hash format).
func GenerateSHA256Hash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
