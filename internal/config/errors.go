package config

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrConfig marks a misconfiguration (spec §7 "Config" error kind). Callers
// that see an error wrapping ErrConfig should exit with code 2.
var ErrConfig = errors.New("config")

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".retrochain/indexer.sqlite"
	}
	return filepath.Join(home, ".retrochain", "indexer.sqlite")
}
