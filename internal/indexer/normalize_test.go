package indexer

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"retrochain-indexer/internal/rpcclient"
)

func TestMaybeDecodeTextDecodesValidBase64UTF8(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("action"))
	text := maybeDecodeText(raw)
	require.NotNil(t, text)
	require.Equal(t, "action", *text)
}

func TestMaybeDecodeTextFallsBackOnBadBase64(t *testing.T) {
	raw := "not-valid-base64!!"
	text := maybeDecodeText(raw)
	require.NotNil(t, text)
	require.Equal(t, raw, *text)
}

func TestMaybeDecodeTextFallsBackOnNonUTF8(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})
	text := maybeDecodeText(raw)
	require.NotNil(t, text)
	require.Equal(t, raw, *text)
}

func TestMaybeDecodeTextFallsBackOnControlBytes(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02})
	text := maybeDecodeText(raw)
	require.NotNil(t, text)
	require.Equal(t, raw, *text)
}

func TestMaybeDecodeTextNilForEmpty(t *testing.T) {
	require.Nil(t, maybeDecodeText(""))
}

func TestNormalizeAttributeValueTextEqualsValueOnNonDecodablePath(t *testing.T) {
	attr := normalizeAttribute(rpcclient.Attribute{
		Key:   "action",
		Value: "not-base64-either!!",
	})
	require.Equal(t, "action", attr.Key)
	require.Equal(t, "not-base64-either!!", attr.Value)
	require.NotNil(t, attr.ValueText)
	require.Equal(t, attr.Value, *attr.ValueText)
}
