package store

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeyAcceptsHexEncoded32ByteKey(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	key, ok := decodeKey(hex.EncodeToString(raw))
	require.True(t, ok)
	assert.Equal(t, raw, key)
}

func TestDecodeKeyAcceptsBase64Encoded32ByteKey(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(255 - i)
	}
	key, ok := decodeKey(base64.StdEncoding.EncodeToString(raw))
	require.True(t, ok)
	assert.Equal(t, raw, key)
}

func TestDecodeKeyRejectsOpaquePassphrase(t *testing.T) {
	_, ok := decodeKey("a-test-master-key")
	assert.False(t, ok)
}

func TestNewCipherBoxUsesDecodedKeyDirectlyAsMasterKey(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i * 3)
	}
	box := newCipherBox(hex.EncodeToString(raw))
	assert.Equal(t, raw, box.masterKey)
}

func TestNewCipherBoxHashesOpaquePassphrase(t *testing.T) {
	box := newCipherBox("a-test-master-key")
	assert.Len(t, box.masterKey, 32)
	assert.NotEqual(t, []byte("a-test-master-key"), box.masterKey)
}
