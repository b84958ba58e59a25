package cryptox

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkozyrev/docvault/internal/keystore"
)

func TestIsLikelyEncrypted_FalseOnEmpty(t *testing.T) {
	assert.False(t, IsLikelyEncrypted(nil))
	assert.False(t, IsLikelyEncrypted([]byte{}))
}

func TestIsLikelyEncrypted_FalseOnKnownSignatures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg", append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)},
		{"png", append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)},
		{"gif", []byte("GIF89a......")},
		{"pdf", []byte("%PDF-1.7 ....")},
		{"zip", append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 64)...)},
		{"gzip", append([]byte{0x1F, 0x8B}, make([]byte, 64)...)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, IsLikelyEncrypted(tc.data))
		})
	}
}

func TestIsLikelyEncrypted_FalseOnLowDiversity(t *testing.T) {
	assert.False(t, IsLikelyEncrypted(bytes.Repeat([]byte{'A'}, 1024)))
	assert.False(t, IsLikelyEncrypted(bytes.Repeat([]byte{0x00, 0x01}, 512)))
}

func TestIsLikelyEncrypted_TrueOnEngineOutput(t *testing.T) {
	e := NewEngine(keystore.NewMemoryStore())
	ctx := context.Background()

	plaintext := make([]byte, 1024)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	blob, err := e.Encrypt(ctx, plaintext)
	require.NoError(t, err)

	assert.True(t, IsLikelyEncrypted(blob))

	// a low-entropy plaintext still produces high-entropy ciphertext
	blob, err = e.Encrypt(ctx, bytes.Repeat([]byte{'A'}, 1024))
	require.NoError(t, err)

	assert.True(t, IsLikelyEncrypted(blob))
}
