package cryptox

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkozyrev/docvault/internal/common"
	"github.com/dkozyrev/docvault/internal/keystore"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(keystore.NewMemoryStore())
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	sweep := make([]byte, 256)
	for i := range sweep {
		sweep[i] = byte(i)
	}

	big := make([]byte, 100*1024)
	_, err := rand.Read(big)
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"one byte", []byte{0x42}},
		{"block sized", bytes.Repeat([]byte{0xAB}, aes.BlockSize)},
		{"full byte sweep", sweep},
		{"100KB random", big},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blob, err := e.Encrypt(ctx, tc.plaintext)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(blob), 2*aes.BlockSize)

			got, err := e.Decrypt(ctx, blob)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, got)
		})
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	plaintext := []byte("the same plaintext twice")

	a, err := e.Encrypt(ctx, plaintext)
	require.NoError(t, err)
	b, err := e.Encrypt(ctx, plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, a[:aes.BlockSize], b[:aes.BlockSize], "IVs must differ")
	assert.NotEqual(t, a, b, "full blobs must differ")
}

func TestEncrypt_NoPlaintextLeakage(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	jpegHeader := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	marker := []byte("TOP-SECRET-PASSPORT-NUMBER-123456")

	plaintext := append(append([]byte{}, jpegHeader...), bytes.Repeat(marker, 20)...)

	blob, err := e.Encrypt(ctx, plaintext)
	require.NoError(t, err)

	assert.False(t, bytes.Contains(blob, jpegHeader), "ciphertext contains plaintext file header")
	assert.False(t, bytes.Contains(blob, marker), "ciphertext contains plaintext marker")
}

func TestDecrypt_BlobShorterThanIV(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for size := 0; size < aes.BlockSize; size++ {
		blob := make([]byte, size)
		_, err := e.Decrypt(ctx, blob)
		assert.ErrorIs(t, err, common.ErrEncryption, "size %d", size)
	}
}

func TestDecrypt_TruncatedCiphertext(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// 16-byte plaintext ending in 0x00: the final ciphertext block is a pure
	// padding block, and the remaining block unpads to a 0x00 final byte.
	// Both whole-block and partial truncations are then deterministic.
	plaintext := append(bytes.Repeat([]byte{0x7E}, aes.BlockSize-1), 0x00)

	blob, err := e.Encrypt(ctx, plaintext)
	require.NoError(t, err)
	require.Len(t, blob, 3*aes.BlockSize) // IV + data block + padding block

	for cut := 1; cut < len(blob); cut++ {
		_, err := e.Decrypt(ctx, blob[:len(blob)-cut])
		assert.ErrorIs(t, err, common.ErrEncryption, "truncated by %d", cut)
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	plaintext := bytes.Repeat([]byte{0x7E}, aes.BlockSize)

	blob, err := e.Encrypt(ctx, plaintext)
	require.NoError(t, err)
	require.Len(t, blob, 3*aes.BlockSize)

	// Flips in the block feeding into the padding block corrupt the padding
	// deterministically.
	for i := aes.BlockSize; i < 2*aes.BlockSize; i++ {
		tampered := append([]byte{}, blob...)
		tampered[i] ^= 0x01

		_, err := e.Decrypt(ctx, tampered)
		assert.ErrorIs(t, err, common.ErrEncryption, "flipped byte %d", i)
	}

	// Flips in the final block garble it entirely. CBC padding can, with
	// small probability, still parse, but tampering must never yield the
	// original plaintext back.
	for i := 2 * aes.BlockSize; i < 3*aes.BlockSize; i++ {
		tampered := append([]byte{}, blob...)
		tampered[i] ^= 0x01

		got, err := e.Decrypt(ctx, tampered)
		if err == nil {
			assert.NotEqual(t, plaintext, got, "flipped byte %d decrypted to original", i)
		} else {
			assert.ErrorIs(t, err, common.ErrEncryption, "flipped byte %d", i)
		}
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	ctx := context.Background()
	a := NewEngine(keystore.NewMemoryStore())
	b := NewEngine(keystore.NewMemoryStore())

	blob, err := a.Encrypt(ctx, []byte("data bound to key A"))
	require.NoError(t, err)

	got, err := b.Decrypt(ctx, blob)
	if err == nil {
		// padding can parse by chance under a foreign key, but the result
		// must not be the original plaintext
		assert.NotEqual(t, []byte("data bound to key A"), got)
	} else {
		assert.ErrorIs(t, err, common.ErrEncryption)
	}
}

// countingStore wraps a KeyStore and counts fetches.
type countingStore struct {
	keystore.KeyStore
	mu      sync.Mutex
	fetches int
}

func (c *countingStore) GetOrCreate(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	c.fetches++
	c.mu.Unlock()
	return c.KeyStore.GetOrCreate(ctx)
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func TestEngine_KeyCaching(t *testing.T) {
	ctx := context.Background()
	cs := &countingStore{KeyStore: keystore.NewMemoryStore()}
	e := NewEngine(cs)

	_, err := e.Encrypt(ctx, []byte("one"))
	require.NoError(t, err)
	_, err = e.Encrypt(ctx, []byte("two"))
	require.NoError(t, err)

	assert.Equal(t, 1, cs.count(), "two encrypts must hit the keystore once")

	e.ClearCache()

	_, err = e.Encrypt(ctx, []byte("three"))
	require.NoError(t, err)

	assert.Equal(t, 2, cs.count(), "encrypt after ClearCache must re-fetch exactly once")
}

func TestEngine_ConcurrentFirstUse(t *testing.T) {
	ctx := context.Background()
	cs := &countingStore{KeyStore: keystore.NewMemoryStore()}
	e := NewEngine(cs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Encrypt(ctx, []byte("racing"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cs.count(), "first cache population must be single-flight")
}

func TestEngine_ClearCacheDuringRoundTrips(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(plaintext []byte) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				blob, err := e.Encrypt(ctx, plaintext)
				if !assert.NoError(t, err) {
					return
				}
				got, err := e.Decrypt(ctx, blob)
				if !assert.NoError(t, err, "round trip broke while racing ClearCache") {
					return
				}
				if !assert.Equal(t, plaintext, got) {
					return
				}
			}
		}(bytes.Repeat([]byte{byte('a' + i)}, 48))
	}

	deadline := time.After(200 * time.Millisecond)
loop:
	for {
		select {
		case <-deadline:
			break loop
		default:
			e.ClearCache()
		}
	}
	close(stop)
	wg.Wait()
}

func TestEnsureKeyInitialized(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	created, err := e.EnsureKeyInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, created, "first call creates the key")

	created, err = e.EnsureKeyInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, created, "second call finds an existing key")
}

func TestEncryptDecryptString_RoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []string{
		"",
		"plain ascii",
		"юникод и 漢字 🙂",
	}

	for _, s := range tests {
		encoded, err := e.EncryptString(ctx, s)
		require.NoError(t, err)
		if s != "" {
			assert.NotContains(t, encoded, s)
		}

		got, err := e.DecryptString(ctx, encoded)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDecryptString_InvalidBase64(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.DecryptString(context.Background(), "%%% not base64 %%%")
	assert.ErrorIs(t, err, common.ErrEncryption)
}
