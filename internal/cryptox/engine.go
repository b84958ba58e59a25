// Package cryptox implements the symmetric encryption engine: AES-256 in CBC
// mode with PKCS#7 padding and a fresh random IV per call. A blob on the wire
// is always `IV (16 bytes) || ciphertext`, no header, no length prefix.
//
// The engine caches the data key after the first keystore fetch. The cache is
// explicit, constructor-injected state, not a package global.
package cryptox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/dkozyrev/docvault/internal/common"
	"github.com/dkozyrev/docvault/internal/keystore"
)

// Engine performs authenticated-by-padding encrypt/decrypt of byte buffers
// and strings under the installation data key.
type Engine struct {
	ks keystore.KeyStore

	mu  sync.Mutex
	key []byte
}

func NewEngine(ks keystore.KeyStore) *Engine {
	return &Engine{ks: ks}
}

// cachedKey returns the cached data key, fetching it from the keystore on
// first use. The mutex makes the first population a single-flight: racing
// callers block until one fetch completes.
func (e *Engine) cachedKey(ctx context.Context) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.key != nil {
		return e.key, nil
	}

	key, err := e.ks.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	if len(key) != common.KeySize {
		return nil, fmt.Errorf("%w: %d bytes", common.ErrInvalidKeySize, len(key))
	}

	e.key = key
	return e.key, nil
}

// ClearCache drops the in-memory key. The persisted key is untouched; the
// next encrypt/decrypt re-fetches it.
//
// The slice is dropped, not zeroed: cachedKey hands the backing array to
// callers that keep using it after the mutex is released, so an in-flight
// Encrypt must still see the intact key.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.key = nil
}

// EnsureKeyInitialized makes sure a persisted key exists, returning true only
// when this call created one. Idempotent.
func (e *Engine) EnsureKeyInitialized(ctx context.Context) (bool, error) {
	existed, err := e.ks.Has(ctx)
	if err != nil {
		return false, err
	}

	if _, err := e.cachedKey(ctx); err != nil {
		return false, err
	}

	return !existed, nil
}

// Encrypt encrypts plaintext under the data key and returns IV||ciphertext.
// Every call draws a fresh random IV, so equal plaintexts never share one.
func (e *Engine) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	key, err := e.cachedKey(ctx)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: cipher init failed", common.ErrEncryption)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)

	blob := make([]byte, aes.BlockSize+len(padded))
	iv := blob[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("%w: iv generation failed", common.ErrEncryption)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(blob[aes.BlockSize:], padded)

	return blob, nil
}

// Decrypt reverses Encrypt. It fails with common.ErrEncryption when the blob
// is shorter than one IV, when the ciphertext is not a whole number of blocks
// (truncation), or when the padding is invalid after decryption (tampering or
// wrong key). Error messages never include plaintext or key material.
func (e *Engine) Decrypt(ctx context.Context, blob []byte) ([]byte, error) {
	if len(blob) < aes.BlockSize {
		return nil, fmt.Errorf("%w: blob shorter than iv", common.ErrEncryption)
	}

	iv := blob[:aes.BlockSize]
	ciphertext := blob[aes.BlockSize:]

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: truncated ciphertext", common.ErrEncryption)
	}

	key, err := e.cachedKey(ctx)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: cipher init failed", common.ErrEncryption)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	return pkcs7Unpad(padded, aes.BlockSize)
}

// EncryptString encrypts a UTF-8 string and returns the blob base64-encoded
// for storage as text.
func (e *Engine) EncryptString(ctx context.Context, s string) (string, error) {
	blob, err := e.Encrypt(ctx, []byte(s))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptString reverses EncryptString.
func (e *Engine) DecryptString(ctx context.Context, s string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64 blob", common.ErrEncryption)
	}

	plaintext, err := e.Decrypt(ctx, blob)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
