package keystore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/dkozyrev/docvault/internal/common"
)

// argon2id parameters for the key-encryption key.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
	saltSize   = 16
)

// wrappedKey is the on-disk envelope for a passphrase-protected data key:
// the random data key encrypted with AES-GCM under an argon2id-derived KEK.
type wrappedKey struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	WrappedKey []byte `json:"wrapped_key"`
}

// PassphraseStore keeps the data key wrapped under a passphrase-derived key.
// The data key itself stays random; changing the passphrase only re-wraps it.
type PassphraseStore struct {
	mu         sync.Mutex
	path       string
	passphrase []byte
}

func NewPassphraseStore(path string, passphrase []byte) *PassphraseStore {
	return &PassphraseStore{path: path, passphrase: passphrase}
}

func (s *PassphraseStore) Has(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
}

func (s *PassphraseStore) Get(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, common.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}

	var env wrappedKey
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse key envelope: %w", err)
	}

	kek := argon2.IDKey(s.passphrase, env.Salt, kdfTime, kdfMemory, kdfThreads, common.KeySize)

	aead, err := newGCM(kek)
	if err != nil {
		return nil, err
	}

	key, err := aead.Open(nil, env.Nonce, env.WrappedKey, nil)
	if err != nil {
		// GCM authentication failure: wrong passphrase or corrupt envelope.
		return nil, common.ErrInvalidPassphrase
	}
	if len(key) != common.KeySize {
		return nil, fmt.Errorf("%w: %d bytes", common.ErrInvalidKeySize, len(key))
	}
	return key, nil
}

func (s *PassphraseStore) GetOrCreate(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.Get(ctx)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, common.ErrKeyNotFound) {
		return nil, err
	}

	key, err = newKey()
	if err != nil {
		return nil, err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	kek := argon2.IDKey(s.passphrase, salt, kdfTime, kdfMemory, kdfThreads, common.KeySize)

	aead, err := newGCM(kek)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	env := wrappedKey{
		Salt:       salt,
		Nonce:      nonce,
		WrappedKey: aead.Seal(nil, nonce, key, nil),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal key envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	return key, nil
}

func (s *PassphraseStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	return nil
}

func newGCM(kek []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}
