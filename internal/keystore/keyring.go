package keystore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/dkozyrev/docvault/internal/common"
)

// DefaultService is the credential-store entry name the key lives under.
const DefaultService = "docvault"

const keyringUser = "data-key"

// KeyringStore persists the data key in the OS credential store
// (macOS Keychain, Linux Secret Service, Windows Credential Manager).
type KeyringStore struct {
	mu      sync.Mutex
	service string
}

func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultService
	}
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Has(ctx context.Context) (bool, error) {
	_, err := keyring.Get(s.service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	return true, nil
}

func (s *KeyringStore) Get(ctx context.Context) ([]byte, error) {
	encoded, err := keyring.Get(s.service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, common.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode stored key: %w", err)
	}
	if len(key) != common.KeySize {
		return nil, fmt.Errorf("%w: %d bytes", common.ErrInvalidKeySize, len(key))
	}
	return key, nil
}

// GetOrCreate serializes key creation so racing first calls agree on one key.
// Reading an existing key is idempotent, so the lock only matters on first use.
func (s *KeyringStore) GetOrCreate(ctx context.Context) ([]byte, error) {
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

	if err := keyring.Set(s.service, keyringUser, base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	return key, nil
}

func (s *KeyringStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := keyring.Delete(s.service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	return nil
}
