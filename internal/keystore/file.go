package keystore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dkozyrev/docvault/internal/common"
)

// FileStore persists the data key base64-encoded in a 0600 file inside the
// app-private directory. It is the fallback for environments without an OS
// credential store (headless boxes, CI).
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Has(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
}

func (s *FileStore) Get(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, common.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}

	key, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode stored key: %w", err)
	}
	if len(key) != common.KeySize {
		return nil, fmt.Errorf("%w: %d bytes", common.ErrInvalidKeySize, len(key))
	}
	return key, nil
}

func (s *FileStore) GetOrCreate(ctx context.Context) ([]byte, error) {
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

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	if err := os.WriteFile(s.path, []byte(base64.StdEncoding.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	return key, nil
}

func (s *FileStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", common.ErrKeyStoreUnavailable, err)
	}
	return nil
}
