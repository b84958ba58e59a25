package keystore

import (
	"context"
	"sync"

	"github.com/dkozyrev/docvault/internal/common"
)

// MemoryStore keeps the key in memory only. For tests.
type MemoryStore struct {
	mu  sync.Mutex
	key []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Has(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key != nil, nil
}

func (s *MemoryStore) Get(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return nil, common.ErrKeyNotFound
	}
	out := make([]byte, len(s.key))
	copy(out, s.key)
	return out, nil
}

func (s *MemoryStore) GetOrCreate(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		key, err := newKey()
		if err != nil {
			return nil, err
		}
		s.key = key
	}
	out := make([]byte, len(s.key))
	copy(out, s.key)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = nil
	return nil
}
