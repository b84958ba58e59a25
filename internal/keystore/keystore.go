// Package keystore manages the lifecycle of the symmetric data key: a single
// 32-byte secret per installation, created lazily on first use and persisted
// in a secure credential store.
//
// Losing or replacing the key makes every blob encrypted under it permanently
// undecryptable, so providers never rotate or delete the key on their own.
package keystore

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/dkozyrev/docvault/internal/common"
)

// KeyStore is the single source of truth for the encryption key.
//
// GetOrCreate must be safe to call concurrently: two racing first calls must
// observe the same key, never create two different ones.
type KeyStore interface {
	// Has reports whether a key already exists, without generating one.
	Has(ctx context.Context) (bool, error)

	// GetOrCreate returns the existing key or generates, persists and
	// returns a fresh 32-byte key when none exists yet.
	GetOrCreate(ctx context.Context) ([]byte, error)

	// Get returns the existing key or common.ErrKeyNotFound. It never
	// generates.
	Get(ctx context.Context) ([]byte, error)

	// Delete removes the persisted key. Removing a key orphans all data
	// encrypted under it; intended for vault reset and tests only.
	Delete(ctx context.Context) error
}

// newKey generates a fresh random data key.
func newKey() ([]byte, error) {
	key := make([]byte, common.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}
