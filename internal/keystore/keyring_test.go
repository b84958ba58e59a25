package keystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/dkozyrev/docvault/internal/common"
)

func TestKeyringStore_Lifecycle(t *testing.T) {
	keyring.MockInit()

	ctx := context.Background()
	s := NewKeyringStore("docvault-test")

	ok, err := s.Has(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx)
	require.ErrorIs(t, err, common.ErrKeyNotFound)

	key, err := s.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Len(t, key, common.KeySize)

	again, err := s.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	require.NoError(t, s.Delete(ctx))
	require.NoError(t, s.Delete(ctx))

	ok, err = s.Has(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyringStore_ConcurrentGetOrCreate(t *testing.T) {
	keyring.MockInit()
	assertSingleKeyUnderRace(t, NewKeyringStore("docvault-test-race"))
}

func TestNewKeyringStore_DefaultService(t *testing.T) {
	s := NewKeyringStore("")
	assert.Equal(t, DefaultService, s.service)
}
