package kvstore_test

import (
	"testing"

	"github.com/jrsteele09/go-bidagri-client/kvstore"
	"github.com/jrsteele09/go-bidagri-client/kvstore/memstore"
	"github.com/stretchr/testify/require"
)

func TestKeysWithPrefix(t *testing.T) {
	store := memstore.New()
	require.NoError(t, store.Set("lot:b", "2"))
	require.NoError(t, store.Set("lot:a", "1"))
	require.NoError(t, store.Set("decodedToken", "{}"))

	require.Equal(t, []string{"lot:a", "lot:b"}, kvstore.KeysWithPrefix(store, "lot:"))
	require.Empty(t, kvstore.KeysWithPrefix(store, "missing:"))
}

func TestRemovePrefix(t *testing.T) {
	store := memstore.New()
	require.NoError(t, store.Set("lot:a", "1"))
	require.NoError(t, store.Set("lot:b", "2"))
	require.NoError(t, store.Set("UserjwtToken", "raw"))

	removed, err := kvstore.RemovePrefix(store, "lot:")
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	require.Equal(t, []string{"UserjwtToken"}, store.Keys())
}

func TestMemStore_RemoveAbsentKey(t *testing.T) {
	store := memstore.New()
	require.NoError(t, store.Remove("never-set"))

	_, ok := store.Get("never-set")
	require.False(t, ok)
}
