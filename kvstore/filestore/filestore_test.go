package filestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-bidagri-client/kvstore/filestore"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile", "storage.json")

	store, err := filestore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("UserjwtToken", "abc"))
	require.NoError(t, store.Set("decodedToken", `{"sub":"u1"}`))
	require.NoError(t, store.Remove("UserjwtToken"))

	reopened, err := filestore.Open(path)
	require.NoError(t, err)

	_, ok := reopened.Get("UserjwtToken")
	require.False(t, ok)

	claims, ok := reopened.Get("decodedToken")
	require.True(t, ok)
	require.Equal(t, `{"sub":"u1"}`, claims)
	require.Equal(t, []string{"decodedToken"}, reopened.Keys())
}

func TestFileStore_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	store, err := filestore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	matches, err := filepath.Glob(path + ".*.tmp")
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store, err := filestore.Open(path)
	require.NoError(t, err)
	require.Empty(t, store.Keys())

	require.NoError(t, store.Set("k", "v"))
	reopened, err := filestore.Open(path)
	require.NoError(t, err)

	v, ok := reopened.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}
