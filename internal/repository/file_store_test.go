package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), KeyProducts)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStoreSetManyThenGet(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.SetMany(ctx, map[string][]byte{
		KeyProducts: []byte(`[]`),
		KeySales:    []byte(`[{"id":"s1"}]`),
	}))

	got, err := store.Get(ctx, KeySales)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"s1"}]`, string(got))

	// one file per key and no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
	assert.ElementsMatch(t, []string{KeyProducts + ".json", KeySales + ".json"}, names)
}

func TestFileStoreOverwrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.SetMany(ctx, map[string][]byte{KeyLogs: []byte(`[1,2,3]`)}))
	require.NoError(t, store.SetMany(ctx, map[string][]byte{KeyLogs: []byte(`[]`)}))

	got, err := store.Get(ctx, KeyLogs)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestFileStoreCreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStoreHonorsCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.SetMany(ctx, map[string][]byte{KeyLogs: []byte(`[]`)}), context.Canceled)
	_, err = store.Get(ctx, KeyLogs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStoreBackedRepositorySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, NewSnapshotRepository(first).Save(ctx, sampleSnapshot()))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := NewSnapshotRepository(second).Load(ctx)
	require.NoError(t, err)

	assertSnapshotEqual(t, sampleSnapshot(), *got)
}
