package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendAndQuery(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, Entry{Kind: KindProvision, RefID: "run-1", Status: "succeeded", DurationMS: 1200}))
	require.NoError(t, store.Append(ctx, Entry{Kind: KindLaunch, RefID: "job42", Status: "succeeded", ExitCode: 0, LogPath: "job42.txt", DurationMS: 50}))
	require.NoError(t, store.Append(ctx, Entry{Kind: KindLaunch, RefID: "job42", Status: "failed", ExitCode: 137, LogPath: "job42.txt", DurationMS: 10}))

	entries, err := store.ByRef(ctx, "job42")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, KindLaunch, entries[0].Kind)
	assert.Equal(t, 0, entries[0].ExitCode)
	assert.Equal(t, 137, entries[1].ExitCode)
	assert.Equal(t, "job42.txt", entries[1].LogPath)

	entries, err = store.ByRef(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreRecentNewestFirst(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for _, ref := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, Entry{Kind: KindLaunch, RefID: ref, Status: "succeeded"}))
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].RefID)
	assert.Equal(t, "b", entries[1].RefID)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), Entry{Kind: KindProvision, RefID: "run-1", Status: "failed"}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.ByRef(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
}
