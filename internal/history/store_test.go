package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(
		hclog.NewNullLogger(),
		WithPath(filepath.Join(t.TempDir(), "history.jsonl")),
	)
	require.NoError(t, err)

	return store
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	t.Run("custom path", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions(WithPath("/tmp/history.jsonl"))
		require.NoError(t, err)
		require.Equal(t, "/tmp/history.jsonl", opts.Path)
	})

	t.Run("empty path rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewOptions(WithPath("   "))
		require.Error(t, err)
		require.ErrorContains(t, err, "history path cannot be empty")
	})
}

func TestFileStore_SaveAndList(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	result := map[string]any{"status": "healthy", "total_issues": 0}

	id, err := store.Save(t.Context(), "full_diagnostic", "api", result, 1500*time.Millisecond)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	id2, err := store.Save(t.Context(), "quick_check", "cli", result, 200*time.Millisecond)
	require.NoError(t, err)
	require.NotEqual(t, id, id2)

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, id, entries[0].ID)
	require.Equal(t, "full_diagnostic", entries[0].CheckType)
	require.Equal(t, "api", entries[0].TriggeredBy)
	require.EqualValues(t, 1500, entries[0].ExecutionMSec)
	require.WithinDuration(t, time.Now().UTC(), entries[0].Timestamp, time.Minute)

	require.Equal(t, "quick_check", entries[1].CheckType)
	require.Equal(t, "cli", entries[1].TriggeredBy)
}

func TestFileStore_ListEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	entries, err := store.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFileStore_SaveCancelledContext(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := store.Save(ctx, "full_diagnostic", "api", nil, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_SaveUnencodableResult(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Save(t.Context(), "full_diagnostic", "api", func() {}, time.Second)
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to encode history entry")
}
