package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMigrateAndState(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "advisor.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	v, err := db.GetState(ctx, "last_synced_at")
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, db.SetState(ctx, "last_synced_at", "2026-08-27T10:00:00Z"))
	require.NoError(t, db.SetState(ctx, "last_synced_at", "2026-08-27T11:00:00Z"))

	v, err = db.GetState(ctx, "last_synced_at")
	require.NoError(t, err)
	require.Equal(t, "2026-08-27T11:00:00Z", v)
}

func TestSecondOpenIsRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = Open(path)
	require.Error(t, err, "the file lock must keep a second instance out")
}
