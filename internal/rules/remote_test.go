package rules

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sourcing-advisor/internal/store"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	cache, err := NewCache(db, nil)
	require.NoError(t, err)
	return cache
}

func TestRemoteSyncReplacesRuleSet(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/teams/emea-sourcing/rules", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"revision": "42",
			"locations": [
				{"pattern": "Poland, Polska", "severity": "amber", "message": "Check agreement", "active": true}
			],
			"companies": [
				{"pattern": "Acme", "severity": "red", "active": true, "expiresAt": "2027-01-31"},
				{"pattern": "Globex", "severity": "red", "active": true, "expiresAt": "not-a-date"}
			]
		}`))
	}))
	defer srv.Close()

	cache := newTestCache(t)
	rc := NewRemoteClient(srv.URL, "emea-sourcing", "tok-123")
	require.NoError(t, rc.Sync(context.Background(), cache))

	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, cache.List(KindLocation), 1)

	// the bad-expiry row is dropped, not stored open-ended
	comp := cache.List(KindCompany)
	require.Len(t, comp, 1)
	require.Equal(t, "Acme", comp[0].Pattern)
	require.NotNil(t, comp[0].ExpiresAt)
}

func TestRemoteSyncFailureLeavesCache(t *testing.T) {
	cache := newTestCache(t)
	seeded, err := cache.Create(context.Background(), Rule{
		Kind: KindLocation, Pattern: "Poland", Severity: SeverityAmber, Active: true,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rc := NewRemoteClient(srv.URL, "emea-sourcing", "tok-123")
	require.Error(t, rc.Sync(context.Background(), cache))

	kept := cache.List(KindLocation)
	require.Len(t, kept, 1)
	require.Equal(t, seeded.ID, kept[0].ID)
}
