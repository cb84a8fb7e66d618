package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite pool plus a file lock that keeps a second engine
// instance from opening the same cache.
type DB struct {
	Pool *sql.DB
	lock *flock.Flock
}

func Open(path string) (*DB, error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("rule cache %s is in use by another engine instance", path)
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return &DB{Pool: pool, lock: lock}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	if d.lock != nil {
		_ = d.lock.Unlock()
	}
	return d.Pool.Close()
}

// SetState upserts one key of engine bookkeeping (last sync time, remote
// revision).
func (d *DB) SetState(ctx context.Context, k, v string) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO sync_state(k, v) VALUES(?, ?)
ON CONFLICT(k) DO UPDATE SET v=excluded.v;`, k, v)
	return err
}

// GetState reads one bookkeeping key; a missing key is "".
func (d *DB) GetState(ctx context.Context, k string) (string, error) {
	var v string
	err := d.Pool.QueryRowContext(ctx, `SELECT v FROM sync_state WHERE k=?;`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// Migrate creates the rule cache schema.
func (d *DB) Migrate() error {
	_, err := d.Pool.Exec(`
CREATE TABLE IF NOT EXISTS rules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL CHECK (kind IN ('location','company')),
  pattern TEXT NOT NULL,
  severity TEXT NOT NULL CHECK (severity IN ('red','amber')),
  message TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1,
  expires_at TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rules_kind ON rules(kind, active);

CREATE TABLE IF NOT EXISTS sync_state (
  k TEXT PRIMARY KEY,
  v TEXT NOT NULL
);
`)
	return err
}
