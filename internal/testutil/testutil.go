// Package testutil provides shared test helpers for preference stores and loggers.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/hotlines/internal/kv"
	"github.com/starford/hotlines/internal/prefs"
)

// Logger returns a logger that discards everything.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SQLitePath creates a temporary SQLite file name that is automatically cleaned up.
func SQLitePath(t *testing.T) string {
	t.Helper()
	dbFile, err := os.CreateTemp("", "hotlines-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})
	return dbFile.Name()
}

// Store returns a preference store over an in-memory provider.
func Store(t *testing.T) *prefs.Store {
	t.Helper()
	return prefs.Open(kv.NewMemory(), Logger(t))
}

// SQLiteStore returns a preference store persisted in a temporary SQLite file.
func SQLiteStore(t *testing.T) (*prefs.Store, string) {
	t.Helper()
	path := SQLitePath(t)
	p, err := kv.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return prefs.Open(p, Logger(t)), path
}
