package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"hookboard/internal/storage"
	"hookboard/internal/storage/factory"
)

// NewTestDB opens a SQLite database in a temp dir, closed when the test ends.
func NewTestDB(t *testing.T) storage.Storage {
	t.Helper()

	// Create a temporary directory for the SQLite database
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	store, err := factory.NewStorageFromURI(context.Background(), "sqlite:"+dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Register cleanup function
	t.Cleanup(func() {
		store.Close()
		os.Remove(dbPath)
	})

	return store
}

// NewTestStore wraps a fresh test database in an EventStore.
func NewTestStore(t *testing.T) *storage.EventStore {
	t.Helper()
	return storage.NewEventStore(NewTestDB(t), nil, DiscardLogger())
}

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
