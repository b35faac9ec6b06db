package testsupport

import (
	"context"
	"testing"

	"creatorpack/internal/config"
	"creatorpack/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewAsset creates a queued asset for tests using the provided store.
func NewAsset(t testing.TB, store *queue.Store, kind, value, jobID string) *queue.Item {
	t.Helper()

	item, err := store.NewAsset(context.Background(), kind, value, jobID)
	if err != nil {
		t.Fatalf("store.NewAsset: %v", err)
	}
	return item
}
