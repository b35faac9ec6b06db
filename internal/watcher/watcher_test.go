package watcher_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"creatorpack/internal/logging"
	"creatorpack/internal/queue"
	"creatorpack/internal/testsupport"
	"creatorpack/internal/watcher"
)

func TestIsMediaFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/inbox/talk.mp4", true},
		{"/inbox/Talk.MKV", true},
		{"/inbox/podcast.flac", true},
		{"/inbox/notes.txt", false},
		{"/inbox/cover.jpg", false},
		{"/inbox/noext", false},
	}
	for _, tc := range cases {
		if got := watcher.IsMediaFile(tc.path); got != tc.want {
			t.Errorf("IsMediaFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestNewRequiresInbox(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := watcher.New(cfg, store, logging.NewNop()); err == nil {
		t.Fatal("expected error when inbox directory unset")
	}
}

func TestEnqueuesDroppedMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInbox())
	store := testsupport.MustOpenStore(t, cfg)

	w, err := watcher.New(cfg, store, logging.NewNop(), watcher.WithSettleTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	testsupport.WriteMedia(t, cfg.Paths.InboxDir, "dropped.mp4")

	item := waitForPending(t, store)
	if item.SourceKind != "local" {
		t.Errorf("SourceKind = %q, want local", item.SourceKind)
	}
	if filepath.Base(item.SourceValue) != "dropped.mp4" {
		t.Errorf("SourceValue = %q, want dropped.mp4 basename", item.SourceValue)
	}
	if item.JobID == "" {
		t.Error("expected job fingerprint on queued item")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestSweepEnqueuesExistingFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInbox())
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteMedia(t, cfg.Paths.InboxDir, "already-there.mkv")
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InboxDir, "ignore.txt"), 64)

	w, err := watcher.New(cfg, store, logging.NewNop(), watcher.WithSettleTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	item := waitForPending(t, store)
	if filepath.Base(item.SourceValue) != "already-there.mkv" {
		t.Errorf("SourceValue = %q, want already-there.mkv basename", item.SourceValue)
	}

	// The text file must never be queued.
	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("queued %d items, want 1", len(items))
	}
}

func waitForPending(t *testing.T, store *queue.Store) *queue.Item {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		items, err := store.ItemsByStatus(context.Background(), queue.StatusPending)
		if err != nil {
			t.Fatalf("ItemsByStatus: %v", err)
		}
		if len(items) > 0 {
			return items[0]
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("no pending item appeared")
	return nil
}
