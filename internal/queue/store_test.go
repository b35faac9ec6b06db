package queue

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewAssetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewAsset(ctx, "local", "/media/talk.mp4", "job-abc123def456")
	if err != nil {
		t.Fatalf("NewAsset: %v", err)
	}
	if item.ID == 0 {
		t.Error("item ID not assigned")
	}
	if item.Status != StatusPending {
		t.Errorf("status = %q, want pending", item.Status)
	}
	if item.SourceKind != "local" || item.SourceValue != "/media/talk.mp4" {
		t.Errorf("source = %q/%q", item.SourceKind, item.SourceValue)
	}
	if item.CreatedAt.IsZero() {
		t.Error("created_at not recorded")
	}
}

func TestUpdatePersistsArtifacts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewAsset(ctx, "commons", "https://commons.wikimedia.org/wiki/File:A.webm", "job-1")
	if err != nil {
		t.Fatalf("NewAsset: %v", err)
	}

	item.Status = StatusGated
	item.Title = "Apollo 11 Launch"
	item.LicenseCode = "cc-by"
	item.LicenseName = "CC-BY 4.0"
	item.AttributionRequired = true
	item.DurationSeconds = 642.5
	item.TranscriptJSON = `{"language":"en","segments":[]}`
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusGated {
		t.Errorf("status = %q", got.Status)
	}
	if !got.AttributionRequired {
		t.Error("attribution flag lost")
	}
	if got.DurationSeconds != 642.5 {
		t.Errorf("duration = %v", got.DurationSeconds)
	}
	if got.TranscriptJSON == "" {
		t.Error("transcript JSON lost")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetByID(context.Background(), 999); err == nil {
		t.Error("expected not-found error")
	}
}

func TestNextForStatusOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, _ := store.NewAsset(ctx, "local", "/a.mp4", "job-1")
	if _, err := store.NewAsset(ctx, "local", "/b.mp4", "job-1"); err != nil {
		t.Fatalf("NewAsset: %v", err)
	}

	next, err := store.NextForStatus(ctx, StatusPending)
	if err != nil {
		t.Fatalf("NextForStatus: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Errorf("next = %+v, want oldest item %d", next, first.ID)
	}

	if none, err := store.NextForStatus(ctx, StatusCompleted); err != nil || none != nil {
		t.Errorf("NextForStatus(completed) = %v, %v; want nil, nil", none, err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a, _ := store.NewAsset(ctx, "local", "/a.mp4", "job-1")
	b, _ := store.NewAsset(ctx, "local", "/b.mp4", "job-1")
	b.Status = StatusCompleted
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}

	pending, err := store.List(ctx, StatusPending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != a.ID {
		t.Errorf("pending list = %+v", pending)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all list length = %d", len(all))
	}
}

func TestResetStuckRollsBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, _ := store.NewAsset(ctx, "local", "/a.mp4", "job-1")
	item.Status = StatusTranscribing
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.ResetStuck(ctx); err != nil {
		t.Fatalf("ResetStuck: %v", err)
	}
	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusGated {
		t.Errorf("status after reset = %q, want gated", got.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, _ := store.NewAsset(ctx, "local", "/a.mp4", "job-1")
	item.SetFailed("external tool exploded")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reset, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if reset != 1 {
		t.Errorf("reset count = %d, want 1", reset)
	}
	got, _ := store.GetByID(ctx, item.ID)
	if got.Status != StatusPending || got.ErrorMessage != "" {
		t.Errorf("item after retry = %+v", got)
	}
}

func TestHealthCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.NewAsset(ctx, "local", "/x.mp4", "job-1"); err != nil {
			t.Fatalf("NewAsset: %v", err)
		}
	}
	item, _ := store.NewAsset(ctx, "local", "/y.mp4", "job-1")
	item.SetFailed("boom")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 4 || health.Pending != 3 || health.Failed != 1 {
		t.Errorf("health = %+v", health)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus("  PENDING "); !ok || status != StatusPending {
		t.Errorf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := ParseStatus("unknown"); ok {
		t.Error("unknown status accepted")
	}
}

func TestFailureStatusClassification(t *testing.T) {
	if got := FailureStatus(errKind("validation")); got != StatusReview {
		t.Errorf("validation -> %q, want review", got)
	}
	if got := FailureStatus(errKind("external")); got != StatusFailed {
		t.Errorf("external -> %q, want failed", got)
	}
}

type errKind string

func (e errKind) Error() string     { return string(e) }
func (e errKind) ErrorKind() string { return string(e) }
