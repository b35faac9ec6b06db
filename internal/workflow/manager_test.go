package workflow

import (
	"context"
	"errors"
	"testing"

	"creatorpack/internal/logging"
	"creatorpack/internal/queue"
	"creatorpack/internal/services"
	"creatorpack/internal/stage"
	"creatorpack/internal/testsupport"
)

// fakeHandler advances items without doing real work.
type fakeHandler struct {
	name    string
	execErr error
	execFn  func(*queue.Item) error
	calls   int
}

func (h *fakeHandler) Prepare(ctx context.Context, item *queue.Item) error { return nil }

func (h *fakeHandler) Execute(ctx context.Context, item *queue.Item) error {
	h.calls++
	if h.execFn != nil {
		return h.execFn(item)
	}
	return h.execErr
}

func (h *fakeHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(h.name)
}

func passingStages() (StageSet, map[string]*fakeHandler) {
	handlers := map[string]*fakeHandler{
		"gating":       {name: "gating"},
		"transcribing": {name: "transcribing"},
		"planning":     {name: "planning"},
		"exporting":    {name: "exporting"},
	}
	return StageSet{
		Gater:       handlers["gating"],
		Transcriber: handlers["transcribing"],
		Planner:     handlers["planning"],
		Exporter:    handlers["exporting"],
	}, handlers
}

func TestRunBatchAdvancesToCompleted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set, handlers := passingStages()
	manager := NewManager(cfg, store, logging.NewNop(), set)

	item := testsupport.NewAsset(t, store, "local", "talk.mp4", "job-abcdefabcdef")
	if err := manager.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	refreshed, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != queue.StatusCompleted {
		t.Fatalf("Status = %s, want completed", refreshed.Status)
	}
	for name, handler := range handlers {
		if handler.calls != 1 {
			t.Fatalf("handler %s called %d times", name, handler.calls)
		}
	}
}

func TestRunBatchStopsAfterPlanned(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set, handlers := passingStages()
	manager := NewManager(cfg, store, logging.NewNop(), set, WithStopAfter(queue.StatusPlanned))

	item := testsupport.NewAsset(t, store, "local", "talk.mp4", "job-abcdefabcdef")
	if err := manager.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	refreshed, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != queue.StatusPlanned {
		t.Fatalf("Status = %s, want planned", refreshed.Status)
	}
	if handlers["exporting"].calls != 0 {
		t.Fatal("export stage should not run in dry-run mode")
	}
}

func TestRunBatchRoutesValidationErrorsToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set, _ := passingStages()
	set.Transcriber = &fakeHandler{
		name:    "transcribing",
		execErr: services.Wrap(services.ErrValidation, "transcribing", "probe", "no audio", nil),
	}
	manager := NewManager(cfg, store, logging.NewNop(), set)

	item := testsupport.NewAsset(t, store, "local", "talk.mp4", "job-abcdefabcdef")
	if err := manager.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	refreshed, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != queue.StatusReview {
		t.Fatalf("Status = %s, want review", refreshed.Status)
	}
	if refreshed.ReviewReason == "" {
		t.Fatal("expected review reason")
	}
}

func TestRunBatchMarksTransientErrorsFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set, _ := passingStages()
	set.Gater = &fakeHandler{
		name:    "gating",
		execErr: services.Wrap(services.ErrExternalTool, "gating", "probe", "ffprobe exploded", errors.New("exit 1")),
	}
	manager := NewManager(cfg, store, logging.NewNop(), set)

	item := testsupport.NewAsset(t, store, "local", "talk.mp4", "job-abcdefabcdef")
	if err := manager.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	refreshed, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != queue.StatusFailed {
		t.Fatalf("Status = %s, want failed", refreshed.Status)
	}
	if manager.LastError() == nil {
		t.Fatal("expected LastError to record the stage failure")
	}
}

func TestRunBatchHandlerClaimsReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set, handlers := passingStages()
	set.Gater = &fakeHandler{
		name: "gating",
		execFn: func(item *queue.Item) error {
			item.SetReview("license rejected")
			return nil
		},
	}
	manager := NewManager(cfg, store, logging.NewNop(), set)

	item := testsupport.NewAsset(t, store, "local", "talk.mp4", "job-abcdefabcdef")
	if err := manager.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	refreshed, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != queue.StatusReview {
		t.Fatalf("Status = %s, want review", refreshed.Status)
	}
	if handlers["transcribing"].calls != 0 {
		t.Fatal("review items must not continue through the pipeline")
	}
}

func TestRunBatchProcessesMultipleAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.AssetParallelism = 2
	store := testsupport.MustOpenStore(t, cfg)
	set, _ := passingStages()
	manager := NewManager(cfg, store, logging.NewNop(), set)

	for i := 0; i < 3; i++ {
		testsupport.NewAsset(t, store, "local", "talk.mp4", "job-abcdefabcdef")
	}
	if err := manager.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	completed, err := store.ItemsByStatus(context.Background(), queue.StatusCompleted)
	if err != nil {
		t.Fatalf("ItemsByStatus: %v", err)
	}
	if len(completed) != 3 {
		t.Fatalf("expected 3 completed items, got %d", len(completed))
	}
}

func TestHealthCheckAggregatesStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set, _ := passingStages()
	set.Exporter = nil
	manager := NewManager(cfg, store, logging.NewNop(), set)

	results := manager.HealthCheck(context.Background())
	if len(results) != 4 {
		t.Fatalf("expected 4 health results, got %d", len(results))
	}
	if results[3].Ready {
		t.Fatal("missing handler must report unhealthy")
	}
}
