package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"creatorpack/internal/config"
	"creatorpack/internal/logging"
	"creatorpack/internal/queue"
	"creatorpack/internal/services"
	"creatorpack/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager
// orchestrates.
type StageSet struct {
	Gater       stage.Handler
	Transcriber stage.Handler
	Planner     stage.Handler
	Exporter    stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing using the registered stages.
type Manager struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	stages []pipelineStage

	stopAfter queue.Status

	mu       sync.RWMutex
	lastErr  error
	lastItem *queue.Item
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithStopAfter halts processing once items reach the given status.
// The run command's dry-run mode stops after planning.
func WithStopAfter(status queue.Status) ManagerOption {
	return func(m *Manager) {
		m.stopAfter = status
	}
}

// NewManager constructs a workflow manager from the stage set.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, set StageSet, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		store:  store,
		logger: logger.With(slog.String(logging.FieldComponent, "workflow")),
		stages: []pipelineStage{
			{name: "gating", handler: set.Gater, startStatus: queue.StatusPending, processingStatus: queue.StatusGating, doneStatus: queue.StatusGated},
			{name: "transcribing", handler: set.Transcriber, startStatus: queue.StatusGated, processingStatus: queue.StatusTranscribing, doneStatus: queue.StatusTranscribed},
			{name: "planning", handler: set.Planner, startStatus: queue.StatusTranscribed, processingStatus: queue.StatusPlanning, doneStatus: queue.StatusPlanned},
			{name: "exporting", handler: set.Exporter, startStatus: queue.StatusPlanned, processingStatus: queue.StatusExporting, doneStatus: queue.StatusCompleted},
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunBatch processes every actionable item through the pipeline until
// all items are terminal (or at the stop-after status). Within one
// stage, assets are processed in parallel bounded by the configured
// asset parallelism.
func (m *Manager) RunBatch(ctx context.Context) error {
	runToken := uuid.NewString()
	logger := m.logger.With(slog.String(logging.FieldRunToken, runToken))

	if err := m.store.ResetStuck(ctx); err != nil {
		return fmt.Errorf("reset stuck items: %w", err)
	}

	for _, stg := range m.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		items, err := m.store.ItemsByStatus(ctx, stg.startStatus)
		if err != nil {
			return fmt.Errorf("list %s items: %w", stg.startStatus, err)
		}
		if len(items) == 0 {
			continue
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(m.parallelism())
		for _, item := range items {
			item := item
			group.Go(func() error {
				return m.processItem(groupCtx, logger, stg, item)
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}

		if m.stopAfter != "" && stg.doneStatus == m.stopAfter {
			logger.Info("stopping batch early",
				slog.String("stop_after", string(m.stopAfter)))
			return nil
		}
	}
	return nil
}

// processItem runs one stage for one item, persisting every transition.
// Stage errors are absorbed into the item's terminal status so one bad
// asset cannot sink the batch; infrastructure errors propagate.
func (m *Manager) processItem(ctx context.Context, logger *slog.Logger, stg pipelineStage, item *queue.Item) error {
	if stg.handler == nil {
		item.SetFailed(fmt.Sprintf("stage %s missing handler", stg.name))
		if err := m.store.Update(ctx, item); err != nil {
			return fmt.Errorf("persist missing handler failure: %w", err)
		}
		m.setLastError(errors.New("stage handler unavailable"))
		return nil
	}

	stageCtx := services.WithStage(services.WithAssetID(ctx, item.ID), stg.name)
	stageLogger := logging.WithContext(stageCtx, logger)

	item.Status = stg.processingStatus
	item.ErrorMessage = ""
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	stageLogger.Info("stage started",
		slog.String("status", string(stg.processingStatus)),
		slog.String("source_value", strings.TrimSpace(item.SourceValue)))

	if err := stg.handler.Prepare(stageCtx, item); err != nil {
		return m.handleStageFailure(stageCtx, stageLogger, stg, item, err)
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := stg.handler.Execute(stageCtx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		return m.handleStageFailure(stageCtx, stageLogger, stg, item, err)
	}

	// Handlers may claim a terminal status themselves, e.g. gating
	// routing a rejected license to review.
	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	m.setLastItem(item)
	stageLogger.Info("stage completed",
		slog.String("next_status", string(item.Status)))
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, logger *slog.Logger, stg pipelineStage, item *queue.Item, stageErr error) error {
	status := services.FailureStatus(stageErr)
	if status == queue.StatusReview {
		item.SetReview(stageErr.Error())
	} else {
		item.SetFailed(stageErr.Error())
	}
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist stage failure: %w", err)
	}
	logger.Error("stage failed",
		slog.String("terminal_status", string(item.Status)),
		logging.Error(stageErr))
	m.setLastError(stageErr)
	m.setLastItem(item)
	return nil
}

// HealthCheck aggregates the readiness of every registered stage.
func (m *Manager) HealthCheck(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			results = append(results, stage.Unhealthy(stg.name, "handler missing"))
			continue
		}
		results = append(results, stg.handler.HealthCheck(ctx))
	}
	return results
}

// LastError returns the most recent stage error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// LastItem returns a copy of the most recently processed item.
func (m *Manager) LastItem() *queue.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastItem == nil {
		return nil
	}
	cp := *m.lastItem
	return &cp
}

func (m *Manager) parallelism() int {
	if m.cfg != nil && m.cfg.Workflow.AssetParallelism > 0 {
		return m.cfg.Workflow.AssetParallelism
	}
	return 1
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	cp := *item
	m.lastItem = &cp
	m.mu.Unlock()
}
