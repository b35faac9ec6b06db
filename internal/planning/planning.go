// Package planning implements the planning pipeline stage: derive the
// chapter plan and optional highlight clips from the persisted
// transcript and store both on the queue item.
package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"creatorpack/internal/chapters"
	"creatorpack/internal/config"
	"creatorpack/internal/highlights"
	"creatorpack/internal/logging"
	"creatorpack/internal/queue"
	"creatorpack/internal/services"
	"creatorpack/internal/stage"
)

// Planner advances transcribed assets to planned.
type Planner struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewPlanner constructs the planning stage handler.
func NewPlanner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Planner {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(slog.String(logging.FieldComponent, "planning"))
	}
	return &Planner{cfg: cfg, store: store, logger: stageLogger}
}

func (p *Planner) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	item.SetProgress("Planning", "Building chapter and highlight plans")
	item.ErrorMessage = ""
	logger.Info("starting planning",
		slog.Float64("duration_sec", item.DurationSeconds))
	return nil
}

func (p *Planner) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)

	if item.DurationSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "planning", "validate inputs",
			"asset has no probed duration; run gating first", nil)
	}
	tr, err := stage.ParseTranscript(item.TranscriptJSON)
	if err != nil {
		return err
	}

	chapterPlan := chapters.BuildPlan(tr, item.DurationSeconds, p.cfg.ChapterPolicy())
	planJSON, err := json.Marshal(chapterPlan)
	if err != nil {
		return services.Wrap(services.ErrValidation, "planning", "encode chapter plan", "", err)
	}
	item.ChapterPlanJSON = string(planJSON)

	clipCount := 0
	if p.cfg.Highlights.Enabled {
		clips := highlights.Plan(tr, item.DurationSeconds, p.cfg.HighlightPolicy())
		clipsJSON, err := json.Marshal(clips)
		if err != nil {
			return services.Wrap(services.ErrValidation, "planning", "encode highlights", "", err)
		}
		item.HighlightsJSON = string(clipsJSON)
		clipCount = len(clips)
	} else {
		item.HighlightsJSON = ""
	}

	item.SetProgress("Planning",
		fmt.Sprintf("Planned %d chapters, %d highlights", len(chapterPlan.Chapters), clipCount))
	logger.Info("planning complete",
		slog.Int("chapters", len(chapterPlan.Chapters)),
		slog.Int("highlights", clipCount),
		slog.String("alignment", string(chapterPlan.Policy.Alignment)))
	return nil
}

func (p *Planner) HealthCheck(ctx context.Context) stage.Health {
	const name = "planning"
	if err := p.cfg.ChapterPolicy().Validate(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	if p.cfg.Highlights.Enabled {
		if err := p.cfg.HighlightPolicy().Validate(); err != nil {
			return stage.Unhealthy(name, err.Error())
		}
	}
	return stage.Healthy(name)
}

// Describe renders a short human summary of the plans for dry-run
// output.
func Describe(plan chapters.Plan, clips []highlights.Highlight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d chapters", len(plan.Chapters))
	if len(clips) > 0 {
		fmt.Fprintf(&b, ", %d highlights", len(clips))
	}
	return b.String()
}
