// Package gating implements the first pipeline stage: resolve the asset
// reference through a source adapter, gate its license, stage the media
// file, and record its probed duration.
package gating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"creatorpack/internal/config"
	"creatorpack/internal/ingest"
	"creatorpack/internal/license"
	"creatorpack/internal/logging"
	"creatorpack/internal/media/ffprobe"
	"creatorpack/internal/queue"
	"creatorpack/internal/services"
	"creatorpack/internal/sources"
	"creatorpack/internal/stage"
)

// Gater advances pending assets to gated: probed, license-checked, and
// staged.
type Gater struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	registry *sources.Registry
	stager   *ingest.Stager
	prober   ffprobe.Runner
}

// NewGater constructs the gating stage handler with default
// collaborators.
func NewGater(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Gater {
	client := &http.Client{Timeout: time.Duration(cfg.Sources.RequestTimeout) * time.Second}
	registry := sources.NewRegistry(client, cfg.Sources.Allowed)
	return NewGaterWithDependencies(cfg, store, logger, registry, ingest.NewStager(nil), nil)
}

// NewGaterWithDependencies allows injecting collaborators (used in
// tests).
func NewGaterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, registry *sources.Registry, stager *ingest.Stager, prober ffprobe.Runner) *Gater {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(slog.String(logging.FieldComponent, "gating"))
	}
	return &Gater{cfg: cfg, store: store, logger: stageLogger, registry: registry, stager: stager, prober: prober}
}

func (g *Gater) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, g.logger)
	item.SetProgress("Gating", "Probing source and checking license")
	item.ErrorMessage = ""
	logger.Info("starting gating",
		slog.String("source_kind", item.SourceKind),
		slog.String("source_value", item.SourceValue))
	return nil
}

func (g *Gater) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, g.logger)

	kind, meta, err := g.registry.Probe(ctx, item.SourceValue)
	if err != nil {
		return err
	}
	item.SourceKind = kind
	item.Title = meta.Title
	item.Creator = meta.Creator

	verdict, err := license.Gate(meta.RawLicense, meta.LicenseName, meta.LicenseURL, g.cfg.Sources.BlockNcNd)
	if err != nil {
		var rejected *license.RejectedError
		if errors.As(err, &rejected) {
			item.SetReview(rejected.Reason)
			logger.Warn("license rejected",
				slog.String("raw_code", rejected.RawCode),
				slog.String("license_name", rejected.Name),
				slog.String("reason", rejected.Reason))
			return nil
		}
		return err
	}
	item.LicenseCode = string(verdict.Code)
	item.LicenseName = verdict.Name
	item.LicenseURL = verdict.URL
	item.AttributionRequired = verdict.AttributionRequired

	staged, err := g.stager.Stage(ctx, meta, g.stagingDirFor(item))
	if err != nil {
		return err
	}
	item.StagedFile = staged.Path
	item.Checksum = staged.Checksum

	probe, err := ffprobe.Inspect(ctx, g.cfg.FFprobeBinary(), staged.Path, g.prober)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "gating", "probe", staged.Path, err)
	}
	duration := probe.DurationSeconds()
	if duration <= 0 {
		return services.Wrap(services.ErrValidation, "gating", "probe",
			fmt.Sprintf("%s has no measurable duration", filepath.Base(staged.Path)), nil)
	}
	if probe.FirstAudioStream() < 0 {
		return services.Wrap(services.ErrValidation, "gating", "probe",
			fmt.Sprintf("%s has no audio stream", filepath.Base(staged.Path)), nil)
	}
	item.DurationSeconds = duration

	item.SetProgress("Gating", fmt.Sprintf("License %s accepted", verdict.Code))
	logger.Info("gating complete",
		slog.String("license_code", string(verdict.Code)),
		slog.Float64("duration_sec", duration),
		slog.String("staged_file", filepath.Base(staged.Path)))
	return nil
}

func (g *Gater) HealthCheck(ctx context.Context) stage.Health {
	const name = "gating"
	if strings.TrimSpace(g.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	return stage.Healthy(name)
}

func (g *Gater) stagingDirFor(item *queue.Item) string {
	return filepath.Join(g.cfg.Paths.StagingDir, item.JobID, fmt.Sprintf("asset-%d", item.ID))
}
