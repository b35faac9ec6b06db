// Package exporting implements the final pipeline stage: cut chapter
// segments, vertical highlight clips, and the audio track from the
// staged media, then write the manifests that make the bundle
// self-describing.
package exporting

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"creatorpack/internal/branding"
	"creatorpack/internal/chapters"
	"creatorpack/internal/config"
	"creatorpack/internal/export"
	"creatorpack/internal/highlights"
	"creatorpack/internal/license"
	"creatorpack/internal/logging"
	"creatorpack/internal/media/ffmpeg"
	"creatorpack/internal/media/ffprobe"
	"creatorpack/internal/queue"
	"creatorpack/internal/services"
	"creatorpack/internal/stage"
	"creatorpack/internal/summary"
	"creatorpack/internal/transcript"
)

// Exporter advances planned assets to completed.
type Exporter struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	cutter *ffmpeg.Cutter
	prober ffprobe.Runner
}

// NewExporter constructs the export stage handler with default
// collaborators.
func NewExporter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Exporter {
	return NewExporterWithDependencies(cfg, store, logger,
		ffmpeg.NewCutter(cfg.FFmpegBinary(), nil), nil)
}

// NewExporterWithDependencies allows injecting collaborators (used in
// tests).
func NewExporterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, cutter *ffmpeg.Cutter, prober ffprobe.Runner) *Exporter {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(slog.String(logging.FieldComponent, "exporting"))
	}
	return &Exporter{cfg: cfg, store: store, logger: stageLogger, cutter: cutter, prober: prober}
}

func (e *Exporter) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	item.SetProgress("Exporting", "Assembling export bundle")
	item.ErrorMessage = ""
	logger.Info("starting export", slog.String(logging.FieldJobID, item.JobID))
	return nil
}

func (e *Exporter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	if strings.TrimSpace(item.StagedFile) == "" {
		return services.Wrap(services.ErrValidation, "exporting", "validate inputs",
			"no staged file present; run gating first", nil)
	}
	tr, err := stage.ParseTranscript(item.TranscriptJSON)
	if err != nil {
		return err
	}
	plan, err := stage.ParseChapterPlan(item.ChapterPlanJSON)
	if err != nil {
		return err
	}
	clips, err := stage.ParseHighlights(item.HighlightsJSON)
	if err != nil {
		return err
	}

	if e.cfg.Output.BrandPath != "" {
		theme, err := branding.Load(e.cfg.Output.BrandPath)
		if err != nil {
			return err
		}
		logger.Info("brand theme loaded", slog.String("brand", theme.Name))
	}

	bundle, err := e.bundleFor(ctx, item)
	if err != nil {
		return err
	}
	writer := export.NewWriter(bundle)
	mediaExt := export.MediaExt(item.StagedFile)

	chunks, err := e.cutChapters(ctx, writer, item, tr, plan.Chapters, mediaExt)
	if err != nil {
		return err
	}
	shorts, err := e.cutShorts(ctx, bundle, item, clips)
	if err != nil {
		return err
	}
	if err := e.extractAudio(ctx, bundle, item); err != nil {
		return err
	}

	if err := writer.WriteTranscript(tr); err != nil {
		return err
	}
	if err := writer.WriteChapterPlan(plan); err != nil {
		return err
	}
	if err := writer.WriteHighlights(clips); err != nil {
		return err
	}
	if err := writer.WriteAssetsMap(export.AssetsMap{
		Source: filepath.Base(item.StagedFile),
		Chunks: chunks,
		Shorts: shorts,
	}); err != nil {
		return err
	}

	credits := e.creditsFor(item)
	if err := writer.WriteCredits(credits); err != nil {
		return err
	}
	if err := writer.WriteSummary(summary.RenderMarkdown(summary.Build(tr, plan))); err != nil {
		return err
	}
	if err := writer.WriteProvenance(export.Provenance{
		JobID: item.JobID,
		Assets: []export.ProvenanceAsset{{
			SourceKind:  item.SourceKind,
			SourceValue: item.SourceValue,
			Title:       item.Title,
			Creator:     item.Creator,
			LicenseCode: item.LicenseCode,
			LicenseName: item.LicenseName,
			LicenseURL:  item.LicenseURL,
			Checksum:    item.Checksum,
		}},
	}); err != nil {
		return err
	}

	item.SetProgress("Exporting",
		fmt.Sprintf("Bundle written to %s", bundle.Root))
	logger.Info("export complete",
		slog.String("bundle", bundle.Root),
		slog.Int("chapters", len(chunks)),
		slog.Int("shorts", len(shorts)))
	return nil
}

func (e *Exporter) HealthCheck(ctx context.Context) stage.Health {
	const name = "exporting"
	if strings.TrimSpace(e.cfg.Paths.ExportDir) == "" {
		return stage.Unhealthy(name, "export directory not configured")
	}
	if _, err := exec.LookPath(e.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg not found: %v", err))
	}
	return stage.Healthy(name)
}

// bundleFor returns the bundle layout for the item. Single-asset jobs
// export directly under the job directory; multi-asset jobs get one
// bundle per asset to keep chapter numbering unambiguous.
func (e *Exporter) bundleFor(ctx context.Context, item *queue.Item) (export.Bundle, error) {
	siblings, err := e.store.ListByJob(ctx, item.JobID)
	if err != nil {
		return export.Bundle{}, services.Wrap(services.ErrTransient, "exporting", "list job assets", item.JobID, err)
	}
	jobID := item.JobID
	if len(siblings) > 1 {
		jobID = filepath.Join(item.JobID, fmt.Sprintf("asset-%d", item.ID))
	}
	return export.NewBundle(e.cfg.Paths.ExportDir, jobID)
}

func (e *Exporter) cutChapters(ctx context.Context, writer *export.Writer, item *queue.Item, tr transcript.Transcript, chapterList []chapters.Chapter, mediaExt string) ([]export.ChunkEntry, error) {
	bundle := writer.Bundle()
	chunks := make([]export.ChunkEntry, 0, len(chapterList))
	for _, chapter := range chapterList {
		name := export.ChapterFileName(chapter.Index, mediaExt)
		dest := filepath.Join(bundle.ChaptersDir, name)
		if err := e.cutter.CutSegment(ctx, item.StagedFile, chapter.Start, chapter.End, dest); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "exporting", "cut chapter", name, err)
		}
		srtName, err := writer.WriteChapterSRT(tr, chapter)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, export.ChunkEntry{
			File:  name,
			SRT:   srtName,
			Start: chapter.Start,
			End:   chapter.End,
		})
		item.SetProgress("Exporting", fmt.Sprintf("Cut %s", name))
	}
	return chunks, nil
}

func (e *Exporter) cutShorts(ctx context.Context, bundle export.Bundle, item *queue.Item, clips []highlights.Highlight) ([]export.ShortEntry, error) {
	shorts := make([]export.ShortEntry, 0, len(clips))
	for i, clip := range clips {
		name := export.ShortFileName(i + 1)
		dest := filepath.Join(bundle.ShortsDir, name)
		if err := e.cutter.CutVertical(ctx, item.StagedFile, clip.Start, clip.End, dest); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "exporting", "cut short", name, err)
		}
		shorts = append(shorts, export.ShortEntry{
			File:    name,
			Start:   clip.Start,
			End:     clip.End,
			Caption: clip.Caption,
		})
	}
	return shorts, nil
}

func (e *Exporter) extractAudio(ctx context.Context, bundle export.Bundle, item *queue.Item) error {
	probe, err := ffprobe.Inspect(ctx, e.cfg.FFprobeBinary(), item.StagedFile, e.prober)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "exporting", "probe", item.StagedFile, err)
	}
	audioIndex := probe.FirstAudioStream()
	if audioIndex < 0 {
		return services.Wrap(services.ErrValidation, "exporting", "probe",
			fmt.Sprintf("%s has no audio stream", filepath.Base(item.StagedFile)), nil)
	}
	dest := filepath.Join(bundle.AudioDir, "audio.wav")
	if err := e.cutter.ExtractAudio(ctx, item.StagedFile, audioIndex, dest); err != nil {
		return services.Wrap(services.ErrExternalTool, "exporting", "extract audio", dest, err)
	}
	return nil
}

func (e *Exporter) creditsFor(item *queue.Item) *export.Credits {
	var credits export.Credits
	credits.Add(item.Title, item.Creator, license.Verdict{
		Code:                license.Code(item.LicenseCode),
		Name:                item.LicenseName,
		URL:                 item.LicenseURL,
		AttributionRequired: item.AttributionRequired,
	})
	return &credits
}
