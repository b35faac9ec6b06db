// Package transcribing implements the speech-to-text pipeline stage:
// extract a transcription-ready audio track from the staged media, run
// whisper over it, and persist the transcript on the queue item.
package transcribing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"creatorpack/internal/config"
	"creatorpack/internal/language"
	"creatorpack/internal/logging"
	"creatorpack/internal/media/ffmpeg"
	"creatorpack/internal/media/ffprobe"
	"creatorpack/internal/queue"
	"creatorpack/internal/services"
	"creatorpack/internal/services/whisper"
	"creatorpack/internal/stage"
)

// Transcriber advances gated assets to transcribed.
type Transcriber struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	cutter  *ffmpeg.Cutter
	whisper *whisper.Service
	prober  ffprobe.Runner
}

// NewTranscriber constructs the transcription stage handler with
// default collaborators.
func NewTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcriber {
	lang, _ := language.Normalize(cfg.Transcription.Language)
	svc := whisper.NewService(whisper.Config{
		Binary:   cfg.WhisperBinary(),
		Model:    cfg.Transcription.Model,
		Language: lang,
		Diarize:  cfg.Transcription.Diarize,
	})
	return NewTranscriberWithDependencies(cfg, store, logger,
		ffmpeg.NewCutter(cfg.FFmpegBinary(), nil), svc, nil)
}

// NewTranscriberWithDependencies allows injecting collaborators (used
// in tests).
func NewTranscriberWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, cutter *ffmpeg.Cutter, svc *whisper.Service, prober ffprobe.Runner) *Transcriber {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(slog.String(logging.FieldComponent, "transcribing"))
	}
	return &Transcriber{cfg: cfg, store: store, logger: stageLogger, cutter: cutter, whisper: svc, prober: prober}
}

func (t *Transcriber) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.SetProgress("Transcribing", "Extracting audio")
	item.ErrorMessage = ""
	logger.Info("starting transcription",
		slog.String("staged_file", filepath.Base(item.StagedFile)),
		slog.String("model", t.whisper.Model()))
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	if strings.TrimSpace(item.StagedFile) == "" {
		return services.Wrap(services.ErrValidation, "transcribing", "validate inputs",
			"no staged file present; run gating first", nil)
	}

	probe, err := ffprobe.Inspect(ctx, t.cfg.FFprobeBinary(), item.StagedFile, t.prober)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribing", "probe", item.StagedFile, err)
	}
	audioIndex := probe.FirstAudioStream()
	if audioIndex < 0 {
		return services.Wrap(services.ErrValidation, "transcribing", "probe",
			fmt.Sprintf("%s has no audio stream", filepath.Base(item.StagedFile)), nil)
	}

	workDir := filepath.Dir(item.StagedFile)
	audioPath := filepath.Join(workDir, "transcribe.wav")
	if err := t.cutter.ExtractAudio(ctx, item.StagedFile, audioIndex, audioPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribing", "extract audio", audioPath, err)
	}

	item.SetProgress("Transcribing", "Running speech recognition")
	tr, err := t.whisper.TranscribeFile(ctx, audioPath, workDir)
	if err != nil {
		return err
	}
	if tr.Empty() {
		logger.Warn("transcription produced no segments",
			slog.String("staged_file", filepath.Base(item.StagedFile)))
	}

	payload, err := json.Marshal(tr)
	if err != nil {
		return services.Wrap(services.ErrValidation, "transcribing", "encode transcript", "", err)
	}
	item.TranscriptJSON = string(payload)
	item.SetProgress("Transcribing", fmt.Sprintf("Transcribed %d segments", len(tr.Segments)))
	logger.Info("transcription complete",
		slog.Int("segments", len(tr.Segments)),
		slog.String("language", tr.Language))
	return nil
}

func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcribing"
	if _, err := exec.LookPath(t.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg not found: %v", err))
	}
	if _, err := exec.LookPath(t.cfg.WhisperBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("whisper not found: %v", err))
	}
	return stage.Healthy(name)
}
