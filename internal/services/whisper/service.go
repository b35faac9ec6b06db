package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"creatorpack/internal/services"
	"creatorpack/internal/transcript"
)

// Service provides whisper transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a whisper service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

func (s *Service) binary() string {
	if trimmed := strings.TrimSpace(s.cfg.Binary); trimmed != "" {
		return trimmed
	}
	return DefaultBinary
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// TranscribeFile transcribes an extracted WAV file. outputDir is where
// the tool writes its JSON output; it defaults to the source directory.
func (s *Service) TranscribeFile(ctx context.Context, source, outputDir string) (transcript.Transcript, error) {
	var empty transcript.Transcript

	if strings.TrimSpace(source) == "" {
		return empty, services.Wrap(services.ErrValidation, "transcribe", "run", "source path required", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return empty, services.Wrap(services.ErrConfiguration, "transcribe", "run", "ensure output dir", err)
	}

	args := s.buildArgs(source, outputDir)
	if err := s.run(ctx, s.binary(), args...); err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "transcribe", "run", "whisper", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	result, err := LoadTranscript(jsonPath)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "transcribe", "parse", jsonPath, err)
	}
	if s.cfg.Diarize {
		applySpeakerRotation(result.Segments)
	}
	return result, nil
}

// buildArgs constructs the whisper command arguments.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := []string{
		source,
		"--model", s.Model(),
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--task", "transcribe",
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

// whisperPayload is the JSON structure written by the whisper CLI.
type whisperPayload struct {
	Language string `json:"language"`
	Segments []struct {
		ID      int     `json:"id"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Text    string  `json:"text"`
		Speaker string  `json:"speaker"`
	} `json:"segments"`
}

// LoadTranscript parses a whisper JSON output file into a Transcript.
func LoadTranscript(jsonPath string) (transcript.Transcript, error) {
	var result transcript.Transcript

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return result, err
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return result, fmt.Errorf("parse whisper json: %w", err)
	}

	result.Language = strings.TrimSpace(payload.Language)
	result.Segments = make([]transcript.Segment, 0, len(payload.Segments))
	for i, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		id := seg.ID
		if id == 0 && i > 0 {
			id = i
		}
		result.Segments = append(result.Segments, transcript.Segment{
			ID:      id,
			Start:   seg.Start,
			End:     seg.End,
			Text:    text,
			Speaker: strings.TrimSpace(seg.Speaker),
		})
	}
	return result, nil
}

// applySpeakerRotation assigns alternating speaker labels at long
// silences when the tool emitted none of its own. Segments that already
// carry labels are left untouched.
func applySpeakerRotation(segments []transcript.Segment) {
	for _, seg := range segments {
		if seg.Speaker != "" {
			return
		}
	}
	speaker := 0
	for i := range segments {
		if i > 0 && segments[i].Start-segments[i-1].End >= speakerGapSeconds {
			speaker++
		}
		segments[i].Speaker = fmt.Sprintf("SPEAKER_%02d", speaker%2)
	}
}
