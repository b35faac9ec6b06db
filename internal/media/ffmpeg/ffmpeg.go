// Package ffmpeg wraps the ffmpeg binary for the cutting and extraction
// work the pipeline performs: transcription audio, chapter segments, and
// vertical highlight clips.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an ffmpeg invocation. Tests inject a fake recorder.
type Runner func(ctx context.Context, name string, args ...string) error

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Cutter performs ffmpeg operations with a fixed binary.
type Cutter struct {
	binary string
	runner Runner
}

// NewCutter returns a Cutter using the given ffmpeg binary. An empty
// binary falls back to "ffmpeg" on PATH.
func NewCutter(binary string, runner Runner) *Cutter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if runner == nil {
		runner = defaultRunner
	}
	return &Cutter{binary: binary, runner: runner}
}

// ExtractAudio extracts the audio stream at audioIndex as a mono 16kHz
// WAV suitable for speech recognition.
func (c *Cutter) ExtractAudio(ctx context.Context, source string, audioIndex int, dest string) error {
	if audioIndex < 0 {
		return fmt.Errorf("ffmpeg extract audio: invalid audio stream index %d", audioIndex)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:%d", audioIndex),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	if err := c.runner(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

// CutSegment copies a time range of the source into dest without
// re-encoding. Used for chapter segment files.
func (c *Cutter) CutSegment(ctx context.Context, source string, startSec, endSec float64, dest string) error {
	if endSec <= startSec {
		return fmt.Errorf("ffmpeg cut segment: invalid range [%.3f, %.3f)", startSec, endSec)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(startSec),
		"-to", formatSeconds(endSec),
		"-i", source,
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		dest,
	}
	if err := c.runner(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg cut segment: %w", err)
	}
	return nil
}

// CutVertical re-encodes a time range as a 1080x1920 center-cropped
// vertical clip for the shorts directory.
func (c *Cutter) CutVertical(ctx context.Context, source string, startSec, endSec float64, dest string) error {
	if endSec <= startSec {
		return fmt.Errorf("ffmpeg cut vertical: invalid range [%.3f, %.3f)", startSec, endSec)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(startSec),
		"-to", formatSeconds(endSec),
		"-i", source,
		"-vf", "crop=ih*9/16:ih,scale=1080:1920",
		"-c:a", "copy",
		dest,
	}
	if err := c.runner(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg cut vertical: %w", err)
	}
	return nil
}

func formatSeconds(value float64) string {
	if value < 0 {
		value = 0
	}
	return fmt.Sprintf("%.3f", value)
}

// ErrNoAudio is returned by callers when probing finds no audio stream
// to extract.
var ErrNoAudio = errors.New("no audio stream")
