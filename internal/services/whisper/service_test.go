package whisper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creatorpack/internal/transcript"
)

const sampleWhisperJSON = `{
  "language": "en",
  "segments": [
    {"id": 0, "start": 0.0, "end": 4.2, "text": " Welcome to the show."},
    {"id": 1, "start": 4.2, "end": 9.8, "text": "Today we talk about telescopes."},
    {"id": 2, "start": 12.0, "end": 15.5, "text": "Thanks for having me."}
  ]
}`

func writeWhisperOutput(t *testing.T, dir, base string) string {
	t.Helper()
	path := filepath.Join(dir, base+".json")
	if err := os.WriteFile(path, []byte(sampleWhisperJSON), 0o644); err != nil {
		t.Fatalf("write whisper json: %v", err)
	}
	return path
}

func TestTranscribeFileParsesOutput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(source, []byte("wav"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	svc := NewService(Config{Model: "small", Language: "en"})
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = append([]string{name}, args...)
		writeWhisperOutput(t, dir, "audio")
		return nil
	})

	tr, err := svc.TranscribeFile(context.Background(), source, dir)
	if err != nil {
		t.Fatalf("TranscribeFile returned error: %v", err)
	}
	if gotArgs[0] != DefaultBinary {
		t.Fatalf("expected default binary, got %s", gotArgs[0])
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"--model small", "--language en", "--output_format json"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected args to contain %q, got %s", want, joined)
		}
	}
	if tr.Language != "en" {
		t.Fatalf("Language = %q, want en", tr.Language)
	}
	if len(tr.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(tr.Segments))
	}
	if tr.Segments[0].Text != "Welcome to the show." {
		t.Fatalf("segment text not trimmed: %q", tr.Segments[0].Text)
	}
	if tr.Segments[0].Speaker != "" {
		t.Fatalf("expected no speaker labels without diarize, got %q", tr.Segments[0].Speaker)
	}
}

func TestTranscribeFileDiarizeRotation(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(source, []byte("wav"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	svc := NewService(Config{Diarize: true})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		writeWhisperOutput(t, dir, "audio")
		return nil
	})

	tr, err := svc.TranscribeFile(context.Background(), source, dir)
	if err != nil {
		t.Fatalf("TranscribeFile returned error: %v", err)
	}
	// Segments 0 and 1 are contiguous; segment 2 follows a 2.2s gap.
	if tr.Segments[0].Speaker != "SPEAKER_00" || tr.Segments[1].Speaker != "SPEAKER_00" {
		t.Fatalf("expected first two segments from SPEAKER_00, got %q %q",
			tr.Segments[0].Speaker, tr.Segments[1].Speaker)
	}
	if tr.Segments[2].Speaker != "SPEAKER_01" {
		t.Fatalf("expected gap to rotate speaker, got %q", tr.Segments[2].Speaker)
	}
}

func TestTranscribeFileRequiresSource(t *testing.T) {
	svc := NewService(Config{})
	if _, err := svc.TranscribeFile(context.Background(), "", t.TempDir()); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestApplySpeakerRotationKeepsExistingLabels(t *testing.T) {
	segments := []transcript.Segment{
		{ID: 0, Start: 0, End: 2, Text: "a", Speaker: "HOST"},
		{ID: 1, Start: 5, End: 7, Text: "b"},
	}
	applySpeakerRotation(segments)
	if segments[0].Speaker != "HOST" || segments[1].Speaker != "" {
		t.Fatalf("existing labels should be preserved: %+v", segments)
	}
}
