package transcribing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creatorpack/internal/logging"
	"creatorpack/internal/media/ffmpeg"
	"creatorpack/internal/media/ffprobe"
	"creatorpack/internal/queue"
	"creatorpack/internal/services/whisper"
	"creatorpack/internal/testsupport"
	"creatorpack/internal/transcript"
)

const whisperOut = `{
  "language": "en",
  "segments": [
    {"id": 0, "start": 0.0, "end": 4.0, "text": "Hello world."},
    {"id": 1, "start": 4.0, "end": 9.0, "text": "This is a talk."}
  ]
}`

func fakeProber() ffprobe.Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{"streams": [{"index": 1, "codec_type": "audio"}], "format": {"duration": "9.0"}}`), nil
	}
}

func newTranscriberForTest(t *testing.T) (*Transcriber, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	cutter := ffmpeg.NewCutter("ffmpeg", func(ctx context.Context, name string, args ...string) error {
		// The destination is the final argument; fake an extracted WAV.
		dest := args[len(args)-1]
		return os.WriteFile(dest, []byte("wav"), 0o644)
	})
	svc := whisper.NewService(whisper.Config{})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		// args[0] is the source WAV; whisper writes <base>.json next to it.
		source := args[0]
		jsonPath := strings.TrimSuffix(source, filepath.Ext(source)) + ".json"
		return os.WriteFile(jsonPath, []byte(whisperOut), 0o644)
	})

	return NewTranscriberWithDependencies(cfg, store, logging.NewNop(), cutter, svc, fakeProber()), store
}

func TestExecutePersistsTranscript(t *testing.T) {
	tr, store := newTranscriberForTest(t)
	staged := testsupport.WriteMedia(t, t.TempDir(), "talk.mp4")

	item := testsupport.NewAsset(t, store, "local", staged, "job-abcdefabcdef")
	item.StagedFile = staged
	if err := tr.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := tr.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var decoded transcript.Transcript
	if err := json.Unmarshal([]byte(item.TranscriptJSON), &decoded); err != nil {
		t.Fatalf("decode persisted transcript: %v", err)
	}
	if decoded.Language != "en" || len(decoded.Segments) != 2 {
		t.Fatalf("unexpected transcript: %+v", decoded)
	}
	if !strings.Contains(item.ProgressMessage, "2 segments") {
		t.Fatalf("ProgressMessage = %q", item.ProgressMessage)
	}
}

func TestExecuteRequiresStagedFile(t *testing.T) {
	tr, store := newTranscriberForTest(t)
	item := testsupport.NewAsset(t, store, "local", "x.mp4", "job-abcdefabcdef")
	if err := tr.Execute(context.Background(), item); err == nil {
		t.Fatal("expected error without staged file")
	}
}
