package whisper

// Config captures runtime settings for whisper transcription.
type Config struct {
	// Binary is the whisper CLI to invoke (e.g. "whisper" or "whisperx").
	Binary string
	// Model is the speech model to use (e.g. "small", "large-v3").
	Model string
	// Language is the expected spoken language as a BCP-47 subtag, or
	// empty for autodetection.
	Language string
	// Diarize requests speaker labels on the output segments.
	Diarize bool
}

// Whisper configuration constants.
const (
	DefaultBinary = "whisper"
	DefaultModel  = "small"
	OutputFormat  = "json"
)

// speakerGapSeconds is the silence length treated as a probable speaker
// change when the tool emits no diarization labels of its own.
const speakerGapSeconds = 1.5
