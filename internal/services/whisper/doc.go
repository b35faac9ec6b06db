// Package whisper wraps the whisper speech-to-text CLI. It extracts a
// transcription-ready WAV with ffmpeg, runs the model, and parses the
// JSON output into the pipeline's transcript model, with an optional
// gap-based speaker rotation when diarization is requested but the tool
// provides no labels.
package whisper
