package stage

import (
	"encoding/json"
	"strings"

	"creatorpack/internal/chapters"
	"creatorpack/internal/highlights"
	"creatorpack/internal/services"
	"creatorpack/internal/transcript"
)

// ParseTranscript decodes the transcript JSON a prior stage persisted on
// the queue item. On failure it returns a services.ErrValidation
// suitable for stage Execute methods.
func ParseTranscript(raw string) (transcript.Transcript, error) {
	var tr transcript.Transcript
	if strings.TrimSpace(raw) == "" {
		return tr, services.Wrap(services.ErrValidation, "stage", "parse transcript",
			"transcript missing; rerun transcription", nil)
	}
	if err := json.Unmarshal([]byte(raw), &tr); err != nil {
		return tr, services.Wrap(services.ErrValidation, "stage", "parse transcript",
			"transcript invalid; rerun transcription", err)
	}
	return tr, nil
}

// ParseChapterPlan decodes a persisted chapter plan.
func ParseChapterPlan(raw string) (chapters.Plan, error) {
	var plan chapters.Plan
	if strings.TrimSpace(raw) == "" {
		return plan, services.Wrap(services.ErrValidation, "stage", "parse chapter plan",
			"chapter plan missing; rerun planning", nil)
	}
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return plan, services.Wrap(services.ErrValidation, "stage", "parse chapter plan",
			"chapter plan invalid; rerun planning", err)
	}
	return plan, nil
}

// ParseHighlights decodes persisted highlight clips. An empty value is
// valid: jobs may run with highlights disabled.
func ParseHighlights(raw string) ([]highlights.Highlight, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var clips []highlights.Highlight
	if err := json.Unmarshal([]byte(raw), &clips); err != nil {
		return nil, services.Wrap(services.ErrValidation, "stage", "parse highlights",
			"highlight plan invalid; rerun planning", err)
	}
	return clips, nil
}
