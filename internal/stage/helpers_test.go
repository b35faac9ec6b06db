package stage

import (
	"testing"
)

func TestParseTranscript(t *testing.T) {
	tr, err := ParseTranscript(`{"language":"en","segments":[{"id":0,"start":0,"end":5,"text":"hi"}]}`)
	if err != nil {
		t.Fatalf("ParseTranscript: %v", err)
	}
	if tr.Language != "en" || len(tr.Segments) != 1 {
		t.Fatalf("unexpected transcript: %+v", tr)
	}

	if _, err := ParseTranscript(""); err == nil {
		t.Fatal("expected error for empty transcript")
	}
	if _, err := ParseTranscript("{not json"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseChapterPlan(t *testing.T) {
	plan, err := ParseChapterPlan(`{"policy":{"target_sec":300,"alignment":"fixed"},"chapters":[{"i":1,"start":0,"end":300,"title":"Chapter 1"}]}`)
	if err != nil {
		t.Fatalf("ParseChapterPlan: %v", err)
	}
	if len(plan.Chapters) != 1 || plan.Chapters[0].Title != "Chapter 1" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if _, err := ParseChapterPlan(" "); err == nil {
		t.Fatal("expected error for empty plan")
	}
}

func TestParseHighlightsAllowsEmpty(t *testing.T) {
	clips, err := ParseHighlights("")
	if err != nil {
		t.Fatalf("ParseHighlights(\"\"): %v", err)
	}
	if clips != nil {
		t.Fatalf("expected nil clips, got %v", clips)
	}

	clips, err = ParseHighlights(`[{"start":8,"end":72,"caption":"hook"}]`)
	if err != nil {
		t.Fatalf("ParseHighlights: %v", err)
	}
	if len(clips) != 1 || clips[0].Caption != "hook" {
		t.Fatalf("unexpected clips: %+v", clips)
	}
	if _, err := ParseHighlights("[oops"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
