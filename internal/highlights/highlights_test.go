package highlights

import (
	"math"
	"strings"
	"testing"

	"creatorpack/internal/transcript"
)

func TestWindowScenario(t *testing.T) {
	// start = 10-2 = 8; end = max(12, 10+60) = 70, +2 = 72; width 64 <= 90.
	segment := transcript.Segment{Start: 10, End: 12, Text: "hello"}
	policy := Policy{TopK: 1, MinSeconds: 60, MaxSeconds: 90, PaddingSeconds: 2, Strategy: StrategyLeading}
	window, ok := Window(segment, 1000, policy)
	if !ok {
		t.Fatal("window unexpectedly discarded")
	}
	if window.Start != 8 || window.End != 72 {
		t.Errorf("window = [%v,%v], want [8,72]", window.Start, window.End)
	}
	if window.Caption != "hello" {
		t.Errorf("caption = %q", window.Caption)
	}
}

func TestWindowBounds(t *testing.T) {
	policy := Policy{TopK: 5, MinSeconds: 10, MaxSeconds: 30, PaddingSeconds: 1.5, Strategy: StrategyLeading}
	tr := transcript.Transcript{Segments: []transcript.Segment{
		{Start: 0, End: 4, Text: "at the very start"},
		{Start: 50, End: 120, Text: "a very long stretch of talk"},
		{Start: 190, End: 199, Text: "near the end"},
	}}
	duration := 200.0
	for _, h := range Plan(tr, duration, policy) {
		width := h.End - h.Start
		if h.Start < 0 || h.End > duration {
			t.Errorf("window [%v,%v] escapes [0,%v]", h.Start, h.End, duration)
		}
		if width > policy.MaxSeconds+1e-9 {
			t.Errorf("window width %v exceeds max %v", width, policy.MaxSeconds)
		}
		clamped := h.End == duration || h.Start == 0
		if width < policy.MinSeconds-1e-9 && !clamped {
			t.Errorf("unclamped window width %v below min %v", width, policy.MinSeconds)
		}
	}
}

func TestWindowDiscardedWhenDurationTooShort(t *testing.T) {
	segment := transcript.Segment{Start: 5, End: 6, Text: "x"}
	policy := Policy{TopK: 1, MinSeconds: 60, MaxSeconds: 90, PaddingSeconds: 0, Strategy: StrategyLeading}
	if _, ok := Window(segment, 3, policy); ok {
		t.Error("expected discard when duration falls inside the padded start")
	}
}

func TestShrinkFixesStart(t *testing.T) {
	segment := transcript.Segment{Start: 10, End: 100, Text: "long segment"}
	policy := Policy{TopK: 1, MinSeconds: 5, MaxSeconds: 20, PaddingSeconds: 0, Strategy: StrategyLeading}
	window, ok := Window(segment, 1000, policy)
	if !ok {
		t.Fatal("window discarded")
	}
	if window.Start != 10 || window.End != 30 {
		t.Errorf("window = [%v,%v], want [10,30]", window.Start, window.End)
	}
}

func TestLeadingStrategyKeepsTranscriptOrder(t *testing.T) {
	tr := transcript.Transcript{Segments: []transcript.Segment{
		{Start: 0, End: 5, Text: "short"},
		{Start: 10, End: 15, Text: strings.Repeat("wordy segment with many words ", 4)},
		{Start: 20, End: 25, Text: "third"},
	}}
	policy := Policy{TopK: 2, MinSeconds: 3, MaxSeconds: 10, PaddingSeconds: 0, Strategy: StrategyLeading}
	got := Plan(tr, 100, policy)
	if len(got) != 2 {
		t.Fatalf("got %d highlights, want 2", len(got))
	}
	if got[0].Start != 0 || got[1].Start != 10 {
		t.Errorf("leading selection out of order: %v", got)
	}
}

func TestScoredStrategyRanksByScore(t *testing.T) {
	wordy := strings.Repeat("a dense burst of many quick words ", 3)
	tr := transcript.Transcript{Segments: []transcript.Segment{
		{Start: 0, End: 5, Text: "hm"},
		{Start: 10, End: 15, Text: wordy},
		{Start: 20, End: 25, Text: "ok"},
	}}
	policy := Policy{TopK: 1, MinSeconds: 3, MaxSeconds: 10, PaddingSeconds: 0, Strategy: StrategyScored}
	got := Plan(tr, 100, policy)
	if len(got) != 1 {
		t.Fatalf("got %d highlights, want 1", len(got))
	}
	if got[0].Start != 10 {
		t.Errorf("scored selection picked window at %v, want the wordy segment at 10", got[0].Start)
	}
}

func TestScoreFormula(t *testing.T) {
	// 20 words, well over 120 chars, 10s duration: no penalty.
	text := strings.Repeat("word ", 20) + strings.Repeat("x", 30)
	segment := transcript.Segment{Start: 0, End: 10, Text: text}
	want := 0.6*(21.0/40.0) + 0.3*1.0
	if got := Score(segment); math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}

	// 150s duration pays (150-75)/75 = 1 of penalty.
	long := transcript.Segment{Start: 0, End: 150, Text: "brief"}
	short := transcript.Segment{Start: 0, End: 10, Text: "brief"}
	if diff := Score(short) - Score(long); math.Abs(diff-0.1) > 1e-9 {
		t.Errorf("duration penalty delta = %v, want 0.1", diff)
	}
}

func TestCaptionTruncation(t *testing.T) {
	long := strings.Repeat("abcdefghij", 10)
	got := Caption(long)
	if len([]rune(got)) != CaptionLimit {
		t.Errorf("caption length = %d, want %d", len([]rune(got)), CaptionLimit)
	}
	if Caption("short") != "short" {
		t.Error("short caption must pass through unchanged")
	}
}

func TestPlanDegenerateInput(t *testing.T) {
	policy := Policy{TopK: 3, MinSeconds: 5, MaxSeconds: 30, Strategy: StrategyLeading}
	if got := Plan(transcript.Transcript{}, 100, policy); got != nil {
		t.Errorf("empty transcript: got %v, want nil", got)
	}
	tr := transcript.Transcript{Segments: []transcript.Segment{{Start: 0, End: 5, Text: "x"}}}
	if got := Plan(tr, 0, policy); got != nil {
		t.Errorf("zero duration: got %v, want nil", got)
	}
}

func TestPolicyValidate(t *testing.T) {
	valid := Policy{TopK: 3, MinSeconds: 20, MaxSeconds: 75, PaddingSeconds: 1, Strategy: StrategyLeading}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"zero top_k", func(p *Policy) { p.TopK = 0 }},
		{"zero min", func(p *Policy) { p.MinSeconds = 0 }},
		{"max below min", func(p *Policy) { p.MaxSeconds = 5 }},
		{"negative padding", func(p *Policy) { p.PaddingSeconds = -1 }},
		{"bad strategy", func(p *Policy) { p.Strategy = "psychic" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := valid
			tt.mutate(&policy)
			if err := policy.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
