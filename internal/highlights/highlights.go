// Package highlights selects short clip windows from transcript segments
// for standalone distribution. Two selection strategies exist: the leading
// strategy takes the first K segments in transcript order; the scored
// strategy ranks every segment by a text heuristic first.
package highlights

import (
	"fmt"
	"sort"

	"creatorpack/internal/transcript"
)

// Strategy names a candidate selection order.
type Strategy string

const (
	// StrategyLeading picks the first TopK segments in transcript order.
	StrategyLeading Strategy = "leading"
	// StrategyScored ranks all segments by heuristic score first.
	StrategyScored Strategy = "scored"
)

// CaptionLimit is the maximum caption length in characters.
const CaptionLimit = 80

// Policy configures highlight selection and windowing.
type Policy struct {
	TopK           int      `json:"top_k"`
	MinSeconds     float64  `json:"min_sec"`
	MaxSeconds     float64  `json:"max_sec"`
	PaddingSeconds float64  `json:"padding_sec"`
	Strategy       Strategy `json:"strategy"`
}

// Validate rejects malformed policy values at configuration time.
func (p Policy) Validate() error {
	if p.TopK < 1 {
		return fmt.Errorf("highlight policy: top_k must be at least 1, got %d", p.TopK)
	}
	if p.MinSeconds <= 0 {
		return fmt.Errorf("highlight policy: min_seconds must be positive, got %g", p.MinSeconds)
	}
	if p.MaxSeconds < p.MinSeconds {
		return fmt.Errorf("highlight policy: max_seconds %g below min_seconds %g", p.MaxSeconds, p.MinSeconds)
	}
	if p.PaddingSeconds < 0 {
		return fmt.Errorf("highlight policy: padding_seconds must not be negative, got %g", p.PaddingSeconds)
	}
	switch p.Strategy {
	case StrategyLeading, StrategyScored:
	default:
		return fmt.Errorf("highlight policy: unknown strategy %q", p.Strategy)
	}
	return nil
}

// Highlight is one selected clip window. Highlights may overlap each other
// and are not required to tile the duration.
type Highlight struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Caption string  `json:"caption"`
}

// Scoring weights for the scored strategy.
const (
	weightKeyword  = 0.6
	weightEnergy   = 0.3
	weightDuration = 0.1
)

// Score rates a segment's highlight potential from its text alone:
// keyword density rewards word count, the energy proxy rewards character
// count, and overly long segments pay a duration penalty.
func Score(segment transcript.Segment) float64 {
	duration := segment.Duration()
	if duration < 0.01 {
		duration = 0.01
	}
	keywordDensity := min1(float64(wordCount(segment.Text)) / 40.0)
	energy := min1(float64(len(segment.Text)) / 120.0)
	penalty := (duration - 75.0) / 75.0
	if penalty < 0 {
		penalty = 0
	}
	return weightKeyword*keywordDensity + weightEnergy*energy - weightDuration*penalty
}

// Plan selects up to policy.TopK clip windows from the transcript.
// Degenerate input (no segments, non-positive duration) yields nil.
func Plan(tr transcript.Transcript, duration float64, policy Policy) []Highlight {
	if tr.Empty() || duration <= 0 || policy.TopK < 1 {
		return nil
	}

	selected := tr.Segments
	if policy.Strategy == StrategyScored {
		ranked := make([]transcript.Segment, len(tr.Segments))
		copy(ranked, tr.Segments)
		sort.SliceStable(ranked, func(i, j int) bool {
			return Score(ranked[i]) > Score(ranked[j])
		})
		selected = ranked
	}
	if len(selected) > policy.TopK {
		selected = selected[:policy.TopK]
	}

	highlights := make([]Highlight, 0, len(selected))
	for _, segment := range selected {
		if window, ok := Window(segment, duration, policy); ok {
			highlights = append(highlights, window)
		}
	}
	return highlights
}

// Window expands one segment into a clip window under the policy's
// min/max-duration and padding constraints, clamped to the media duration.
// Candidates that collapse to nothing after clamping report ok=false.
func Window(segment transcript.Segment, duration float64, policy Policy) (Highlight, bool) {
	start := segment.Start - policy.PaddingSeconds
	if start < 0 {
		start = 0
	}
	end := segment.End
	if floor := segment.Start + policy.MinSeconds; end < floor {
		end = floor
	}
	end += policy.PaddingSeconds
	if end > duration {
		end = duration
	}
	if end-start > policy.MaxSeconds {
		end = start + policy.MaxSeconds
		if end > duration {
			end = duration
		}
	}
	if end <= start {
		return Highlight{}, false
	}
	return Highlight{Start: start, End: end, Caption: Caption(segment.Text)}, true
}

// Caption trims segment text to the caption limit by plain length
// truncation.
func Caption(text string) string {
	runes := []rune(text)
	if len(runes) <= CaptionLimit {
		return text
	}
	return string(runes[:CaptionLimit])
}

func wordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
