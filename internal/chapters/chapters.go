// Package chapters plans the chapter cover of a media timeline: an ordered,
// contiguous, gapless sequence of labeled time ranges under a
// target-duration policy, with optional snapping to natural speech
// boundaries derived from the transcript.
package chapters

import (
	"fmt"
	"math"
	"sort"

	"creatorpack/internal/transcript"
)

// Alignment selects how chapter boundaries are placed.
type Alignment string

const (
	// AlignmentFixed cuts at rigid target-duration intervals.
	AlignmentFixed Alignment = "fixed"
	// AlignmentSentence snaps boundaries to nearby sentence ends.
	AlignmentSentence Alignment = "sentence"
)

// FlexSeconds bounds how far a smart boundary may drift from its nominal
// fixed-interval position.
const FlexSeconds = 15.0

// Policy configures chapter planning.
type Policy struct {
	TargetSeconds int       `json:"target_sec"`
	Alignment     Alignment `json:"alignment"`
	AllowSmart    bool      `json:"allow_smart"`
}

// Validate rejects malformed policy values. Callers should run this at
// configuration-parse time, not inside planning.
func (p Policy) Validate() error {
	if p.TargetSeconds <= 0 {
		return fmt.Errorf("chapter policy: target_seconds must be positive, got %d", p.TargetSeconds)
	}
	switch p.Alignment {
	case AlignmentFixed, AlignmentSentence:
	default:
		return fmt.Errorf("chapter policy: unknown alignment %q", p.Alignment)
	}
	return nil
}

// Chapter is one contiguous labeled range of the source media.
type Chapter struct {
	Index int     `json:"i"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Title string  `json:"title"`
}

// Plan is the immutable result of one planning run.
type Plan struct {
	Policy   Policy    `json:"policy"`
	Chapters []Chapter `json:"chapters"`
}

// BuildPlan walks the timeline from zero, placing a boundary every
// TargetSeconds. With smart sentence alignment, each boundary snaps to the
// candidate cut point closest to its nominal position within the flex
// window; ties resolve to the earlier candidate. A boundary that would
// produce a zero-length chapter falls back to the unsnapped position, and
// if that is still degenerate planning stops.
//
// A non-positive duration or empty transcript yields an empty plan rather
// than an error; callers present "no chapters" themselves.
func BuildPlan(tr transcript.Transcript, duration float64, policy Policy) Plan {
	plan := Plan{Policy: policy}
	if duration <= 0 || policy.TargetSeconds <= 0 {
		return plan
	}

	var candidates []float64
	if policy.AllowSmart && policy.Alignment == AlignmentSentence {
		candidates = tr.BoundaryCandidates(duration, true)
		sort.Float64s(candidates)
	}

	target := float64(policy.TargetSeconds)
	cursor := 0.0
	index := 1
	for cursor < duration {
		boundary := cursor + target
		if boundary > duration {
			boundary = duration
		}
		if len(candidates) > 0 && boundary < duration {
			if snapped, ok := snap(candidates, boundary); ok {
				boundary = snapped
			}
		}
		if boundary <= cursor {
			// Degenerate snap; retry with the rigid boundary.
			boundary = cursor + target
			if boundary > duration {
				boundary = duration
			}
			if boundary <= cursor {
				break
			}
		}
		plan.Chapters = append(plan.Chapters, Chapter{
			Index: index,
			Start: cursor,
			End:   boundary,
			Title: fmt.Sprintf("Chapter %d", index),
		})
		cursor = boundary
		index++
	}
	return plan
}

// snap returns the candidate closest to boundary within the flex window.
// Candidates must be sorted ascending.
func snap(candidates []float64, boundary float64) (float64, bool) {
	lo := sort.SearchFloat64s(candidates, boundary-FlexSeconds)
	best := 0.0
	bestDiff := math.Inf(1)
	found := false
	for i := lo; i < len(candidates); i++ {
		c := candidates[i]
		if c > boundary+FlexSeconds {
			break
		}
		diff := math.Abs(c - boundary)
		if diff < bestDiff {
			best, bestDiff, found = c, diff, true
		}
	}
	return best, found
}
