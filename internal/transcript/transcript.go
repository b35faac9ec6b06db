// Package transcript defines the time-stamped transcript model produced by
// the speech-to-text service and consumed read-only by the planners.
package transcript

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Segment is a single time-stamped span of recognized speech.
// Start and End are seconds from the beginning of the media.
type Segment struct {
	ID      int     `json:"id"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Transcript is the ordered, immutable output of one transcription run.
type Transcript struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Duration returns the end time of the final segment, or 0 when empty.
func (t Transcript) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// Empty reports whether the transcript carries no segments.
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}

// Sentence is a sentence-granularity span derived from a segment.
type Sentence struct {
	Start float64
	End   float64
	Text  string
}

var sentenceSplitPattern = regexp.MustCompile(`(?:[.!?])\s+`)

// Sentences approximates sentence spans by splitting each segment's text on
// sentence terminators and apportioning the segment's time evenly across
// the pieces. The resulting end times are the natural cut points the
// chapter planner snaps to.
func (t Transcript) Sentences() []Sentence {
	var sentences []Sentence
	for _, segment := range t.Segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts := sentenceSplitPattern.Split(text, -1)
		kept := parts[:0]
		for _, part := range parts {
			if strings.TrimSpace(part) != "" {
				kept = append(kept, part)
			}
		}
		if len(kept) == 0 {
			continue
		}
		span := segment.Duration()
		if span < 0.01 {
			span = 0.01
		}
		piece := span / float64(len(kept))
		for i, part := range kept {
			start := segment.Start + piece*float64(i)
			end := start + piece
			if end > segment.End {
				end = segment.End
			}
			sentences = append(sentences, Sentence{Start: start, End: end, Text: strings.TrimSpace(part)})
		}
	}
	return sentences
}

// BoundaryCandidates returns sorted candidate cut timestamps: every
// segment end clipped to maxSeconds, plus sentence-internal split points
// when fine is set. The slice is non-decreasing because segments arrive
// ordered by start time and sentence pieces subdivide their segment.
func (t Transcript) BoundaryCandidates(maxSeconds float64, fine bool) []float64 {
	var candidates []float64
	if fine {
		for _, sentence := range t.Sentences() {
			candidates = append(candidates, clip(sentence.End, maxSeconds))
		}
		return candidates
	}
	for _, segment := range t.Segments {
		candidates = append(candidates, clip(segment.End, maxSeconds))
	}
	return candidates
}

func clip(value, max float64) float64 {
	if max > 0 && value > max {
		return max
	}
	return value
}

// WriteSRT renders the transcript as SubRip subtitles. When window is
// non-nil only segments overlapping [window.Start, window.End) are
// written, re-based to the window start.
func (t Transcript) WriteSRT(w io.Writer, window *Segment) error {
	index := 1
	for _, segment := range t.Segments {
		start, end := segment.Start, segment.End
		if window != nil {
			if end <= window.Start || start >= window.End {
				continue
			}
			if start < window.Start {
				start = window.Start
			}
			if end > window.End {
				end = window.End
			}
			start -= window.Start
			end -= window.Start
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", index, FormatTimestamp(start), FormatTimestamp(end), text); err != nil {
			return err
		}
		index++
	}
	return nil
}

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	millis := int((seconds-float64(whole))*1000 + 0.5)
	if millis >= 1000 {
		whole++
		millis -= 1000
	}
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
