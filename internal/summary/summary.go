// Package summary builds the markdown summary shipped with an export
// bundle: one timestamped bullet per chapter with the chapter's leading
// sentence, followed by the chapter's top stemmed keywords.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reiver/go-porterstemmer"

	"creatorpack/internal/chapters"
	"creatorpack/internal/textutil"
	"creatorpack/internal/transcript"
)

// KeywordsPerChapter is how many keywords each bullet carries.
const KeywordsPerChapter = 3

// Bullet is one summary entry.
type Bullet struct {
	// Timecode is the chapter start in seconds.
	Timecode float64 `json:"timecode"`
	// Text is the chapter's leading sentence.
	Text string `json:"text"`
	// Keywords are the chapter's top stemmed terms, most frequent
	// first.
	Keywords []string `json:"keywords,omitempty"`
}

// Build creates one bullet per chapter from the transcript.
func Build(tr transcript.Transcript, plan chapters.Plan) []Bullet {
	bullets := make([]Bullet, 0, len(plan.Chapters))
	for _, chapter := range plan.Chapters {
		bullets = append(bullets, Bullet{
			Timecode: chapter.Start,
			Text:     leadingText(tr, chapter.Start),
			Keywords: keywords(tr, chapter.Start, chapter.End),
		})
	}
	return bullets
}

// leadingText returns the text of the segment covering the chapter
// start, or a placeholder when the transcript has no coverage there.
func leadingText(tr transcript.Transcript, start float64) string {
	for _, seg := range tr.Segments {
		if seg.Start <= start && start <= seg.End {
			if text := strings.TrimSpace(seg.Text); text != "" {
				return text
			}
		}
	}
	return "Chapter overview"
}

// keywords ranks stemmed tokens inside [start, end) by frequency. The
// displayed keyword is the shortest surface form seen for each stem.
func keywords(tr transcript.Transcript, start, end float64) []string {
	counts := make(map[string]int)
	surface := make(map[string]string)
	for _, seg := range tr.Segments {
		if seg.End <= start || seg.Start >= end {
			continue
		}
		for _, token := range textutil.Tokenize(seg.Text) {
			if _, stop := stopwords[token]; stop {
				continue
			}
			stem := porterstemmer.StemString(token)
			if stem == "" {
				continue
			}
			counts[stem]++
			if current, ok := surface[stem]; !ok || len(token) < len(current) {
				surface[stem] = token
			}
		}
	}

	stems := make([]string, 0, len(counts))
	for stem := range counts {
		stems = append(stems, stem)
	}
	sort.Slice(stems, func(i, j int) bool {
		if counts[stems[i]] != counts[stems[j]] {
			return counts[stems[i]] > counts[stems[j]]
		}
		return surface[stems[i]] < surface[stems[j]]
	})
	if len(stems) > KeywordsPerChapter {
		stems = stems[:KeywordsPerChapter]
	}

	words := make([]string, 0, len(stems))
	for _, stem := range stems {
		words = append(words, surface[stem])
	}
	return words
}

// RenderMarkdown renders the bullets as the summary.md body.
func RenderMarkdown(bullets []Bullet) string {
	var b strings.Builder
	b.WriteString("## Summary\n")
	for _, bullet := range bullets {
		b.WriteString(fmt.Sprintf("- [%s] %s", transcript.FormatTimestamp(bullet.Timecode), bullet.Text))
		if len(bullet.Keywords) > 0 {
			b.WriteString(fmt.Sprintf(" _(keywords: %s)_", strings.Join(bullet.Keywords, ", ")))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n## Call to Action\n")
	b.WriteString("- Subscribe for more local-first creator workflows!\n")
	return b.String()
}
