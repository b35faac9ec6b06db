package export

import (
	"fmt"
	"strings"

	"creatorpack/internal/license"
)

// CreditLine is one attribution entry in credits.md.
type CreditLine struct {
	Title       string `json:"title"`
	Creator     string `json:"creator"`
	LicenseName string `json:"license_name"`
	LicenseURL  string `json:"license_url"`
}

func (l CreditLine) render() string {
	return fmt.Sprintf("- %s by %s (%s) %s", l.Title, l.Creator, l.LicenseName, l.LicenseURL)
}

// Credits collects attribution lines across a job's assets.
type Credits struct {
	lines []CreditLine
}

// Add records an attribution line for the asset when its license
// verdict requires one; permissive verdicts are skipped.
func (c *Credits) Add(title, creator string, verdict license.Verdict) {
	if !verdict.AttributionRequired {
		return
	}
	c.lines = append(c.lines, CreditLine{
		Title:       title,
		Creator:     creator,
		LicenseName: verdict.Name,
		LicenseURL:  verdict.URL,
	})
}

// Lines returns the collected attribution lines in insertion order.
func (c *Credits) Lines() []CreditLine {
	return append([]CreditLine(nil), c.lines...)
}

// RenderMarkdown renders the credits.md body. Jobs with no attribution
// obligations still get a file stating so.
func (c *Credits) RenderMarkdown() string {
	var b strings.Builder
	b.WriteString("# Credits\n")
	if len(c.lines) == 0 {
		b.WriteString("- No attribution required.\n")
		return b.String()
	}
	for _, line := range c.lines {
		b.WriteString(line.render())
		b.WriteString("\n")
	}
	return b.String()
}
