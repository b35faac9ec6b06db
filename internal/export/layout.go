package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"creatorpack/internal/services"
)

// Bundle layout file names.
const (
	TranscriptFile = "transcript.json"
	ChaptersFile   = "chapters.json"
	HighlightsFile = "highlights.json"
	AssetsMapFile  = "assets.map.json"
	CreditsFile    = "credits.md"
	SummaryFile    = "summary.md"
	ProvenanceFile = "provenance.json"
)

// Bundle is the directory layout of one job's export.
type Bundle struct {
	Root        string
	ChaptersDir string
	ShortsDir   string
	AudioDir    string
}

// NewBundle creates the export layout <exportDir>/<jobID>/ with the
// chapters, shorts/9x16, and audio subdirectories.
func NewBundle(exportDir, jobID string) (Bundle, error) {
	var bundle Bundle

	exportDir = strings.TrimSpace(exportDir)
	if exportDir == "" {
		return bundle, services.Wrap(services.ErrConfiguration, "export", "layout", "export dir required", nil)
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return bundle, services.Wrap(services.ErrValidation, "export", "layout", "job id required", nil)
	}

	bundle.Root = filepath.Join(exportDir, jobID)
	bundle.ChaptersDir = filepath.Join(bundle.Root, "chapters")
	bundle.ShortsDir = filepath.Join(bundle.Root, "shorts", "9x16")
	bundle.AudioDir = filepath.Join(bundle.Root, "audio")

	for _, dir := range []string{bundle.ChaptersDir, bundle.ShortsDir, bundle.AudioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Bundle{}, services.Wrap(services.ErrConfiguration, "export", "layout",
				fmt.Sprintf("create %s", dir), err)
		}
	}
	return bundle, nil
}

// ChapterFileName returns the media file name for a 1-based chapter
// index, zero padded so lexical and chapter order agree.
func ChapterFileName(index int, ext string) string {
	return fmt.Sprintf("chapter-%02d%s", index, ext)
}

// ShortFileName returns the clip file name for a 1-based highlight
// index.
func ShortFileName(index int) string {
	return fmt.Sprintf("short-%02d.mp4", index)
}
