package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"creatorpack/internal/chapters"
	"creatorpack/internal/highlights"
	"creatorpack/internal/services"
	"creatorpack/internal/transcript"
)

// ChunkEntry maps one produced chapter file in assets.map.json.
type ChunkEntry struct {
	File  string  `json:"file"`
	SRT   string  `json:"srt"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ShortEntry maps one produced highlight clip in assets.map.json.
type ShortEntry struct {
	File    string  `json:"file"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Caption string  `json:"caption"`
}

// AssetsMap is the assets.map.json document tying plan entries to the
// files the bundle actually contains.
type AssetsMap struct {
	Source string       `json:"source"`
	Chunks []ChunkEntry `json:"chunks"`
	Shorts []ShortEntry `json:"shorts"`
}

// ProvenanceAsset records where one input came from and under what
// terms.
type ProvenanceAsset struct {
	SourceKind  string `json:"source_kind"`
	SourceValue string `json:"source_value"`
	Title       string `json:"title"`
	Creator     string `json:"creator"`
	LicenseCode string `json:"license_code"`
	LicenseName string `json:"license_name"`
	LicenseURL  string `json:"license_url"`
	Checksum    string `json:"checksum,omitempty"`
}

// Provenance is the provenance.json document. It carries no timestamps
// so identical jobs produce identical bundles.
type Provenance struct {
	JobID  string            `json:"job_id"`
	Assets []ProvenanceAsset `json:"assets"`
}

// Writer persists manifests and sidecars into a bundle.
type Writer struct {
	bundle Bundle
}

// NewWriter returns a Writer rooted at the bundle.
func NewWriter(bundle Bundle) *Writer {
	return &Writer{bundle: bundle}
}

// Bundle returns the layout this writer targets.
func (w *Writer) Bundle() Bundle { return w.bundle }

// WriteTranscript writes transcript.json.
func (w *Writer) WriteTranscript(tr transcript.Transcript) error {
	return w.writeJSON(TranscriptFile, tr)
}

// WriteChapterPlan writes chapters.json.
func (w *Writer) WriteChapterPlan(plan chapters.Plan) error {
	return w.writeJSON(ChaptersFile, plan)
}

// WriteHighlights writes highlights.json. A nil slice still produces an
// empty array so downstream readers can rely on the file.
func (w *Writer) WriteHighlights(clips []highlights.Highlight) error {
	if clips == nil {
		clips = []highlights.Highlight{}
	}
	return w.writeJSON(HighlightsFile, clips)
}

// WriteAssetsMap writes assets.map.json.
func (w *Writer) WriteAssetsMap(assets AssetsMap) error {
	if assets.Chunks == nil {
		assets.Chunks = []ChunkEntry{}
	}
	if assets.Shorts == nil {
		assets.Shorts = []ShortEntry{}
	}
	return w.writeJSON(AssetsMapFile, assets)
}

// WriteProvenance writes provenance.json.
func (w *Writer) WriteProvenance(prov Provenance) error {
	if prov.Assets == nil {
		prov.Assets = []ProvenanceAsset{}
	}
	return w.writeJSON(ProvenanceFile, prov)
}

// WriteCredits writes credits.md.
func (w *Writer) WriteCredits(credits *Credits) error {
	return w.writeText(CreditsFile, credits.RenderMarkdown())
}

// WriteSummary writes summary.md.
func (w *Writer) WriteSummary(markdown string) error {
	return w.writeText(SummaryFile, markdown)
}

// WriteChapterSRT writes the SRT sidecar for one chapter next to its
// media file, re-based so subtitles start at zero within the chapter.
func (w *Writer) WriteChapterSRT(tr transcript.Transcript, chapter chapters.Chapter) (string, error) {
	name := ChapterFileName(chapter.Index, ".srt")
	path := filepath.Join(w.bundle.ChaptersDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "export", "srt", path, err)
	}
	window := transcript.Segment{Start: chapter.Start, End: chapter.End}
	err = tr.WriteSRT(out, &window)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "export", "srt", path, err)
	}
	return name, nil
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrValidation, "export", "manifest",
			fmt.Sprintf("encode %s", name), err)
	}
	return w.writeText(name, string(data)+"\n")
}

func (w *Writer) writeText(name, body string) error {
	path := filepath.Join(w.bundle.Root, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "export", "manifest", path, err)
	}
	return nil
}

// MediaExt normalizes a staged file's extension for chapter output
// names, defaulting to .mp4 when the source has none.
func MediaExt(stagedFile string) string {
	ext := strings.ToLower(filepath.Ext(stagedFile))
	if ext == "" {
		return ".mp4"
	}
	return ext
}
