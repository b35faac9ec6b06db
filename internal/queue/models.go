package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queued asset.
type Status string

const (
	StatusPending      Status = "pending"
	StatusGating       Status = "gating"
	StatusGated        Status = "gated"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusPlanning     Status = "planning"
	StatusPlanned      Status = "planned"
	StatusExporting    Status = "exporting"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusGating,
	StatusGated,
	StatusTranscribing,
	StatusTranscribed,
	StatusPlanning,
	StatusPlanned,
	StatusExporting,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusGating:       {},
	StatusTranscribing: {},
	StatusPlanning:     {},
	StatusExporting:    {},
}

// processingRollbacks maps each in-flight status to the settled status an
// interrupted asset is returned to on startup.
var processingRollbacks = map[Status]Status{
	StatusGating:       StatusPending,
	StatusTranscribing: StatusGated,
	StatusPlanning:     StatusTranscribed,
	StatusExporting:    StatusPlanned,
}

// Item represents a queued asset persisted in SQLite.
type Item struct {
	ID                  int64
	JobID               string
	SourceKind          string
	SourceValue         string
	Title               string
	Creator             string
	LicenseCode         string
	LicenseName         string
	LicenseURL          string
	AttributionRequired bool
	StagedFile          string
	Checksum            string
	DurationSeconds     float64
	TranscriptJSON      string
	ChapterPlanJSON     string
	HighlightsJSON      string
	Status              Status
	ErrorMessage        string
	ProgressStage       string
	ProgressMessage     string
	NeedsReview         bool
	ReviewReason        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing reports whether the item is mid-stage.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsTerminal reports whether no further stage will pick the item up.
func (i Item) IsTerminal() bool {
	switch i.Status {
	case StatusCompleted, StatusFailed, StatusReview:
		return true
	default:
		return false
	}
}

// SetProgress updates the presentation fields describing stage activity.
func (i *Item) SetProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressStage = "Failed"
	i.ProgressMessage = message
}

// SetReview routes the item to manual review with a reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ProgressStage = "Review"
	i.ProgressMessage = reason
}
