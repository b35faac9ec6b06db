package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"creatorpack/internal/config"
)

// ErrNotFound reports a lookup for an absent item.
var ErrNotFound = errors.New("queue item not found")

// Store manages asset persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database at the configured
// log directory and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "queue.db"))
}

// OpenPath opens the queue database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewAsset inserts a pending asset for one resolved input.
func (s *Store) NewAsset(ctx context.Context, kind, value, jobID string) (*Item, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO assets (job_id, source_kind, source_value, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, kind, value, StatusPending, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

const itemColumns = `id, job_id, source_kind, source_value, title, creator,
    license_code, license_name, license_url, attribution_required,
    staged_file, checksum, duration_seconds, transcript_json,
    chapter_plan_json, highlights_json, status, error_message,
    progress_stage, progress_message, needs_review, review_reason,
    created_at, updated_at`

// GetByID fetches one item.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM assets WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return item, err
}

// Update persists every mutable column of the item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET
            job_id = ?, title = ?, creator = ?,
            license_code = ?, license_name = ?, license_url = ?, attribution_required = ?,
            staged_file = ?, checksum = ?, duration_seconds = ?,
            transcript_json = ?, chapter_plan_json = ?, highlights_json = ?,
            status = ?, error_message = ?, progress_stage = ?, progress_message = ?,
            needs_review = ?, review_reason = ?, updated_at = ?
         WHERE id = ?`,
		item.JobID, item.Title, item.Creator,
		item.LicenseCode, item.LicenseName, item.LicenseURL, boolToInt(item.AttributionRequired),
		item.StagedFile, item.Checksum, item.DurationSeconds,
		item.TranscriptJSON, item.ChapterPlanJSON, item.HighlightsJSON,
		item.Status, item.ErrorMessage, item.ProgressStage, item.ProgressMessage,
		boolToInt(item.NeedsReview), item.ReviewReason, item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update asset %d: %w", item.ID, err)
	}
	return nil
}

// ItemsByStatus returns items currently in the given status, oldest first.
func (s *Store) ItemsByStatus(ctx context.Context, status Status) ([]*Item, error) {
	return s.queryItems(ctx, "SELECT "+itemColumns+" FROM assets WHERE status = ? ORDER BY id", status)
}

// NextForStatus returns the oldest item in the given status, or nil.
func (s *Store) NextForStatus(ctx context.Context, status Status) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM assets WHERE status = ? ORDER BY id LIMIT 1", status)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// List returns items, optionally filtered to the provided statuses.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	if len(statuses) == 0 {
		return s.queryItems(ctx, "SELECT "+itemColumns+" FROM assets ORDER BY id")
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = status
	}
	query := "SELECT " + itemColumns + " FROM assets WHERE status IN (" +
		strings.Join(placeholders, ", ") + ") ORDER BY id"
	return s.queryItems(ctx, query, args...)
}

// ListByJob returns every item belonging to one job, oldest first.
func (s *Store) ListByJob(ctx context.Context, jobID string) ([]*Item, error) {
	return s.queryItems(ctx, "SELECT "+itemColumns+" FROM assets WHERE job_id = ? ORDER BY id", jobID)
}

// Remove deletes one item, reporting whether a row existed.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete asset %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Clear removes every item and returns the count removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM assets")
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed returns failed and review items to pending and reports how
// many were reset.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET status = ?, error_message = '', needs_review = 0,
            review_reason = '', progress_stage = '', progress_message = '', updated_at = ?
         WHERE status IN (?, ?)`,
		StatusPending, timestamp, StatusFailed, StatusReview,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuck rolls interrupted in-flight items back to their last settled
// status. Called on startup before the workflow begins.
func (s *Store) ResetStuck(ctx context.Context) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for from, to := range processingRollbacks {
		if _, err := s.db.ExecContext(
			ctx,
			"UPDATE assets SET status = ?, updated_at = ? WHERE status = ?",
			to, timestamp, from,
		); err != nil {
			return fmt.Errorf("reset %s items: %w", from, err)
		}
	}
	return nil
}

// HealthSummary aggregates queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Review     int
}

// Health returns aggregate counts for presentation.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM assets GROUP BY status")
	if err != nil {
		return HealthSummary{}, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var statusStr string
		var count int
		if err := rows.Scan(&statusStr, &count); err != nil {
			return HealthSummary{}, err
		}
		summary.Total += count
		status := Status(statusStr)
		switch {
		case status == StatusPending:
			summary.Pending += count
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusFailed:
			summary.Failed += count
		case status == StatusReview:
			summary.Review += count
		default:
			if _, ok := processingStatuses[status]; ok {
				summary.Processing += count
			}
		}
	}
	return summary, rows.Err()
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		item        Item
		statusStr   string
		attribution int64
		needsReview int64
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(
		&item.ID,
		&item.JobID,
		&item.SourceKind,
		&item.SourceValue,
		&item.Title,
		&item.Creator,
		&item.LicenseCode,
		&item.LicenseName,
		&item.LicenseURL,
		&attribution,
		&item.StagedFile,
		&item.Checksum,
		&item.DurationSeconds,
		&item.TranscriptJSON,
		&item.ChapterPlanJSON,
		&item.HighlightsJSON,
		&statusStr,
		&item.ErrorMessage,
		&item.ProgressStage,
		&item.ProgressMessage,
		&needsReview,
		&item.ReviewReason,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	item.Status = Status(statusStr)
	item.AttributionRequired = attribution != 0
	item.NeedsReview = needsReview != 0
	item.CreatedAt = parseTimestamp(createdRaw)
	item.UpdatedAt = parseTimestamp(updatedRaw)
	return &item, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts
	}
	return time.Time{}
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
