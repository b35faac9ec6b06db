// Package watcher monitors the inbox directory and enqueues media files
// dropped into it. Each file becomes a single-asset job keyed by the
// deterministic fingerprint, so re-dropping an unchanged file reuses the
// same job identifier.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/fsnotify/fsnotify"

	"creatorpack/internal/config"
	"creatorpack/internal/jobid"
	"creatorpack/internal/logging"
	"creatorpack/internal/queue"
	"creatorpack/internal/services"
	"creatorpack/internal/sources"
)

// settleInterval is how often a detected file is re-stat'd while waiting
// for its size to stop changing.
const settleInterval = 500 * time.Millisecond

// defaultSettleTimeout bounds how long the watcher waits for a file copy
// to finish before giving up on it.
const defaultSettleTimeout = 2 * time.Minute

var mediaExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".mov":  {},
	".webm": {},
	".m4v":  {},
	".avi":  {},
	".mp3":  {},
	".m4a":  {},
	".flac": {},
	".wav":  {},
	".ogg":  {},
	".opus": {},
}

// Watcher tails the inbox directory via fsnotify and enqueues pending
// assets for the pipeline to pick up.
type Watcher struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	inbox         string
	settleTimeout time.Duration
	fw            *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	wg      sync.WaitGroup
}

// Option adjusts watcher construction.
type Option func(*Watcher)

// WithSettleTimeout overrides how long the watcher waits for a detected
// file to stop growing.
func WithSettleTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settleTimeout = d
		}
	}
}

// New constructs a watcher over cfg.Paths.InboxDir. The directory must be
// configured and must exist.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("watcher requires config and store")
	}
	inbox := strings.TrimSpace(cfg.Paths.InboxDir)
	if inbox == "" {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "configure", "inbox directory not configured; set paths.inbox_dir", nil)
	}
	info, err := os.Stat(inbox)
	if err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "configure", "inbox directory "+inbox+" is not a readable directory", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "watch", "initialize", "create filesystem watcher", err)
	}
	if err := fw.Add(inbox); err != nil {
		fw.Close()
		return nil, services.Wrap(services.ErrExternalTool, "watch", "initialize", "watch inbox directory "+inbox, err)
	}

	watchLogger := logger
	if watchLogger == nil {
		watchLogger = logging.NewNop()
	}
	watchLogger = watchLogger.With(slog.String(logging.FieldComponent, "watcher"))

	w := &Watcher{
		cfg:           cfg,
		store:         store,
		logger:        watchLogger,
		inbox:         inbox,
		settleTimeout: defaultSettleTimeout,
		fw:            fw,
		pending:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks consuming filesystem events until ctx is cancelled or the
// watcher fails. Files already present in the inbox when Run starts are
// enqueued first.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()

	w.logger.Info("watching inbox", slog.String("dir", w.inbox))
	w.sweepExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("watcher stopped")
			return ctx.Err()
		case event, ok := <-w.fw.Events:
			if !ok {
				w.wg.Wait()
				return errors.New("watcher event channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.maybeEnqueue(ctx, event.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				w.wg.Wait()
				return errors.New("watcher error channel closed")
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

// sweepExisting enqueues media files already sitting in the inbox so a
// restart does not strand them.
func (w *Watcher) sweepExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		w.logger.Warn("inbox sweep failed", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.maybeEnqueue(ctx, filepath.Join(w.inbox, entry.Name()))
	}
}

func (w *Watcher) maybeEnqueue(ctx context.Context, path string) {
	if !IsMediaFile(path) {
		w.logger.Debug("ignoring non-media file", slog.String("path", path))
		return
	}

	w.mu.Lock()
	if _, tracked := w.pending[path]; tracked {
		w.mu.Unlock()
		return
	}
	w.pending[path] = struct{}{}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.pending, path)
			w.mu.Unlock()
		}()
		if err := w.enqueue(ctx, path); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("enqueue failed", slog.String("path", path), logging.Error(err))
		}
	}()
}

func (w *Watcher) enqueue(ctx context.Context, path string) error {
	if err := w.waitSettled(ctx, path); err != nil {
		return err
	}

	ref := jobid.AssetRef{Kind: sources.KindLocal, Value: path}
	id, err := jobid.Compute([]jobid.AssetRef{ref}, jobid.ParamsFromConfig(w.cfg))
	if err != nil {
		return err
	}

	existing, err := w.store.ListByJob(ctx, id)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		w.logger.Info("asset already queued",
			slog.String("path", path),
			slog.String(logging.FieldJobID, id))
		return nil
	}

	item, err := w.store.NewAsset(ctx, sources.KindLocal, path, id)
	if err != nil {
		return err
	}
	w.logger.Info("queued inbox asset",
		slog.String("path", path),
		slog.String(logging.FieldJobID, id),
		slog.Int64(logging.FieldAssetID, item.ID))
	return nil
}

// waitSettled polls the file until its size holds steady across two
// consecutive checks, indicating the producing copy has finished.
func (w *Watcher) waitSettled(ctx context.Context, path string) error {
	deadline := time.Now().Add(w.settleTimeout)
	var lastSize int64 = -1
	for {
		info, err := os.Stat(path)
		if err != nil {
			// File may have been moved away before settling.
			return err
		}
		size := info.Size()
		if size == lastSize && size > 0 {
			return nil
		}
		lastSize = size
		if time.Now().After(deadline) {
			return services.Wrap(services.ErrTransient, "watch", "settle", "file "+path+" did not stop growing in time", nil)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settleInterval):
		}
	}
}

// IsMediaFile reports whether path has a recognized media extension.
func IsMediaFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := mediaExtensions[ext]
	return ok
}
