package logging

import (
	"context"
	"io"
	"log/slog"

	"creatorpack/internal/services"
)

// NewNop returns a logger that discards everything. Useful in tests and
// as a safe fallback when no logger was injected.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// WithContext decorates the logger with the asset and stage annotations
// carried on the context, so every stage log line ties back to the
// queue item that produced it.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if id, ok := services.AssetIDFromContext(ctx); ok {
		logger = logger.With(slog.Int64(FieldAssetID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		logger = logger.With(slog.String(FieldStage, stage))
	}
	return logger
}
