package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"creatorpack/internal/config"
	"creatorpack/internal/queue"
	"creatorpack/internal/watcher"
	"creatorpack/internal/workflow"
)

// watchPollInterval is how often the watch loop drains pending queue
// items through the pipeline.
const watchPollInterval = 5 * time.Second

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox directory and process dropped media",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.newLogger(cfg)

			lock, err := acquireRunLock(cfg)
			if err != nil {
				return err
			}
			defer lock.Unlock()

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				w, err := watcher.New(cfg, store, logger)
				if err != nil {
					return err
				}
				manager := workflow.NewManager(cfg, store, logger, newStageSet(cfg, store, logger))

				group, groupCtx := errgroup.WithContext(signalCtx)
				group.Go(func() error {
					return w.Run(groupCtx)
				})
				group.Go(func() error {
					return drainLoop(groupCtx, store, manager)
				})

				err = group.Wait()
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}

// drainLoop runs the pipeline whenever pending items exist, waking on a
// fixed interval.
func drainLoop(ctx context.Context, store *queue.Store, manager *workflow.Manager) error {
	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		pending, err := store.ItemsByStatus(ctx, queue.StatusPending)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			continue
		}
		if len(pending) == 0 {
			continue
		}
		if err := manager.RunBatch(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
		}
	}
}
