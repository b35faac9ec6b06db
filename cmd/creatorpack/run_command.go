package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"log/slog"

	"github.com/spf13/cobra"

	"creatorpack/internal/config"
	"creatorpack/internal/exporting"
	"creatorpack/internal/gating"
	"creatorpack/internal/jobid"
	"creatorpack/internal/planning"
	"creatorpack/internal/preflight"
	"creatorpack/internal/queue"
	"creatorpack/internal/sources"
	"creatorpack/internal/transcribing"
	"creatorpack/internal/workflow"
)

// runPolicyFlags are per-run overrides of config policy values. Only
// flags the user actually set are applied.
type runPolicyFlags struct {
	template   string
	minutes    int
	smart      bool
	highlights bool
	brand      string
	localize   string
	diarize    bool
	allowNcNd  bool
	out        string
	sources    []string
}

func (f *runPolicyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.template, "template", "", "Output template name")
	cmd.Flags().IntVar(&f.minutes, "minutes", 0, "Target chapter length in minutes")
	cmd.Flags().BoolVar(&f.smart, "smart", false, "Align chapter boundaries to sentence ends")
	cmd.Flags().BoolVar(&f.highlights, "highlights", false, "Plan vertical highlight shorts")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand theme YAML path")
	cmd.Flags().StringVar(&f.localize, "localize", "", "Localization language tag")
	cmd.Flags().BoolVar(&f.diarize, "diarize", false, "Label speaker turns in the transcript")
	cmd.Flags().BoolVar(&f.allowNcNd, "allow-nc-nd", false, "Permit NC/ND licenses (blocked by default)")
	cmd.Flags().StringVar(&f.out, "out", "", "Export directory")
	cmd.Flags().StringSliceVar(&f.sources, "allow-sources", nil, "Source kinds to allow (replaces the configured list)")
}

func (f *runPolicyFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("template") {
		cfg.Output.Template = f.template
	}
	if flags.Changed("minutes") {
		cfg.Chapters.TargetMinutes = f.minutes
	}
	if flags.Changed("smart") {
		cfg.Chapters.AllowSmart = f.smart
	}
	if flags.Changed("highlights") {
		cfg.Highlights.Enabled = f.highlights
	}
	if flags.Changed("brand") {
		cfg.Output.BrandPath = f.brand
	}
	if flags.Changed("localize") {
		cfg.Output.Localize = f.localize
	}
	if flags.Changed("diarize") {
		cfg.Transcription.Diarize = f.diarize
	}
	if flags.Changed("allow-nc-nd") {
		cfg.Sources.BlockNcNd = !f.allowNcNd
	}
	if flags.Changed("out") {
		cfg.Paths.ExportDir = f.out
	}
	if flags.Changed("allow-sources") {
		cfg.Sources.Allowed = f.sources
	}
	return cfg.Finalize()
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var jsonOut bool
	policy := &runPolicyFlags{}

	cmd := &cobra.Command{
		Use:   "run [asset...]",
		Short: "Process assets through gating, transcription, planning, and export",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, args, policy, dryRun, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Stop after planning and print plans without cutting media")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit results as JSON")
	policy.register(cmd)
	return cmd
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	policy := &runPolicyFlags{}

	cmd := &cobra.Command{
		Use:   "plan [asset...]",
		Short: "Compute chapter and highlight plans without cutting media",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, args, policy, true, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit plans as JSON")
	policy.register(cmd)
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, args []string, policy *runPolicyFlags, dryRun, jsonOut bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if policy != nil {
		if err := policy.apply(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}
	}
	logger := ctx.newLogger(cfg)

	refs, err := resolveAssetRefs(cfg, args)
	if err != nil {
		return err
	}
	if err := ensurePreflight(cmd, signalCtx, cfg, refs); err != nil {
		return err
	}
	jobID, err := jobid.Compute(refs, jobid.ParamsFromConfig(cfg))
	if err != nil {
		return err
	}

	lock, err := acquireRunLock(cfg)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
		if err := enqueueAssets(signalCtx, store, refs, jobID); err != nil {
			return err
		}

		opts := []workflow.ManagerOption{}
		if dryRun {
			opts = append(opts, workflow.WithStopAfter(queue.StatusPlanned))
		}
		manager := workflow.NewManager(cfg, store, logger, newStageSet(cfg, store, logger), opts...)
		if err := manager.RunBatch(signalCtx); err != nil {
			return err
		}

		items, err := store.ListByJob(signalCtx, jobID)
		if err != nil {
			return err
		}
		return reportRun(cmd, cfg, jobID, items, dryRun, jsonOut)
	})
}

func newStageSet(cfg *config.Config, store *queue.Store, logger *slog.Logger) workflow.StageSet {
	return workflow.StageSet{
		Gater:       gating.NewGater(cfg, store, logger),
		Transcriber: transcribing.NewTranscriber(cfg, store, logger),
		Planner:     planning.NewPlanner(cfg, store, logger),
		Exporter:    exporting.NewExporter(cfg, store, logger),
	}
}

func ensurePreflight(cmd *cobra.Command, ctx context.Context, cfg *config.Config, refs []jobid.AssetRef) error {
	results := preflight.RunAll(ctx, cfg)
	var localPaths []string
	for _, ref := range refs {
		if ref.Kind == sources.KindLocal {
			localPaths = append(localPaths, ref.Value)
		}
	}
	results = append(results, preflight.CheckInputFiles(localPaths)...)
	if preflight.AllPassed(results) {
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		if res.Passed {
			continue
		}
		rows = append(rows, []string{res.Name, res.Detail})
	}
	fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Check", "Problem"}, rows, []columnAlignment{alignLeft, alignLeft}))
	return fmt.Errorf("%d preflight checks failed", len(rows))
}

func resolveAssetRefs(cfg *config.Config, args []string) ([]jobid.AssetRef, error) {
	client := &http.Client{Timeout: time.Duration(cfg.Sources.RequestTimeout) * time.Second}
	registry := sources.NewRegistry(client, cfg.Sources.Allowed)

	refs := make([]jobid.AssetRef, 0, len(args))
	for _, arg := range args {
		kind, _, err := registry.Detect(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve asset %q: %w", arg, err)
		}
		value := arg
		if kind == sources.KindLocal {
			abs, absErr := filepath.Abs(arg)
			if absErr != nil {
				return nil, fmt.Errorf("resolve asset path %q: %w", arg, absErr)
			}
			value = abs
		}
		refs = append(refs, jobid.AssetRef{Kind: kind, Value: value})
	}
	return refs, nil
}

// enqueueAssets adds each asset to the queue unless an item for the same
// job and source already exists, making reruns idempotent.
func enqueueAssets(ctx context.Context, store *queue.Store, refs []jobid.AssetRef, jobID string) error {
	existing, err := store.ListByJob(ctx, jobID)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[item.SourceValue] = struct{}{}
	}
	for _, ref := range refs {
		if _, ok := seen[ref.Value]; ok {
			continue
		}
		if _, err := store.NewAsset(ctx, ref.Kind, ref.Value, jobID); err != nil {
			return err
		}
	}
	return nil
}
