package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"creatorpack/internal/chapters"
	"creatorpack/internal/config"
	"creatorpack/internal/highlights"
	"creatorpack/internal/queue"
	"creatorpack/internal/stage"
	"creatorpack/internal/transcript"
)

type runReport struct {
	JobID  string            `json:"job_id"`
	Export string            `json:"export_dir,omitempty"`
	Assets []runReportAsset  `json:"assets"`
	Plans  []runReportPlan   `json:"plans,omitempty"`
	Counts map[string]int    `json:"counts"`
	Errors map[string]string `json:"errors,omitempty"`
}

type runReportAsset struct {
	ID     int64  `json:"id"`
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type runReportPlan struct {
	AssetID    int64                  `json:"asset_id"`
	Chapters   []chapters.Chapter     `json:"chapters"`
	Highlights []highlights.Highlight `json:"highlights,omitempty"`
}

func reportRun(cmd *cobra.Command, cfg *config.Config, jobID string, items []*queue.Item, dryRun, jsonOut bool) error {
	report := buildRunReport(cfg, jobID, items, dryRun)

	if jsonOut {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		renderRunReport(cmd, report, dryRun)
	}

	if failed := report.Counts[string(queue.StatusFailed)]; failed > 0 {
		return fmt.Errorf("%d of %d assets failed; inspect with `creatorpack queue list`", failed, len(items))
	}
	return nil
}

func buildRunReport(cfg *config.Config, jobID string, items []*queue.Item, dryRun bool) runReport {
	report := runReport{
		JobID:  jobID,
		Counts: make(map[string]int),
		Errors: make(map[string]string),
	}
	if !dryRun {
		report.Export = filepath.Join(cfg.Paths.ExportDir, jobID)
	}

	for _, item := range items {
		report.Counts[string(item.Status)]++

		asset := runReportAsset{
			ID:     item.ID,
			Source: item.SourceValue,
			Title:  item.Title,
			Status: string(item.Status),
		}
		switch {
		case item.Status == queue.StatusReview:
			asset.Detail = item.ReviewReason
		case item.ErrorMessage != "":
			asset.Detail = item.ErrorMessage
		}
		report.Assets = append(report.Assets, asset)
		if asset.Detail != "" {
			report.Errors[fmt.Sprintf("%d", item.ID)] = asset.Detail
		}

		if dryRun && item.ChapterPlanJSON != "" {
			plan, err := stage.ParseChapterPlan(item.ChapterPlanJSON)
			if err != nil {
				continue
			}
			clips, err := stage.ParseHighlights(item.HighlightsJSON)
			if err != nil {
				clips = nil
			}
			report.Plans = append(report.Plans, runReportPlan{
				AssetID:    item.ID,
				Chapters:   plan.Chapters,
				Highlights: clips,
			})
		}
	}
	return report
}

func renderRunReport(cmd *cobra.Command, report runReport, dryRun bool) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(report.Assets))
	for _, asset := range report.Assets {
		title := asset.Title
		if title == "" {
			title = filepath.Base(asset.Source)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", asset.ID),
			truncate(title, 40),
			asset.Status,
			truncate(asset.Detail, 60),
		})
	}
	fmt.Fprintf(out, "Job %s\n", report.JobID)
	fmt.Fprint(out, renderTable(
		[]string{"ID", "Title", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))

	for _, plan := range report.Plans {
		fmt.Fprintf(out, "\nAsset %d: %d chapters", plan.AssetID, len(plan.Chapters))
		if len(plan.Highlights) > 0 {
			fmt.Fprintf(out, ", %d highlights", len(plan.Highlights))
		}
		fmt.Fprintln(out)

		chapterRows := make([][]string, 0, len(plan.Chapters))
		for _, chapter := range plan.Chapters {
			chapterRows = append(chapterRows, []string{
				fmt.Sprintf("%d", chapter.Index),
				transcript.FormatTimestamp(chapter.Start),
				transcript.FormatTimestamp(chapter.End),
				truncate(chapter.Title, 50),
			})
		}
		fmt.Fprint(out, renderTable(
			[]string{"#", "Start", "End", "Title"},
			chapterRows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
		))

		if len(plan.Highlights) > 0 {
			highlightRows := make([][]string, 0, len(plan.Highlights))
			for i, clip := range plan.Highlights {
				highlightRows = append(highlightRows, []string{
					fmt.Sprintf("%d", i+1),
					transcript.FormatTimestamp(clip.Start),
					transcript.FormatTimestamp(clip.End),
					truncate(clip.Caption, 50),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"#", "Start", "End", "Caption"},
				highlightRows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
		}
	}

	if !dryRun && report.Export != "" && report.Counts[string(queue.StatusCompleted)] > 0 {
		fmt.Fprintf(out, "Export bundle: %s\n", report.Export)
	}
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if max <= 3 || len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
