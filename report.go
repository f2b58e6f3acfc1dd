package altupdater

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	SummaryFileName = "alt-text-update-summary.json"
	ReportFileName  = "alt-text-update-report.csv"
)

type reportSummary struct {
	RunID       string              `json:"run_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	CSV         string              `json:"csv"`
	JSONRoot    string              `json:"json_root"`
	Mode        string              `json:"mode"`
	Alts        int                 `json:"alts"`
	TotalFiles  int                 `json:"total_json_files_scanned"`
	Changed     int                 `json:"changed_files"`
	RewriteSrc  bool                `json:"rewrite_src_enabled"`
	DryRun      bool                `json:"dry_run"`
	Details     map[string][]Update `json:"details"`
	Errors      []string            `json:"errors,omitempty"`
}

// WriteReports writes the JSON summary and the flat CSV report of result into
// dir and returns their paths.
func WriteReports(dir string, result *RunResult) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	summary := reportSummary{
		RunID:       result.RunID,
		GeneratedAt: time.Now().UTC(),
		CSV:         result.CSVPath,
		JSONRoot:    result.JSONRoot,
		Mode:        result.Mode,
		Alts:        result.Alts,
		TotalFiles:  result.TotalFiles,
		Changed:     result.ChangedFiles,
		RewriteSrc:  result.RewriteSrc,
		DryRun:      result.DryRun,
		Details:     make(map[string][]Update),
		Errors:      result.Errors,
	}
	for _, f := range result.Files {
		if len(f.Updates) > 0 {
			summary.Details[f.Path] = f.Updates
		}
	}

	summaryPath := filepath.Join(dir, SummaryFileName)
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(summaryPath, data, DefaultFilePermissions); err != nil {
		return "", "", fmt.Errorf("failed to write summary: %w", err)
	}

	reportPath := filepath.Join(dir, ReportFileName)
	if err := writeCSVReport(reportPath, result.Updates()); err != nil {
		return summaryPath, "", err
	}

	return summaryPath, reportPath, nil
}

func writeCSVReport(path string, updates []Update) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV report: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"json_file", "old_src", "new_alt", "new_src_if_rewritten"}); err != nil {
		return err
	}
	for _, u := range updates {
		if err := w.Write([]string{u.File, u.OldSrc, u.Alt, u.NewSrc}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV report: %w", err)
	}
	return f.Close()
}
