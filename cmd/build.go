package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kozaktomas/face-roster/internal/builder"
	"github.com/kozaktomas/face-roster/internal/config"
	"github.com/kozaktomas/face-roster/internal/fingerprint"
	"github.com/kozaktomas/face-roster/internal/roster"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the roster snapshot from the dataset",
	Long: `Rebuild the roster snapshot from the wanted-persons spreadsheet.

The dataset is fetched from DATASET_URL as CSV, every reference photo is
downloaded and run through the face embedding service, and all rows that
produced a usable embedding are written as one snapshot, replacing any
previous one. Rows with missing fields, unreachable or undecodable photos,
or no detectable face are skipped with a warning; the build only aborts when
the dataset itself is unreachable or misses a required column.

Examples:
  # Rebuild the snapshot
  face-roster build

  # Validate and embed without writing the snapshot
  face-roster build --dry-run

  # JSON report output
  face-roster build --json`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Bool("dry-run", false, "Run the full pipeline without writing the snapshot")
	buildCmd.Flags().Bool("json", false, "Output the build report as JSON")
}

// BuildResult represents the result of a build operation
type BuildResult struct {
	Success    bool                       `json:"success"`
	Rows       int                        `json:"rows"`
	Valid      int                        `json:"valid"`
	Skipped    map[builder.SkipReason]int `json:"skipped,omitempty"`
	Snapshot   string                     `json:"snapshot,omitempty"`
	DryRun     bool                       `json:"dry_run"`
	DurationMs int64                      `json:"duration_ms"`
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runBuild(cmd *cobra.Command, args []string) error {
	dryRun := mustGetBool(cmd, "dry-run")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	if cfg.Dataset.URL == "" {
		return errors.New("DATASET_URL environment variable is required")
	}

	ctx := context.Background()
	startTime := time.Now()

	provider := fingerprint.NewClient(
		cfg.Embedding.URL,
		time.Duration(cfg.Embedding.TimeoutSeconds)*time.Second,
	)
	b := builder.New(cfg, provider)

	if !jsonOutput {
		fmt.Printf("Fetching dataset from %s...\n", cfg.Dataset.URL)
	}

	var bar *progressbar.ProgressBar
	b.OnRow = func(result builder.RowResult) {
		if jsonOutput {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("Embedding reference photos"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
			)
		}
		_ = bar.Add(1)
		if result.Skipped() {
			fmt.Printf("\nWarning: row %d (%s) skipped [%s]: %v\n", result.Row, result.Name, result.Skip, result.Err)
		}
	}

	persons, report, err := b.Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	result := BuildResult{
		Success: true,
		Rows:    report.Rows,
		Valid:   report.Valid,
		Skipped: report.Skipped,
		DryRun:  dryRun,
	}

	if dryRun {
		if !jsonOutput {
			fmt.Printf("Dry run: %d of %d rows valid, snapshot not written\n", report.Valid, report.Rows)
		}
	} else {
		store := roster.NewStore(cfg.Roster.SnapshotPath)
		if err := store.Save(persons); err != nil {
			return fmt.Errorf("could not write snapshot: %w", err)
		}
		result.Snapshot = store.Path()
		if !jsonOutput {
			fmt.Printf("Roster snapshot written to %s with %d records (%d rows skipped)\n",
				store.Path(), report.Valid, report.Rows-report.Valid)
		}
	}

	result.DurationMs = time.Since(startTime).Milliseconds()
	if jsonOutput {
		return outputJSON(result)
	}
	return nil
}
