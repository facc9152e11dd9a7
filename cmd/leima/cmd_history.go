package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/leima/config"
	"github.com/yairfalse/leima/history"
)

var (
	historyLimit int
	historyKeep  int64
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent reconciliation runs",
	Long: `List the most recent reconciliation runs recorded in the history
store, newest first.`,
	Example: `  leima history              # Last 10 runs
  leima history --limit 50   # Last 50 runs`,
	RunE: runHistory,
}

// historyCompactCmd removes old run records
var historyCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Drop run records older than the most recent N",
	Example: `  leima history compact            # Keep the last 100 runs
  leima history compact --keep 500 # Keep the last 500 runs`,
	RunE: runHistoryCompact,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyCompactCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to list")
	historyCompactCmd.Flags().Int64Var(&historyKeep, "keep", 100, "Number of recent runs to keep")
}

func openHistoryStore() (*history.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.History.Dir == "" {
		return nil, fmt.Errorf("no history directory configured")
	}
	return history.NewStore(cfg.History.Dir)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}

	stats := store.GetStats()
	fmt.Printf("📜 %d runs recorded, %d resources tagged in total\n\n", stats.TotalRuns, stats.TotalTagged)

	for _, run := range runs {
		status := "✅"
		if run.Error != "" {
			status = "❌"
		} else if run.Failed > 0 {
			status = "⚠️ "
		}

		fmt.Printf("%s run %d  %s  trigger=%s  regions=%s\n",
			status, run.RunID,
			run.StartedAt.Format(time.RFC3339),
			run.Trigger,
			strings.Join(run.Regions, ","))
		fmt.Printf("   listed %d  tagged %d  skipped %d  failed %d  took %s\n",
			run.Listed, run.Tagged, run.Skipped, run.Failed,
			run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
		if run.Error != "" {
			fmt.Printf("   error: %s\n", run.Error)
		}
	}
	return nil
}

func runHistoryCompact(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	before := store.GetStats().TotalRuns
	if err := store.Compact(historyKeep); err != nil {
		return fmt.Errorf("compact failed: %w", err)
	}
	after := store.GetStats().TotalRuns

	fmt.Printf("🧹 Compacted history: %d runs removed, %d kept\n", before-after, after)
	return nil
}
