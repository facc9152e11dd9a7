package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/leima/config"
	"github.com/yairfalse/leima/journal"
)

var journalSince time.Duration

// journalCmd groups the audit journal subcommands
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the audit journal",
	Long: `Inspect the append-only audit journal: per-resource tag outcomes
and run lifecycle entries, one JSON line each.`,
}

var journalStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Print journal statistics",
	Example: `  leima journal stats`,
	RunE:    runJournalStats,
}

var journalReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Print journal entries since a duration ago",
	Example: `  leima journal replay               # Last 24 hours
  leima journal replay --since 1h    # Last hour`,
	RunE: runJournalReplay,
}

var journalCleanupCmd = &cobra.Command{
	Use:     "cleanup",
	Short:   "Remove journal files past retention",
	Example: `  leima journal cleanup`,
	RunE:    runJournalCleanup,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalStatsCmd)
	journalCmd.AddCommand(journalReplayCmd)
	journalCmd.AddCommand(journalCleanupCmd)

	journalReplayCmd.Flags().DurationVar(&journalSince, "since", 24*time.Hour, "How far back to replay")
}

func journalSettings() (string, journal.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", journal.Config{}, err
	}
	if cfg.Journal.Dir == "" {
		return "", journal.Config{}, fmt.Errorf("no journal directory configured")
	}

	jcfg := journal.DefaultConfig()
	if cfg.Journal.RetentionDays > 0 {
		jcfg.RetentionDays = cfg.Journal.RetentionDays
	}
	return cfg.Journal.Dir, jcfg, nil
}

func runJournalStats(cmd *cobra.Command, args []string) error {
	dir, jcfg, err := journalSettings()
	if err != nil {
		return err
	}

	stats := journal.GetStatsFromDir(dir, jcfg)

	fmt.Println("📒 Journal statistics")
	fmt.Printf("   Files: %d (%d bytes)\n", stats.TotalFiles, stats.TotalSizeBytes)
	fmt.Printf("   Entries: %d (sequence %d to %d)\n", stats.SequenceCount, stats.FirstSequence, stats.LastSequence)
	if !stats.OldestFile.IsZero() {
		fmt.Printf("   Oldest file: %s\n", stats.OldestFile.Format(time.RFC3339))
		fmt.Printf("   Newest file: %s\n", stats.NewestFile.Format(time.RFC3339))
	}
	return nil
}

func runJournalReplay(cmd *cobra.Command, args []string) error {
	dir, _, err := journalSettings()
	if err != nil {
		return err
	}

	since := time.Now().Add(-journalSince)
	encoder := json.NewEncoder(os.Stdout)

	count := 0
	err = journal.Replay(dir, since, func(entry *journal.Entry) error {
		count++
		return encoder.Encode(entry)
	})
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "%d entries since %s\n", count, since.Format(time.RFC3339))
	return nil
}

func runJournalCleanup(cmd *cobra.Command, args []string) error {
	dir, jcfg, err := journalSettings()
	if err != nil {
		return err
	}

	stats, err := journal.CleanupWithStats(dir, jcfg)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if stats.FilesRemoved == 0 {
		fmt.Println("🧹 Nothing to clean up")
		return nil
	}
	fmt.Printf("🧹 Removed %d files (%d bytes) older than %d days\n",
		stats.FilesRemoved, stats.BytesFreed, jcfg.RetentionDays)
	return nil
}
