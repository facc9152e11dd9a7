package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/leima/events"
	"github.com/yairfalse/leima/reconcile"
)

var runNotify bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one tag reconciliation pass",
	Long: `Run a single reconciliation pass across the configured regions.

Each pass lists instances, buckets, volumes, load balancers, and
functions, derives the tag set for each resource from the configured
base tags, and writes it. Failures on individual resources are
collected and reported; they do not abort the pass.`,
	Example: `  leima run                       # One pass, no chat notifications
  leima run --notify              # One pass with chat notifications
  leima run --config ./prod.yaml  # Explicit config file`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runNotify, "notify", false, "Send chat notifications as if triggered by command")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	trigger := events.TriggerManual
	if runNotify {
		trigger = events.TriggerCommand
	}

	fmt.Println("🔄 Starting tag reconciliation...")
	result, err := a.Run(ctx, trigger)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	displayRunResult(result)

	if result.Failed() > 0 {
		os.Exit(1)
	}
	return nil
}

func displayRunResult(result *reconcile.RunResult) {
	fmt.Println("\n✅ Reconciliation complete")
	fmt.Printf("  🌍 Regions: %s\n", strings.Join(result.Regions, ", "))
	fmt.Printf("  📊 Listed: %d\n", result.Listed())
	fmt.Printf("  🏷️  Tagged: %d\n", result.Tagged())
	fmt.Printf("  ⏭️  Skipped: %d\n", result.Skipped())
	fmt.Printf("  ❌ Failed: %d\n", result.Failed())
	fmt.Printf("  ⏱️  Duration: %s\n", result.Duration().Round(time.Millisecond))

	fmt.Println()
	for _, phase := range result.Phases {
		fmt.Printf("  %-15s listed %4d  tagged %4d  skipped %4d  failed %4d\n",
			phase.Kind.Label(), phase.Listed, phase.Tagged, phase.Skipped, phase.Failed)
	}

	if errs := result.Errors(); len(errs) > 0 {
		fmt.Printf("\n⚠️  Errors:\n")
		for _, e := range errs {
			fmt.Printf("  - %s\n", e.Error())
		}
	}
}
