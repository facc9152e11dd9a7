package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/leima/internal/daemon"
	"github.com/yairfalse/leima/telemetry"
)

var (
	daemonInterval  time.Duration
	daemonListen    string
	daemonImmediate bool
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the reconciler continuously",
	Long: `Run Leima in daemon mode: a reconciliation pass on every interval
plus a webhook endpoint for chat-triggered passes.

Endpoints:
- POST /v1/command  chat webhook; "update tags" text triggers a run
- /metrics          Prometheus metrics
- /healthz          liveness
- /-/ready          readiness

Only one run is in flight at a time; a trigger arriving during a run
is rejected. Shuts down gracefully on SIGINT/SIGTERM.`,
	Example: `  leima daemon                         # Hourly runs, listen on :2112
  leima daemon --interval 30m          # Custom interval
  leima daemon --immediate             # Run once at startup too
  leima daemon --listen 127.0.0.1:9000 # Custom listen address`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().DurationVar(&daemonInterval, "interval", 0, "Run interval (overrides config)")
	daemonCmd.Flags().StringVar(&daemonListen, "listen", "", "Listen address (overrides config)")
	daemonCmd.Flags().BoolVar(&daemonImmediate, "immediate", false, "Run a pass at startup")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    a.cfg.OTEL.ServiceName,
		ServiceVersion: version,
		OTELEndpoint:   a.cfg.OTEL.Endpoint,
		Insecure:       a.cfg.OTEL.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	dcfg := daemon.Config{
		Interval:  a.cfg.Daemon.Interval,
		Listen:    a.cfg.Daemon.Listen,
		Immediate: a.cfg.Daemon.Immediate || daemonImmediate,
	}
	if daemonInterval > 0 {
		dcfg.Interval = daemonInterval
	}
	if daemonListen != "" {
		dcfg.Listen = daemonListen
	}

	fmt.Printf("🚀 Starting Leima daemon\n")
	fmt.Printf("   Interval: %s\n", dcfg.Interval)
	fmt.Printf("   Listen: %s\n", dcfg.Listen)
	fmt.Printf("   Regions: %v\n\n", a.cfg.Regions)

	d := daemon.New(dcfg, a, a.logger)
	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	fmt.Println("\n👋 Daemon stopped")
	return nil
}
