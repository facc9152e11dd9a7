package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string

	rootCmd = &cobra.Command{
		Use:   "leima",
		Short: "AWS resource tag reconciler",
		Long: `Leima - AWS resource tag reconciler

Leima keeps a base tag set applied across your AWS estate. Every run
lists instances, buckets, volumes, load balancers, and functions in
the configured regions and writes the configured tags to each, adding
a Name tag where the resource kind derives one.

Runs are triggered on a schedule, by chat command, or by hand.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "leima.yaml", "Config file path")
	rootCmd.SetVersionTemplate(`Leima {{.Version}} - AWS resource tag reconciler
`)
}
