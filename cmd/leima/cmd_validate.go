package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yairfalse/leima/config"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file",
	Long: `Load the config file and check the required values: the AWS
credential pair, at least one region, and at least one tag. Reports
the first missing item the same way a run would before aborting.`,
	Example: `  leima validate
  leima validate --config ./prod.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		var ncErr *config.NotConfiguredError
		if errors.As(err, &ncErr) {
			fmt.Printf("❌ Not configured: %q is missing\n", ncErr.Key)
		}
		return err
	}

	fmt.Println("✅ Configuration valid")
	fmt.Printf("   Regions: %s\n", strings.Join(cfg.Regions, ", "))
	fmt.Printf("   Base tags: %d\n", len(cfg.Tags))
	if cfg.Notify.WebhookURL != "" {
		fmt.Println("   Notifications: enabled")
	} else {
		fmt.Println("   Notifications: disabled (no webhook URL)")
	}
	return nil
}
