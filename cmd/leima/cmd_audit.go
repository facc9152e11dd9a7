package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yairfalse/leima/config"
	"github.com/yairfalse/leima/providers/aws"
	"github.com/yairfalse/leima/types"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report resources missing base tags",
	Long: `Sweep the configured regions through the Resource Groups Tagging
API and report every managed resource whose current tags are missing
one or more of the configured base tag keys.

Read-only; nothing is written.`,
	Example: `  leima audit
  leima audit --config ./prod.yaml`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	requiredKeys := cfg.BaseTags().SortedKeys()
	provider := aws.NewProvider(cfg.AccessKeyID, cfg.SecretAccessKey)

	fmt.Printf("🔍 Auditing tag coverage for keys: %s\n\n", strings.Join(requiredKeys, ", "))

	total := 0
	for _, region := range cfg.Regions {
		untagged, err := provider.FindUntagged(ctx, region, requiredKeys)
		if err != nil {
			return fmt.Errorf("audit failed in %s: %w", region, err)
		}

		if len(untagged) == 0 {
			fmt.Printf("✅ %s: full coverage\n", region)
			continue
		}

		fmt.Printf("⚠️  %s: %d resources missing tags\n", region, len(untagged))
		for _, r := range untagged {
			fmt.Printf("   %s\n", r.ARN)
			fmt.Printf("      missing: %s\n", strings.Join(r.MissingKeys, ", "))
			if len(r.Tags) > 0 {
				fmt.Printf("      present: %s\n", formatTags(r.Tags))
			}
		}
		total += len(untagged)
	}

	fmt.Printf("\n%d resources need tagging\n", total)
	if total > 0 {
		os.Exit(1)
	}
	return nil
}

func formatTags(tags types.Tags) string {
	parts := make([]string, 0, len(tags))
	for _, key := range tags.SortedKeys() {
		parts = append(parts, fmt.Sprintf("%s=%s", key, tags[key]))
	}
	return strings.Join(parts, ", ")
}
