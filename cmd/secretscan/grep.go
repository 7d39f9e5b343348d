package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/nself-org/secretscan/pkg/fallback"
)

var grepCmd = &cobra.Command{
	Use:   "grep [path]",
	Short: "Coarse grep-based fallback scan (no classification, no allowlist)",
	Long: `Runs the degraded fallback scanner: a small fixed pattern list handed
to the system grep. Use it on minimal CI images where the native engine
is unavailable. Its counts are not comparable with 'scan' output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGrep,
}

func init() {
	rootCmd.AddCommand(grepCmd)
}

func runGrep(cmd *cobra.Command, args []string) error {
	if err := initLogger(); err != nil {
		return err
	}
	defer logger.Sync()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	matches, err := fallback.Scan(context.Background(), root, logger)
	if err != nil {
		return err
	}

	fallback.Render(matches, os.Stdout)

	// The fallback has no policy nuance: any match blocks.
	if len(matches) > 0 {
		os.Exit(exitBlocked)
	}
	return nil
}
