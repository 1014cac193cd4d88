// Package cli provides the command-line interface for docsort.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// Services are injected at startup via Initialize.
var (
	pipeline driving.PipelineService
	version  = "dev"
)

// Persistent flags shared by all commands.
var (
	flagWorkspace   string
	flagJSON        bool
	flagVerbose     bool
	flagConcurrency int
)

var rootCmd = &cobra.Command{
	Use:   "docsort",
	Short: "Sort office documents into browsable category trees",
	Long: `docsort runs a staged pipeline over folders of office documents:
scan finds and deduplicates files, convert extracts their text,
summarise writes a brief for each document, and classify assigns
category labels and materialises by-topic, by-usage and by-client
trees of references back to the originals.

Each stage records its outcome in a ledger inside the workspace
directory, so interrupted runs resume where they left off.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
		logger.SetOutput(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagWorkspace, "workspace", "",
		"workspace directory (default: .docsort next to the first path)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false,
		"emit machine-readable JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose logging")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0,
		"override the configured per-stage concurrency")
}

// Initialize wires the pipeline service and version into the CLI.
// Must be called before Execute.
func Initialize(svc driving.PipelineService, ver string) {
	pipeline = svc
	if ver != "" {
		version = ver
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
