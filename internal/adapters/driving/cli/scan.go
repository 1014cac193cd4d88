package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Preview which documents a conversion pass would process",
	Long: `Walks the given paths, filters by the extension allow-list,
hashes each file and reports what a conversion pass would do.
Nothing is written: no workspace is created and no ledger touched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline service not configured")
	}

	summary, err := pipeline.ScanPreview(cmd.Context(), args,
		driving.RunOptions{Workspace: flagWorkspace})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if flagJSON {
		return printJSON(cmd, summary)
	}

	if len(summary.Files) == 0 {
		cmd.Println("No matching documents found.")
		return nil
	}
	renderScanSummary(cmd, summary)
	return nil
}
