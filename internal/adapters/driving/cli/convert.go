package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
)

var (
	convertConfirm bool
	convertForce   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [paths...]",
	Short: "Convert documents to text and build the ledger",
	Long: `Scans the given paths, registers every file in the workspace ledger
and converts each unique document to text. Duplicate copies are
recorded but converted only once. Files that already converted
successfully are left alone unless --force is given.

Without --confirm the command only previews what it would do.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&convertConfirm, "confirm", false, "actually run the conversion")
	convertCmd.Flags().BoolVar(&convertForce, "force", false, "reconvert files already converted")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline service not configured")
	}

	if !convertConfirm {
		summary, err := pipeline.ScanPreview(cmd.Context(), args,
			driving.RunOptions{Workspace: flagWorkspace})
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if flagJSON {
			return printJSON(cmd, summary)
		}
		renderScanSummary(cmd, summary)
		cmd.Println("\nDry run only. Re-run with --confirm to convert.")
		return nil
	}

	report, err := pipeline.Convert(cmd.Context(), args, driving.RunOptions{
		Workspace:   flagWorkspace,
		Force:       convertForce,
		Concurrency: flagConcurrency,
	})
	if err != nil {
		return fmt.Errorf("convert failed: %w", err)
	}

	if flagJSON {
		return printJSON(cmd, report)
	}
	renderReport(cmd, report)
	return nil
}
