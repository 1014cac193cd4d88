package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-stage progress from the workspace ledger",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline service not configured")
	}

	status, err := pipeline.Status(cmd.Context(), driving.RunOptions{Workspace: flagWorkspace})
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	if flagJSON {
		return printJSON(cmd, status)
	}
	renderStatus(cmd, status)
	return nil
}
