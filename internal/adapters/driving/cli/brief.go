package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
)

var briefCmd = &cobra.Command{
	Use:   "brief <file>",
	Short: "Show the stored brief for a document",
	Long: `Looks the given file up in the workspace ledger and prints the brief
written for it by the summarise stage: synopsis, key points and
keywords. A duplicate copy shows the brief of the canonical file
sharing its content.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrief,
}

func init() {
	rootCmd.AddCommand(briefCmd)
}

func runBrief(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline service not configured")
	}

	brief, err := pipeline.Brief(cmd.Context(), args[0],
		driving.RunOptions{Workspace: flagWorkspace})
	if err != nil {
		return fmt.Errorf("reading brief: %w", err)
	}

	if flagJSON {
		return printJSON(cmd, brief)
	}
	renderBrief(cmd, brief)
	return nil
}
