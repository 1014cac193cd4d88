package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
)

var (
	summariseConfirm bool
	summariseForce   bool
	summariseModel   string
)

var summariseCmd = &cobra.Command{
	Use:   "summarise",
	Short: "Write a brief for every converted document",
	Long: `Sends each converted document's text to the generator and stores the
resulting brief (synopsis, key points, keywords) in the workspace.
Only entries with a successful conversion and no brief yet are
processed; use --force to regenerate existing briefs.

Without --confirm the command only reports how much work is pending.`,
	Args: cobra.NoArgs,
	RunE: runSummarise,
}

func init() {
	summariseCmd.Flags().BoolVar(&summariseConfirm, "confirm", false, "actually run the summarisation")
	summariseCmd.Flags().BoolVar(&summariseForce, "force", false, "regenerate existing briefs")
	summariseCmd.Flags().StringVar(&summariseModel, "model", "", "override the configured generator model")
	rootCmd.AddCommand(summariseCmd)
}

func runSummarise(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline service not configured")
	}

	opts := driving.RunOptions{
		Workspace:   flagWorkspace,
		Model:       summariseModel,
		Force:       summariseForce,
		Concurrency: flagConcurrency,
	}

	if !summariseConfirm {
		return printPendingHint(cmd, opts, domain.StageSummarise, "summarise")
	}

	report, err := pipeline.Summarise(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("summarise failed: %w", err)
	}

	if flagJSON {
		return printJSON(cmd, report)
	}
	renderReport(cmd, report)
	return nil
}

// printPendingHint shows how much work a stage has queued and how to
// run it for real.
func printPendingHint(cmd *cobra.Command, opts driving.RunOptions, stage domain.Stage, name string) error {
	status, err := pipeline.Status(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	if flagJSON {
		return printJSON(cmd, status)
	}

	counts := status.Stages[stage]
	done := counts[domain.StatusSuccess]
	pending := status.Entries - done
	cmd.Printf("%d of %d files still to %s.\n", pending, status.Entries, name)
	cmd.Printf("Dry run only. Re-run with --confirm to %s.\n", name)
	return nil
}
