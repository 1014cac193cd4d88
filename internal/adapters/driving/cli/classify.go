package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
)

var (
	classifyConfirm bool
	classifyForce   bool
	classifyRename  bool
	classifyModel   string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify documents and materialise the category trees",
	Long: `Asks the generator to label each summarised document with a topic,
usage and client, then rebuilds the by-topic, by-usage and by-client
trees in the workspace with references back to the original files.
Duplicate copies appear in the trees under their own names, sharing
the canonical file's labels.

With --rename, references are named after the model's suggested
display name instead of the original file name.

Without --confirm the command only reports how much work is pending.`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyConfirm, "confirm", false, "actually run the classification")
	classifyCmd.Flags().BoolVar(&classifyForce, "force", false, "reclassify files already classified")
	classifyCmd.Flags().BoolVar(&classifyRename, "rename", false, "name references after the suggested display name")
	classifyCmd.Flags().StringVar(&classifyModel, "model", "", "override the configured generator model")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline service not configured")
	}

	opts := driving.RunOptions{
		Workspace:   flagWorkspace,
		Model:       classifyModel,
		Force:       classifyForce,
		Rename:      classifyRename,
		Concurrency: flagConcurrency,
	}

	if !classifyConfirm {
		return printPendingHint(cmd, opts, domain.StageClassify, "classify")
	}

	result, err := pipeline.ClassifyAndIndex(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("classify failed: %w", err)
	}

	if flagJSON {
		return printJSON(cmd, result)
	}
	renderReport(cmd, result.Report)
	cmd.Println()
	renderTrees(cmd, result.Trees)
	return nil
}
