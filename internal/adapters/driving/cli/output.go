package cli

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// shortestElapsed is the rounding granularity for elapsed times.
const shortestElapsed = 10 * time.Millisecond

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// terminalWidth returns the stdout terminal width, or a sane default
// when stdout is not a terminal.
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 100
}

// newTable creates a table writer in the house style.
func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	return t
}

// truncatePath shortens long paths from the left so the file name stays
// visible.
func truncatePath(path string, maxWidth int) string {
	if maxWidth <= 3 || len(path) <= maxWidth {
		return path
	}
	return "..." + path[len(path)-maxWidth+3:]
}

// renderScanSummary prints the preview table and totals.
func renderScanSummary(cmd *cobra.Command, summary *driving.ScanSummary) {
	pathWidth := terminalWidth() - 30
	if pathWidth < 20 {
		pathWidth = 20
	}

	t := newTable(cmd)
	t.AppendHeader(table.Row{"File", "Type", "Size"})
	for _, rec := range summary.Files {
		t.AppendRow(table.Row{
			truncatePath(rec.Path, pathWidth),
			rec.Extension,
			humanize.IBytes(uint64(rec.SizeBytes)),
		})
	}
	t.Render()

	type typeGroup struct {
		count int
		bytes int64
	}
	byType := make(map[string]*typeGroup)
	for _, rec := range summary.Files {
		group, ok := byType[rec.Extension]
		if !ok {
			group = &typeGroup{}
			byType[rec.Extension] = group
		}
		group.count++
		group.bytes += rec.SizeBytes
	}
	extensions := make([]string, 0, len(byType))
	for ext := range byType {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	cmd.Println()
	for _, ext := range extensions {
		group := byType[ext]
		cmd.Printf("  %-6s %3d files  %s\n", ext, group.count, humanize.IBytes(uint64(group.bytes)))
	}

	cmd.Printf("\n%d files, %s total", len(summary.Files), humanize.IBytes(uint64(summary.TotalBytes)))
	if summary.Duplicates > 0 {
		cmd.Printf(" (%d duplicates in %d groups)", summary.Duplicates, summary.DuplicateGroups)
	}
	cmd.Println()

	if len(summary.Warnings) > 0 {
		cmd.Printf("\n%d paths skipped:\n", len(summary.Warnings))
		for _, w := range summary.Warnings {
			cmd.Printf("  %s: %s\n", w.Path, w.Reason)
		}
	}
	cmd.Printf("\nWorkspace: %s\n", summary.Workspace)
}

// renderReport prints a stage pass outcome.
func renderReport(cmd *cobra.Command, report *domain.StageReport) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"Stage", "Total", "Success", "Failed", "Skipped", "Unchanged"})
	t.AppendRow(table.Row{
		string(report.Stage), report.Total,
		report.Success, report.Failed, report.Skipped, report.Unchanged,
	})
	t.Render()

	if len(report.SkipReasons) > 0 {
		reasons := make([]string, 0, len(report.SkipReasons))
		for reason := range report.SkipReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			cmd.Printf("  skipped (%s): %d\n", reason, report.SkipReasons[reason])
		}
	}

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(shortestElapsed)
	cmd.Printf("\nCompleted in %s\n", elapsed)
	if logger.IsVerbose() {
		cmd.Printf("Run ID: %s\n", report.RunID)
	}
	if report.Failed > 0 {
		cmd.Printf("%d failures recorded in the ledger; run 'docsort status' for details.\n", report.Failed)
	}
}

// renderTrees prints the materialisation outcome.
func renderTrees(cmd *cobra.Command, trees *domain.TreeReport) {
	schemes := make([]string, 0, len(trees.Categories))
	for scheme := range trees.Categories {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)

	t := newTable(cmd)
	t.AppendHeader(table.Row{"Scheme", "Categories"})
	for _, scheme := range schemes {
		t.AppendRow(table.Row{scheme, trees.Categories[scheme]})
	}
	t.Render()

	cmd.Printf("\n%d references created", trees.References)
	if trees.Collisions > 0 {
		cmd.Printf(", %d name collisions skipped", trees.Collisions)
	}
	if trees.Unclassified > 0 {
		cmd.Printf(", %d files not yet classified", trees.Unclassified)
	}
	cmd.Println()
}

// renderBrief prints a document's parsed brief. A brief the generator
// wrote outside the template has no parsed fields; the raw text is
// shown instead.
func renderBrief(cmd *cobra.Command, brief *domain.Brief) {
	if brief.Synopsis == "" && len(brief.Bullets) == 0 && len(brief.Keywords) == 0 {
		cmd.Println(strings.TrimSpace(brief.Raw))
		return
	}

	if brief.Synopsis != "" {
		cmd.Println(brief.Synopsis)
	}
	if len(brief.Bullets) > 0 {
		cmd.Println()
		for _, bullet := range brief.Bullets {
			cmd.Printf("  - %s\n", bullet)
		}
	}
	if len(brief.Keywords) > 0 {
		cmd.Printf("\nKeywords: %s\n", strings.Join(brief.Keywords, ", "))
	}
}

// renderStatus prints per-stage ledger counts.
func renderStatus(cmd *cobra.Command, status *driving.LedgerStatus) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"Stage", "Pending", "Success", "Failed", "Skipped"})
	for _, stage := range []domain.Stage{domain.StageConvert, domain.StageSummarise, domain.StageClassify} {
		counts := status.Stages[stage]
		t.AppendRow(table.Row{
			string(stage),
			counts[domain.StatusPending],
			counts[domain.StatusSuccess],
			counts[domain.StatusFailed],
			counts[domain.StatusSkipped],
		})
	}
	t.Render()

	cmd.Printf("\n%d files tracked, %d duplicates\n", status.Entries, status.Duplicates)
	cmd.Printf("Workspace: %s\n", status.Workspace)
}
