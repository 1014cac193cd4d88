package driving

import (
	"context"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
)

// PipelineService is the staged document pipeline as exposed to the CLI.
// Each method runs one stage (or the read-only preview) end to end.
type PipelineService interface {
	// ScanPreview scans the roots and reports what a conversion pass
	// would process, without touching the filesystem. The reported
	// workspace honours the same override a confirmed run would use.
	ScanPreview(ctx context.Context, roots []string, opts RunOptions) (*ScanSummary, error)

	// Convert scans the roots, registers the ledger and runs the
	// conversion stage.
	Convert(ctx context.Context, roots []string, opts RunOptions) (*domain.StageReport, error)

	// Summarise runs the summarisation stage over the ledger.
	Summarise(ctx context.Context, opts RunOptions) (*domain.StageReport, error)

	// ClassifyAndIndex runs the classification stage and rebuilds the
	// materialised scheme trees.
	ClassifyAndIndex(ctx context.Context, opts RunOptions) (*ClassifyResult, error)

	// Brief returns the parsed brief stored for one scanned file,
	// identified by its original path. Duplicate paths resolve to the
	// canonical file's brief.
	Brief(ctx context.Context, path string, opts RunOptions) (*domain.Brief, error)

	// Status reports per-stage ledger counts.
	Status(ctx context.Context, opts RunOptions) (*LedgerStatus, error)
}

// RunOptions carries per-invocation settings from the CLI.
type RunOptions struct {
	// Workspace overrides the derived workspace directory.
	Workspace string

	// Model overrides the configured generator model.
	Model string

	// Concurrency overrides the configured per-stage fan-out when
	// positive.
	Concurrency int

	// Force reprocesses entries already marked success.
	Force bool

	// Rename names references after the suggested display name.
	Rename bool
}

// ScanSummary is the preview output.
type ScanSummary struct {
	// Roots are the scanned paths.
	Roots []string `json:"roots"`

	// Workspace is where pipeline state would be written.
	Workspace string `json:"workspace"`

	// Files are the scanned records, sorted by descending size.
	Files []domain.FileRecord `json:"files"`

	// Warnings lists skipped paths.
	Warnings []domain.ScanWarning `json:"warnings,omitempty"`

	// TotalBytes sums all file sizes.
	TotalBytes int64 `json:"total_bytes"`

	// DuplicateGroups is the number of content hashes shared by more
	// than one file; Duplicates is the number of non-canonical files.
	DuplicateGroups int `json:"duplicate_groups"`
	Duplicates      int `json:"duplicates"`
}

// ClassifyResult combines the classification stage report with the tree
// materialisation report.
type ClassifyResult struct {
	Report *domain.StageReport `json:"report"`
	Trees  *domain.TreeReport  `json:"trees"`
}

// LedgerStatus reports the ledger's per-stage counts.
type LedgerStatus struct {
	// Workspace is the ledger location.
	Workspace string `json:"workspace"`

	// Entries is the number of canonical files tracked.
	Entries int `json:"entries"`

	// Duplicates is the number of duplicate references tracked.
	Duplicates int `json:"duplicates"`

	// Stages maps stage name to status counts.
	Stages map[domain.Stage]map[domain.Status]int `json:"stages"`
}
