package driven

import (
	"context"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
)

// LedgerStore is the durable stage ledger: one row per canonical file,
// with the latest status per stage. It is the source of truth for
// idempotent, resumable stage runs.
// Backed by SQLite.
type LedgerStore interface {
	// RegisterEntry creates the ledger row for a canonical file, or
	// refreshes its path and size if the row already exists. Existing
	// stage statuses are never clobbered, which is what makes re-runs
	// resumable.
	RegisterEntry(ctx context.Context, rec domain.FileRecord) error

	// RegisterDuplicate records a non-canonical path as a reference to
	// the canonical entry with the same hash.
	RegisterDuplicate(ctx context.Context, ref domain.DuplicateRef) error

	// GetEntry retrieves one entry by content hash.
	GetEntry(ctx context.Context, contentHash string) (*domain.LedgerEntry, error)

	// GetStatus returns the latest state of one entry in one stage.
	GetStatus(ctx context.Context, contentHash string, stage domain.Stage) (*domain.StageState, error)

	// SetStatus records the outcome of a stage for one entry. Detail
	// carries the error message on failure or the skip reason.
	SetStatus(ctx context.Context, contentHash string, stage domain.Stage,
		status domain.Status, artifactPath, detail string) error

	// ListPending returns entries whose prerequisite stage succeeded
	// but which the given stage has not successfully processed yet.
	ListPending(ctx context.Context, stage domain.Stage) ([]domain.LedgerEntry, error)

	// ListByStatus returns entries with the given status in a stage.
	ListByStatus(ctx context.Context, stage domain.Stage, status domain.Status) ([]domain.LedgerEntry, error)

	// ListEntries returns all canonical entries.
	ListEntries(ctx context.Context) ([]domain.LedgerEntry, error)

	// ListDuplicates returns all recorded duplicate references.
	ListDuplicates(ctx context.Context) ([]domain.DuplicateRef, error)

	// Counts returns the number of entries per status for a stage.
	Counts(ctx context.Context, stage domain.Stage) (map[domain.Status]int, error)

	// SaveClassification stores or replaces a classification.
	SaveClassification(ctx context.Context, c domain.Classification) error

	// GetClassification retrieves a classification by content hash.
	GetClassification(ctx context.Context, contentHash string) (*domain.Classification, error)

	// ListClassifications returns all stored classifications.
	ListClassifications(ctx context.Context) ([]domain.Classification, error)

	// RecordRun persists a stage run for auditing.
	RecordRun(ctx context.Context, run domain.StageRun) error

	// ExportCSV writes the flat tabular index (one row per canonical
	// file, per-stage status columns) to the given path, replacing any
	// previous export.
	ExportCSV(ctx context.Context, path string) error

	// Close closes the underlying database.
	Close() error
}
