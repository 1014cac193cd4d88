package domain

import "time"

// Stage identifies a pipeline stage.
type Stage string

// Pipeline stages, in execution order.
const (
	StageScan      Stage = "scan"
	StageConvert   Stage = "convert"
	StageSummarise Stage = "summarise"
	StageClassify  Stage = "classify"
)

// Prerequisite returns the stage that must have succeeded before this
// stage may process an entry. StageScan and StageConvert have none.
func (s Stage) Prerequisite() Stage {
	switch s {
	case StageSummarise:
		return StageConvert
	case StageClassify:
		return StageSummarise
	default:
		return ""
	}
}

// Status is the terminal state of an entry within a stage.
type Status string

// Stage statuses.
const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Skip reasons recorded in the detail column when a stage marks an entry
// skipped.
const (
	SkipReasonDuplicate           = "duplicate"
	SkipReasonInsufficientContent = "insufficient-content"
)

// StageState is the latest recorded state of one entry in one stage.
type StageState struct {
	// Status is the current status.
	Status Status

	// ArtifactPath points at the artifact produced on success, if any.
	ArtifactPath string

	// Detail carries the error message on failure or the skip reason.
	Detail string

	// UpdatedAt is when the state was last written.
	UpdatedAt time.Time
}

// LedgerEntry is the durable pipeline record for one canonical file.
// There is exactly one entry per distinct content hash; duplicates are
// tracked separately as DuplicateRefs and never get their own entry.
type LedgerEntry struct {
	// ContentHash is the primary key.
	ContentHash string

	// OriginalPath is the canonical file's path at scan time.
	OriginalPath string

	// Extension is the lower-cased extension of the canonical file.
	Extension string

	// SizeBytes is the canonical file's size.
	SizeBytes int64

	// Convert, Summarise and Classify hold the latest per-stage state.
	Convert   StageState
	Summarise StageState
	Classify  StageState

	// CreatedAt is when the entry was first registered.
	CreatedAt time.Time
}

// State returns the entry's state for the given stage. The scan stage is
// implicit: an entry only exists once its file was scanned successfully.
func (e *LedgerEntry) State(stage Stage) StageState {
	switch stage {
	case StageConvert:
		return e.Convert
	case StageSummarise:
		return e.Summarise
	case StageClassify:
		return e.Classify
	default:
		return StageState{Status: StatusSuccess}
	}
}

// StageRun records one invocation of a stage over the ledger.
type StageRun struct {
	// ID is a unique run identifier.
	ID string

	// Stage is the stage that ran.
	Stage Stage

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Success, Failed and Skipped are the final counts.
	Success int
	Failed  int
	Skipped int
}
