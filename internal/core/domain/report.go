package domain

import "time"

// StageReport summarises one stage pass for user-facing output.
// Per-file failures are recorded in the ledger; the report only carries
// the aggregate counts.
type StageReport struct {
	// RunID identifies the run this report belongs to.
	RunID string `json:"run_id"`

	// Stage is the stage that ran.
	Stage Stage `json:"stage"`

	// Total is the number of entries considered.
	Total int `json:"total"`

	// Success, Failed and Skipped count terminal outcomes.
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`

	// Unchanged counts entries left untouched because a prior run
	// already succeeded and reprocessing was not forced.
	Unchanged int `json:"unchanged"`

	// SkipReasons breaks Skipped down by reason.
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`

	// StartedAt and FinishedAt bound the pass.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// AddSkip records a skipped entry with its reason.
func (r *StageReport) AddSkip(reason string) {
	r.Skipped++
	if r.SkipReasons == nil {
		r.SkipReasons = make(map[string]int)
	}
	r.SkipReasons[reason]++
}

// Run converts the report into a durable StageRun record.
func (r *StageReport) Run() StageRun {
	return StageRun{
		ID:         r.RunID,
		Stage:      r.Stage,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Success:    r.Success,
		Failed:     r.Failed,
		Skipped:    r.Skipped,
	}
}

// TreeReport summarises a materialisation pass over the scheme trees.
type TreeReport struct {
	// References is the number of references created across all schemes.
	References int `json:"references"`

	// Collisions counts references skipped because a same-named
	// reference already existed at the destination.
	Collisions int `json:"collisions"`

	// Unclassified counts files whose canonical hash had no
	// classification yet and were left out of the trees.
	Unclassified int `json:"unclassified"`

	// Categories maps scheme name to the number of category
	// directories created.
	Categories map[string]int `json:"categories"`
}
