package driven

// ArtifactStore persists per-hash stage artifacts: the converted text and
// the generated brief. Artifacts are keyed by content hash and overwritten
// on regeneration, never appended.
type ArtifactStore interface {
	// WriteConverted persists converted text and returns the artifact
	// path recorded in the ledger.
	WriteConverted(contentHash, text string) (string, error)

	// ReadConverted returns the converted text for a hash.
	ReadConverted(contentHash string) (string, error)

	// WriteBrief persists a brief and returns the artifact path.
	WriteBrief(contentHash, text string) (string, error)

	// ReadBrief returns the brief for a hash.
	ReadBrief(contentHash string) (string, error)

	// Workspace returns the root directory artifacts live under.
	Workspace() string
}
