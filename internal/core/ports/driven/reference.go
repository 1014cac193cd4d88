package driven

// Referencer creates logical references to original files inside the
// materialised scheme trees. The default implementation uses symbolic
// links; environments without that primitive can substitute hard links or
// a manifest file without changing the materialiser's algorithm.
type Referencer interface {
	// Link creates a reference named linkPath pointing at target.
	// Implementations must not overwrite an existing reference.
	Link(target, linkPath string) error

	// Exists reports whether a reference already occupies linkPath.
	Exists(linkPath string) bool
}
