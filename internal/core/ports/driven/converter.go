package driven

import "context"

// Converter turns an office document into plain text. It is an external
// collaborator: the pipeline treats it as an opaque function that either
// returns the full normalised text or fails for that one file.
type Converter interface {
	// Convert reads the file at path and returns its text content.
	Convert(ctx context.Context, path string) (string, error)

	// Available reports whether the converter can run at all. It is
	// checked once before a conversion pass; an error aborts the pass
	// before any file is touched.
	Available() error

	// Name identifies the converter for logs and reports.
	Name() string
}
