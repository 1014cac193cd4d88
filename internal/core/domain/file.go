package domain

import "path/filepath"

// FileRecord describes a single scanned file. Records are created during
// the scan and are immutable afterwards; identity is the content hash.
type FileRecord struct {
	// Path is the absolute path of the original file.
	Path string

	// Extension is the lower-cased file extension including the dot.
	Extension string

	// SizeBytes is the file size at scan time.
	SizeBytes int64

	// ContentHash is the hex-encoded SHA-256 of the file content.
	// Two records with equal hashes are duplicates of each other.
	ContentHash string
}

// Name returns the base name of the original file.
func (f FileRecord) Name() string {
	return filepath.Base(f.Path)
}

// DuplicateRef marks a non-canonical file as a reference to the canonical
// record with the same content hash. Duplicates are never processed by the
// pipeline stages; they inherit the canonical file's results.
type DuplicateRef struct {
	// Path is the absolute path of the duplicate file.
	Path string

	// ContentHash is the hash shared with the canonical record.
	ContentHash string
}

// ScanWarning reports a path that could not be scanned. Warnings never
// fail a scan; the affected subtree is skipped.
type ScanWarning struct {
	// Path is the file or directory that was skipped.
	Path string

	// Reason is a human-readable explanation.
	Reason string
}

// ScanResult is the output of a scan over one or more roots.
type ScanResult struct {
	// Roots are the paths that were scanned, after absolutisation.
	Roots []string

	// Files are the scanned records, sorted by descending size
	// (path ascending as tiebreak).
	Files []FileRecord

	// Warnings lists skipped paths.
	Warnings []ScanWarning
}

// TotalBytes sums the sizes of all scanned files.
func (r *ScanResult) TotalBytes() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.SizeBytes
	}
	return total
}
