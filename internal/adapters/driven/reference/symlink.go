// Package reference creates lightweight references from category trees
// back to original files. Symlinks are the default; on filesystems that
// refuse them a manifest referencer records the mapping in a text file
// per category directory instead.
package reference

import (
	"fmt"
	"os"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

// Ensure Symlinker implements the interface.
var _ driven.Referencer = (*Symlinker)(nil)

// Symlinker creates symbolic links pointing at original files.
type Symlinker struct{}

// NewSymlinker creates a symlink referencer.
func NewSymlinker() *Symlinker {
	return &Symlinker{}
}

// Link creates a symlink at linkPath pointing to target.
func (s *Symlinker) Link(target, linkPath string) error {
	if err := os.Symlink(target, linkPath); err != nil {
		return fmt.Errorf("creating symlink: %w", err)
	}
	return nil
}

// Exists reports whether linkPath already exists, without following it.
// A dangling symlink still counts as existing.
func (s *Symlinker) Exists(linkPath string) bool {
	_, err := os.Lstat(linkPath)
	return err == nil
}

// Supported probes whether the filesystem under dir allows symlinks.
func Supported(dir string) bool {
	probe := dir + string(os.PathSeparator) + ".docsort-symlink-probe"
	if err := os.Symlink(dir, probe); err != nil {
		return false
	}
	os.Remove(probe)
	return true
}
