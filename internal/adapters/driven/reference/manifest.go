package reference

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

// Ensure Manifester implements the interface.
var _ driven.Referencer = (*Manifester)(nil)

// ManifestFileName is the per-directory mapping file written when
// symlinks are unavailable.
const ManifestFileName = "references.txt"

// Manifester records references by appending "name -> target" lines to
// a manifest file in the link's directory.
type Manifester struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewManifester creates a manifest referencer.
func NewManifester() *Manifester {
	return &Manifester{seen: make(map[string]bool)}
}

// Link appends a mapping line to the manifest in linkPath's directory.
func (m *Manifester) Link(target, linkPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	manifest := filepath.Join(filepath.Dir(linkPath), ManifestFileName)
	f, err := os.OpenFile(manifest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s -> %s\n", filepath.Base(linkPath), target); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	m.seen[linkPath] = true
	return nil
}

// Exists reports whether linkPath was already recorded, either in this
// run or in a manifest left by an earlier one.
func (m *Manifester) Exists(linkPath string) bool {
	m.mu.Lock()
	if m.seen[linkPath] {
		m.mu.Unlock()
		return true
	}
	m.mu.Unlock()

	manifest := filepath.Join(filepath.Dir(linkPath), ManifestFileName)
	f, err := os.Open(manifest)
	if err != nil {
		return false
	}
	defer f.Close()

	name := filepath.Base(linkPath)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), name+" -> ") {
			return true
		}
	}
	return false
}
