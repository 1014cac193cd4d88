package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// Materialiser builds the per-scheme category trees: for every
// classification dimension, a directory of category folders holding one
// reference per original file. Source bytes are never moved or copied.
type Materialiser struct {
	refs driven.Referencer
}

// NewMaterialiser creates a materialiser using the given reference
// capability.
func NewMaterialiser(refs driven.Referencer) *Materialiser {
	return &Materialiser{refs: refs}
}

// Build rebuilds all scheme trees under the workspace. Any prior trees
// are removed first, so the result never contains stale references from a
// previous classification run. Duplicates inherit their canonical file's
// classification but are referenced under their own original path.
func (m *Materialiser) Build(
	ctx context.Context,
	workspace string,
	entries []domain.LedgerEntry,
	duplicates []domain.DuplicateRef,
	classifications []domain.Classification,
	rename bool,
) (*domain.TreeReport, error) {
	logger.Stage("Materialise")

	byHash := make(map[string]domain.Classification, len(classifications))
	for _, c := range classifications {
		byHash[c.ContentHash] = c
	}

	// Every original path participates, duplicates included; only the
	// expensive processing was deduplicated.
	type target struct {
		path string
		hash string
	}
	targets := make([]target, 0, len(entries)+len(duplicates))
	for _, e := range entries {
		targets = append(targets, target{path: e.OriginalPath, hash: e.ContentHash})
	}
	for _, d := range duplicates {
		targets = append(targets, target{path: d.Path, hash: d.ContentHash})
	}

	report := &domain.TreeReport{Categories: make(map[string]int)}

	for _, scheme := range domain.Schemes() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		schemeDir := filepath.Join(workspace, scheme.Name)
		if err := os.RemoveAll(schemeDir); err != nil {
			return nil, fmt.Errorf("clearing %s: %w", schemeDir, err)
		}
		if err := os.MkdirAll(schemeDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", schemeDir, err)
		}

		seenCategories := make(map[string]struct{})
		for _, t := range targets {
			classification, ok := byHash[t.hash]
			if !ok {
				report.Unclassified++
				continue
			}

			category := SanitiseLabel(scheme.Category(classification))
			categoryDir := filepath.Join(schemeDir, category)
			if _, seen := seenCategories[category]; !seen {
				if err := os.MkdirAll(categoryDir, 0o755); err != nil {
					return nil, fmt.Errorf("creating %s: %w", categoryDir, err)
				}
				seenCategories[category] = struct{}{}
			}

			name := referenceName(t.path, classification, rename)
			linkPath := filepath.Join(categoryDir, name)
			if m.refs.Exists(linkPath) {
				report.Collisions++
				logger.Debug("materialise: %s already present under %s/%s", name, scheme.Name, category)
				continue
			}
			if err := m.refs.Link(t.path, linkPath); err != nil {
				return nil, fmt.Errorf("referencing %s: %w", t.path, err)
			}
			report.References++
		}
		report.Categories[scheme.Name] = len(seenCategories)
	}

	// Unclassified counts accumulate once per scheme; normalise to the
	// number of distinct files.
	if n := len(domain.Schemes()); n > 0 {
		report.Unclassified /= n
	}

	return report, nil
}

// referenceName picks the reference's file name: the suggested display
// name with the original extension when rename mode is on and a
// suggestion exists, the original file name otherwise.
func referenceName(path string, c domain.Classification, rename bool) string {
	if rename && c.SuggestedName != "" {
		return SanitiseLabel(c.SuggestedName) + filepath.Ext(path)
	}
	return filepath.Base(path)
}

// SanitiseLabel makes a generator-supplied label safe to use as a file or
// directory name: path separators and control characters are replaced,
// whitespace collapsed, length bounded. Empty input degrades to the
// unclassified sentinel.
func SanitiseLabel(label string) string {
	label = strings.TrimSpace(label)

	var b strings.Builder
	lastSpace := false
	for _, r := range label {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == 0:
			r = '-'
		case r < 0x20:
			continue
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}

	out := strings.Trim(b.String(), " .")
	if len(out) > 80 {
		out = strings.TrimSpace(out[:80])
	}
	if out == "" {
		return domain.UnclassifiedLabel
	}
	return out
}
