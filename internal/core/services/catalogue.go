package services

import "github.com/docsmith-labs/docsort-cli/internal/core/domain"

// Catalogue groups scanned files by content hash and designates one
// canonical record per group. It is computed once per run, before any
// stage starts, and is read-only afterwards: downstream stages key by
// content hash, never by path.
type Catalogue struct {
	// canonical maps content hash to its canonical record.
	canonical map[string]domain.FileRecord

	// hashByPath resolves any scanned path to its content hash.
	hashByPath map[string]string

	// members maps content hash to all records sharing it.
	members map[string][]domain.FileRecord

	// canonicals preserves the scan order, filtered to canonical
	// records only.
	canonicals []domain.FileRecord
}

// BuildCatalogue groups the scanned files. Within a duplicate group the
// record with the lexicographically smallest path is canonical, which
// keeps the designation stable across runs regardless of walk order.
func BuildCatalogue(files []domain.FileRecord) *Catalogue {
	c := &Catalogue{
		canonical:  make(map[string]domain.FileRecord),
		hashByPath: make(map[string]string, len(files)),
		members:    make(map[string][]domain.FileRecord),
	}

	for _, f := range files {
		c.hashByPath[f.Path] = f.ContentHash
		c.members[f.ContentHash] = append(c.members[f.ContentHash], f)

		current, seen := c.canonical[f.ContentHash]
		if !seen || f.Path < current.Path {
			c.canonical[f.ContentHash] = f
		}
	}

	for _, f := range files {
		if c.canonical[f.ContentHash].Path == f.Path {
			c.canonicals = append(c.canonicals, f)
		}
	}

	return c
}

// IsCanonical reports whether the given path is its group's canonical
// record.
func (c *Catalogue) IsCanonical(path string) bool {
	hash, ok := c.hashByPath[path]
	if !ok {
		return false
	}
	return c.canonical[hash].Path == path
}

// Canonical returns the canonical record for a content hash.
func (c *Catalogue) Canonical(hash string) (domain.FileRecord, bool) {
	rec, ok := c.canonical[hash]
	return rec, ok
}

// CanonicalOf resolves a path to its group's canonical record.
func (c *Catalogue) CanonicalOf(path string) (domain.FileRecord, bool) {
	hash, ok := c.hashByPath[path]
	if !ok {
		return domain.FileRecord{}, false
	}
	return c.canonical[hash], true
}

// Canonicals returns the canonical records in scan order.
func (c *Catalogue) Canonicals() []domain.FileRecord {
	return c.canonicals
}

// Duplicates returns every non-canonical record as a reference to its
// canonical counterpart.
func (c *Catalogue) Duplicates() []domain.DuplicateRef {
	var dups []domain.DuplicateRef
	for hash, group := range c.members {
		if len(group) < 2 {
			continue
		}
		canonicalPath := c.canonical[hash].Path
		for _, f := range group {
			if f.Path != canonicalPath {
				dups = append(dups, domain.DuplicateRef{Path: f.Path, ContentHash: hash})
			}
		}
	}
	return dups
}

// GroupCount returns the number of content hashes shared by more than one
// file.
func (c *Catalogue) GroupCount() int {
	n := 0
	for _, group := range c.members {
		if len(group) > 1 {
			n++
		}
	}
	return n
}
