package domain

import "time"

// UnclassifiedLabel is the sentinel category recorded when a generator
// response cannot be parsed. Materialisation always has a defined
// category to file under.
const UnclassifiedLabel = "unclassified"

// Classification is the multi-dimensional category assignment for one
// canonical file. Duplicates inherit the canonical file's classification
// without re-invoking the generator.
type Classification struct {
	// ContentHash keys the classification to its canonical file.
	ContentHash string

	// Topic, Usage and Client are short free-text category labels,
	// one per classification dimension.
	Topic  string
	Usage  string
	Client string

	// SuggestedName is a human-readable filename derived from content,
	// without extension. Empty when the generator offered none.
	SuggestedName string

	// ClassifiedAt is when the classification was recorded.
	ClassifiedAt time.Time
}

// Unclassified returns the sentinel classification for a content hash.
func Unclassified(contentHash string) Classification {
	return Classification{
		ContentHash: contentHash,
		Topic:       UnclassifiedLabel,
		Usage:       UnclassifiedLabel,
		Client:      UnclassifiedLabel,
	}
}

// IsUnclassified reports whether the classification is the sentinel.
func (c Classification) IsUnclassified() bool {
	return c.Topic == UnclassifiedLabel &&
		c.Usage == UnclassifiedLabel &&
		c.Client == UnclassifiedLabel
}

// Scheme identifies one classification dimension used to build a
// materialised view.
type Scheme struct {
	// Name is the scheme directory name, e.g. "by-topic".
	Name string

	// Category extracts this scheme's label from a classification.
	Category func(Classification) string
}

// Schemes returns the three materialised views in build order.
func Schemes() []Scheme {
	return []Scheme{
		{Name: "by-topic", Category: func(c Classification) string { return c.Topic }},
		{Name: "by-usage", Category: func(c Classification) string { return c.Usage }},
		{Name: "by-client", Category: func(c Classification) string { return c.Client }},
	}
}
