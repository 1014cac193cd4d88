// Package fallback pairs a preferred converter with a backup, probing
// the preferred one at first use. Deferring the probe keeps startup
// free of subprocess checks and lets the selection notice respect the
// verbosity flags, which are only parsed after construction.
package fallback

import (
	"context"
	"sync"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Converter delegates to the primary converter when it is available
// and to the secondary otherwise. The choice is made once, at the
// first call that needs it.
type Converter struct {
	primary   driven.Converter
	secondary driven.Converter

	once   sync.Once
	chosen driven.Converter
}

// New creates a fallback converter preferring primary over secondary.
func New(primary, secondary driven.Converter) *Converter {
	return &Converter{primary: primary, secondary: secondary}
}

func (c *Converter) pick() driven.Converter {
	c.once.Do(func() {
		if err := c.primary.Available(); err != nil {
			logger.Debug("%s unavailable, using %s: %v",
				c.primary.Name(), c.secondary.Name(), err)
			c.chosen = c.secondary
			return
		}
		c.chosen = c.primary
	})
	return c.chosen
}

// Name identifies the selected converter for logs and reports.
func (c *Converter) Name() string {
	return c.pick().Name()
}

// Available reports whether the selected converter can run.
func (c *Converter) Available() error {
	return c.pick().Available()
}

// Convert delegates to the selected converter.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	return c.pick().Convert(ctx, path)
}
