package ollama

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

// Ensure RateLimitedGenerator implements the interface.
var _ driven.Generator = (*RateLimitedGenerator)(nil)

// RateLimitedGenerator wraps a generator with a token bucket so
// concurrent stage workers cannot flood the model server. Only Generate
// is throttled; health checks pass straight through.
type RateLimitedGenerator struct {
	inner   driven.Generator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator wraps inner with a requests-per-minute cap.
// A non-positive cap disables throttling.
func NewRateLimitedGenerator(inner driven.Generator, requestsPerMinute int) *RateLimitedGenerator {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}

	return &RateLimitedGenerator{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Generate waits for a token, then delegates to the wrapped generator.
func (g *RateLimitedGenerator) Generate(ctx context.Context, req driven.GenerateRequest) (*driven.GenerateResult, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.inner.Generate(ctx, req)
}

// Ping delegates to the wrapped generator.
func (g *RateLimitedGenerator) Ping(ctx context.Context) error {
	return g.inner.Ping(ctx)
}

// HasModel delegates to the wrapped generator.
func (g *RateLimitedGenerator) HasModel(ctx context.Context, model string) (bool, error) {
	return g.inner.HasModel(ctx, model)
}

// ModelName delegates to the wrapped generator.
func (g *RateLimitedGenerator) ModelName() string {
	return g.inner.ModelName()
}

// Close delegates to the wrapped generator.
func (g *RateLimitedGenerator) Close() error {
	return g.inner.Close()
}
