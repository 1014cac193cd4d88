package driven

import "context"

// Generator is the text-generation service behind the summarisation and
// classification stages.
//
// Implementations may include:
//   - Ollama (local models)
//   - LM Studio (local inference server)
type Generator interface {
	// Generate produces a completion for a system + user prompt pair.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// Ping validates the service is reachable without running
	// inference. It is called before a batch starts; an error aborts
	// the whole run.
	Ping(ctx context.Context) error

	// HasModel reports whether the named model is available on the
	// service.
	HasModel(ctx context.Context, model string) (bool, error)

	// ModelName returns the default model identifier in use.
	ModelName() string

	// Close releases resources.
	Close() error
}

// GenerateRequest configures a single generation call.
type GenerateRequest struct {
	// System is the system role instruction.
	System string

	// Prompt is the user prompt.
	Prompt string

	// Model overrides the service's default model when non-empty.
	Model string

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// MaxTokens caps the generated output length.
	MaxTokens int
}

// GenerateResult carries the generator's output channels. Some models
// route their final text to a secondary "reasoning" channel and leave the
// primary channel empty; the result keeps both so the selection rule is
// explicit rather than an ad hoc field-presence check.
type GenerateResult struct {
	// Primary is the model's main output channel.
	Primary string

	// Secondary is the auxiliary channel, when the service exposes one.
	Secondary string
}

// Text returns the usable output: the primary channel, or the secondary
// channel when the primary is empty. The fallback is a documented
// heuristic for models that only populate the secondary channel, not a
// protocol guarantee.
func (r *GenerateResult) Text() string {
	if r.Primary != "" {
		return r.Primary
	}
	return r.Secondary
}
