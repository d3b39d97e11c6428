package taskcore

import "context"

// Usage reports token consumption for a backend call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GenerateResult is the outcome of a text-generation call.
type GenerateResult struct {
	// Text is the generated completion.
	Text string `json:"text"`

	// Model is the backend model identifier that produced the text.
	Model string `json:"model"`

	// Usage contains token usage when the backend reports it.
	Usage Usage `json:"usage"`
}

// EmbedResult is the outcome of an embedding call.
type EmbedResult struct {
	// Vectors contains one embedding per input text, in input order.
	Vectors [][]float64 `json:"vectors"`

	// Model is the backend model identifier that produced the vectors.
	Model string `json:"model"`

	// Usage contains token usage when the backend reports it.
	Usage Usage `json:"usage"`
}

// Adapter is the fixed capability surface implemented per backend.
//
// All methods may block on network I/O. Implementations enforce the
// provider's configured timeout and convert timeouts and transport
// failures into a [ProviderUnavailableError] rather than returning a
// silent empty result. Adapters hold connection configuration only; they
// mutate no local state across calls.
type Adapter interface {
	// Generate produces text from a prompt using the given backend model.
	Generate(ctx context.Context, model, prompt string, params Params) (*GenerateResult, error)

	// Embed computes embedding vectors for the texts, one per input.
	// Returns an error if texts is empty.
	Embed(ctx context.Context, model string, texts []string) (*EmbedResult, error)

	// HealthCheck reports whether the backend is reachable.
	HealthCheck(ctx context.Context) bool
}
