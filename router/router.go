// Package router resolves a logical agent identity to a configured
// model and invokes the owning provider's adapter, with a single
// fallback hop when the primary call fails.
//
// Only one fallback is attempted; there is no chain beyond depth 1, so
// worst-case latency is two calls. When both attempts fail the primary's
// error is surfaced as the authoritative cause, annotated with the
// fallback outcome.
package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sitewise/taskcore"
	"github.com/sitewise/taskcore/registry"
)

// Router routes model operations for logical agents.
type Router struct {
	registry *registry.Registry
	log      *slog.Logger
}

// New creates a router over the registry.
func New(reg *registry.Registry, opts ...Option) *Router {
	r := &Router{registry: reg, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures the router.
type Option func(*Router)

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) { r.log = log }
}

// Attempt records one model invocation within a routing call.
type Attempt struct {
	ModelID    string
	ProviderID string
	Fallback   bool
	Err        error // nil on success
}

// GenerateOutcome is the result of a routed generate call. When the
// fallback served the request, UsedFallback is set and PrimaryErr
// preserves the recorded primary failure.
type GenerateOutcome struct {
	*taskcore.GenerateResult

	ModelID      string
	ProviderID   string
	UsedFallback bool
	PrimaryErr   error
	Attempts     []Attempt
}

// EmbedOutcome is the result of a routed embed call.
type EmbedOutcome struct {
	*taskcore.EmbedResult

	ModelID      string
	ProviderID   string
	UsedFallback bool
	PrimaryErr   error
	Attempts     []Attempt
}

// Generate routes a text-generation request for the agent. Override
// parameters win key-by-key over the resolved model's defaults.
func (r *Router) Generate(ctx context.Context, agentID, prompt string, overrides taskcore.Params) (*GenerateOutcome, error) {
	assignment, err := r.registry.ResolveAssignment(agentID, taskcore.CapabilityGenerate)
	if err != nil {
		return nil, err
	}

	run := func(modelID string) (*taskcore.GenerateResult, string, string, error) {
		model, provider, adapter, err := r.resolve(modelID, taskcore.CapabilityGenerate)
		if err != nil {
			return nil, modelID, "", err
		}
		res, err := adapter.Generate(ctx, model.BackendID, prompt, model.Defaults.Merge(overrides))
		return res, model.ID, provider.ID, err
	}

	res, attempts, primaryErr, err := route(r, "generate", agentID, assignment, run)
	if err != nil {
		return nil, err
	}
	last := attempts[len(attempts)-1]
	return &GenerateOutcome{
		GenerateResult: res,
		ModelID:        last.ModelID,
		ProviderID:     last.ProviderID,
		UsedFallback:   last.Fallback,
		PrimaryErr:     primaryErr,
		Attempts:       attempts,
	}, nil
}

// Embed routes an embedding request for the agent. The result carries
// one vector per input text, in input order.
func (r *Router) Embed(ctx context.Context, agentID string, texts []string) (*EmbedOutcome, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: at least one text is required for embedding", taskcore.ErrEmptyInput)
	}

	assignment, err := r.registry.ResolveAssignment(agentID, taskcore.CapabilityEmbed)
	if err != nil {
		return nil, err
	}

	run := func(modelID string) (*taskcore.EmbedResult, string, string, error) {
		model, provider, adapter, err := r.resolve(modelID, taskcore.CapabilityEmbed)
		if err != nil {
			return nil, modelID, "", err
		}
		res, err := adapter.Embed(ctx, model.BackendID, texts)
		return res, model.ID, provider.ID, err
	}

	res, attempts, primaryErr, err := route(r, "embed", agentID, assignment, run)
	if err != nil {
		return nil, err
	}
	last := attempts[len(attempts)-1]
	return &EmbedOutcome{
		EmbedResult:  res,
		ModelID:      last.ModelID,
		ProviderID:   last.ProviderID,
		UsedFallback: last.Fallback,
		PrimaryErr:   primaryErr,
		Attempts:     attempts,
	}, nil
}

// resolve loads the model, its provider and adapter, and checks the
// pieces are active and declare the capability.
func (r *Router) resolve(modelID string, c taskcore.Capability) (taskcore.Model, taskcore.Provider, taskcore.Adapter, error) {
	model, err := r.registry.ResolveModel(modelID)
	if err != nil {
		return taskcore.Model{}, taskcore.Provider{}, nil, err
	}
	if !model.Active {
		return model, taskcore.Provider{}, nil, fmt.Errorf("model %s is inactive", modelID)
	}
	if !model.HasCapability(c) {
		return model, taskcore.Provider{}, nil, fmt.Errorf("model %s does not declare capability %s", modelID, c)
	}

	provider, adapter, err := r.registry.ResolveProvider(model.ProviderID)
	if err != nil {
		return model, taskcore.Provider{}, nil, err
	}
	if !provider.Active {
		return model, provider, nil, fmt.Errorf("provider %s is inactive", provider.ID)
	}
	return model, provider, adapter, nil
}

// route runs the primary attempt and at most one fallback hop.
//
// Returns the result, all attempts in order, and the primary error when
// the fallback served the request. On total failure the returned error
// is a *RouteError whose authoritative cause is the primary's failure.
func route[T any](
	r *Router,
	op, agentID string,
	assignment taskcore.Assignment,
	run func(modelID string) (*T, string, string, error),
) (*T, []Attempt, error, error) {
	res, modelID, providerID, primaryErr := run(assignment.PrimaryID)
	attempts := []Attempt{{ModelID: modelID, ProviderID: providerID, Err: primaryErr}}
	if primaryErr == nil {
		return res, attempts, nil, nil
	}

	r.log.Warn("primary model failed",
		"agent", agentID,
		"op", op,
		"model", assignment.PrimaryID,
		"error", primaryErr,
	)

	if !assignment.HasFallback() {
		return nil, attempts, nil, &RouteError{AgentID: agentID, Op: op, Primary: primaryErr, Attempts: attempts}
	}

	r.log.Info("attempting fallback model",
		"agent", agentID,
		"op", op,
		"model", assignment.FallbackID,
	)

	res, modelID, providerID, fallbackErr := run(assignment.FallbackID)
	attempts = append(attempts, Attempt{ModelID: modelID, ProviderID: providerID, Fallback: true, Err: fallbackErr})
	if fallbackErr == nil {
		return res, attempts, primaryErr, nil
	}

	r.log.Warn("fallback model failed",
		"agent", agentID,
		"op", op,
		"model", assignment.FallbackID,
		"error", fallbackErr,
	)

	// The primary's error stays authoritative; the fallback outcome is
	// carried as annotation only.
	return nil, attempts, nil, &RouteError{AgentID: agentID, Op: op, Primary: primaryErr, Attempts: attempts}
}
