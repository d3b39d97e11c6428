package taskcore

import "time"

// ProviderKind distinguishes how a provider backend is reached.
type ProviderKind string

const (
	// ProviderCloud is a hosted API backend (OpenAI, Anthropic, Google).
	ProviderCloud ProviderKind = "cloud-api"

	// ProviderLocal is a self-hosted inference server (Ollama-style).
	ProviderLocal ProviderKind = "local-inference"
)

// Provider is the configuration record for one AI backend. It is created
// and edited by configuration operators; in-flight calls read it as a
// snapshot and never observe partial edits.
type Provider struct {
	// ID uniquely identifies the provider within the registry.
	ID string `json:"id"`

	// Kind selects the backend family.
	Kind ProviderKind `json:"kind"`

	// Endpoint overrides the backend base URL. Empty means the adapter's
	// default. Required for local-inference providers.
	Endpoint string `json:"endpoint,omitempty"`

	// CredentialRef names the credential (typically an environment
	// variable) used to authenticate. The secret itself is never stored
	// in the record.
	CredentialRef string `json:"credential_ref,omitempty"`

	// Timeout bounds every network call made through this provider's
	// adapter. Zero means the adapter default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxRetries enables adapter-level retry of transient failures.
	// Zero disables retry; the router's fallback hop is unaffected.
	MaxRetries int `json:"max_retries,omitempty"`

	// Active marks the provider as eligible for routing.
	Active bool `json:"active"`
}
