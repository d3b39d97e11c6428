package taskcore

// Model is a callable unit bound to one provider.
type Model struct {
	// ID uniquely identifies the model within the registry.
	ID string `json:"id"`

	// ProviderID references the provider that serves this model.
	ProviderID string `json:"provider_id"`

	// BackendID is the provider-specific model identifier sent on the
	// wire (e.g. "gpt-4o", "claude-sonnet-4-20250514").
	BackendID string `json:"backend_id"`

	// Capabilities lists the operations this model can service.
	Capabilities []Capability `json:"capabilities"`

	// Defaults are the invocation parameters applied when the caller
	// does not override them.
	Defaults Params `json:"defaults"`

	// Active marks the model as eligible for routing.
	Active bool `json:"active"`

	// Default marks this model as the registry-wide default for the
	// capabilities it declares. At most one model per capability may
	// carry the flag.
	Default bool `json:"default"`
}

// HasCapability reports whether the model declares the capability.
func (m Model) HasCapability(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Registry lookups hand out clones so that
// concurrent configuration edits cannot race with in-flight calls.
func (m Model) Clone() Model {
	out := m
	out.Capabilities = append([]Capability(nil), m.Capabilities...)
	out.Defaults = m.Defaults.Clone()
	return out
}

// Assignment binds a logical agent identity to a primary model and an
// optional fallback. Assignments are looked up by value at call time.
type Assignment struct {
	// AgentID is the logical consumer identity (e.g. "rfi-analyst").
	AgentID string `json:"agent_id"`

	// PrimaryID is the model serving the agent's requests.
	PrimaryID string `json:"primary_id"`

	// FallbackID, when non-empty, is consulted only after the primary
	// model's call fails. It must differ from PrimaryID.
	FallbackID string `json:"fallback_id,omitempty"`
}

// HasFallback reports whether a fallback model is configured.
func (a Assignment) HasFallback() bool { return a.FallbackID != "" }
