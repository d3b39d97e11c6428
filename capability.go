package taskcore

// Capability identifies an operation kind a model can service.
type Capability string

// String returns the capability identifier.
func (c Capability) String() string { return string(c) }

// Supported capabilities.
const (
	CapabilityGenerate Capability = "text-generation"
	CapabilityEmbed    Capability = "embedding"
)
