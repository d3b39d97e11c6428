package taskcore

// Params are invocation parameters for a generate call. A model carries
// defaults; callers may override them per request. Merge semantics are
// key-by-key with the override winning.
type Params struct {
	// Temperature controls sampling randomness. Nil means unset.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens bounds the generated output length. Zero means unset.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Stop lists sequences that terminate generation.
	Stop []string `json:"stop,omitempty"`

	// Extra carries backend-specific parameters passed through verbatim.
	Extra map[string]any `json:"extra,omitempty"`
}

// Temp is a convenience constructor for a temperature pointer.
func Temp(v float64) *float64 { return &v }

// Merge returns a copy of p with every field set in override replacing
// the corresponding field of p. Extra keys merge individually.
func (p Params) Merge(override Params) Params {
	out := p.Clone()
	if override.Temperature != nil {
		t := *override.Temperature
		out.Temperature = &t
	}
	if override.MaxTokens > 0 {
		out.MaxTokens = override.MaxTokens
	}
	if len(override.Stop) > 0 {
		out.Stop = append([]string(nil), override.Stop...)
	}
	if len(override.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]any, len(override.Extra))
		}
		for k, v := range override.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the parameters.
func (p Params) Clone() Params {
	out := p
	if p.Temperature != nil {
		t := *p.Temperature
		out.Temperature = &t
	}
	out.Stop = append([]string(nil), p.Stop...)
	if p.Extra != nil {
		out.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
