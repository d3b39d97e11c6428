// Package anthropic adapts the Anthropic API to the taskcore.Adapter
// capability surface. Anthropic serves text generation only; Embed
// reports taskcore.ErrUnsupported.
package anthropic
