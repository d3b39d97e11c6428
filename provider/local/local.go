// Package local adapts a self-hosted inference server (Ollama or any
// OpenAI-compatible endpoint) to the taskcore.Adapter capability
// surface. It reuses the OpenAI adapter against the server's /v1
// compatibility API, so generation, embeddings and health checks behave
// identically to the cloud path.
package local

import (
	"strings"

	"github.com/sitewise/taskcore"
	openaiadapter "github.com/sitewise/taskcore/provider/openai"
	"github.com/sitewise/taskcore/retry"
)

// placeholderKey satisfies the OpenAI client; local servers ignore it.
const placeholderKey = "local"

// New creates an adapter for the inference server at endpoint,
// e.g. "http://localhost:11434".
func New(endpoint string, opts ...openaiadapter.ClientOption) *openaiadapter.Client {
	all := []openaiadapter.ClientOption{
		openaiadapter.WithProviderID("local"),
		openaiadapter.WithBaseURL(baseURL(endpoint)),
	}
	all = append(all, opts...)
	return openaiadapter.New(placeholderKey, all...)
}

// FromProvider creates an adapter configured from a provider record.
// Local servers need no credential; the record's endpoint is required.
func FromProvider(p taskcore.Provider) *openaiadapter.Client {
	opts := []openaiadapter.ClientOption{
		openaiadapter.WithProviderID(p.ID),
		openaiadapter.WithRetry(retry.ForMaxRetries(p.MaxRetries)),
	}
	if p.Timeout > 0 {
		opts = append(opts, openaiadapter.WithTimeout(p.Timeout))
	}
	return New(p.Endpoint, opts...)
}

// baseURL normalizes an endpoint to the server's OpenAI-compatible API
// root. An explicit /v1 suffix is preserved rather than doubled.
func baseURL(endpoint string) string {
	trimmed := strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}
