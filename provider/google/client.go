package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/sitewise/taskcore"
	"github.com/sitewise/taskcore/retry"
)

// DefaultTimeout bounds backend calls when the provider record does not
// configure one.
const DefaultTimeout = 60 * time.Second

// Client wraps the Google GenAI SDK to implement taskcore.Adapter.
type Client struct {
	providerID string
	client     *genai.Client
	timeout    time.Duration
	retry      retry.Config
}

// New creates a Gemini adapter with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		providerID: "google",
		client:     client,
		timeout:    DefaultTimeout,
		retry:      retry.Disabled(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromProvider creates an adapter configured from a provider record.
// The API key is passed separately; the record only names the credential.
func FromProvider(ctx context.Context, p taskcore.Provider, apiKey string) (*Client, error) {
	opts := []ClientOption{WithProviderID(p.ID), WithRetry(retry.ForMaxRetries(p.MaxRetries))}
	if p.Timeout > 0 {
		opts = append(opts, WithTimeout(p.Timeout))
	}
	return New(ctx, apiKey, opts...)
}

// ClientOption configures the Gemini adapter.
type ClientOption func(*Client)

// WithProviderID sets the provider identity used in error annotations.
func WithProviderID(id string) ClientOption {
	return func(c *Client) { c.providerID = id }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithRetry enables adapter-level retry of transient failures.
func WithRetry(cfg retry.Config) ClientOption {
	return func(c *Client) { c.retry = cfg }
}

// Generate produces text from a prompt.
func (c *Client) Generate(ctx context.Context, model, prompt string, params taskcore.Params) (*taskcore.GenerateResult, error) {
	return retry.Do(ctx, c.retry, func() (*taskcore.GenerateResult, error) {
		return c.generate(ctx, model, prompt, params)
	})
}

func (c *Client) generate(ctx context.Context, model, prompt string, params taskcore.Params) (*taskcore.GenerateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if params.MaxTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxTokens)
	}
	if params.Temperature != nil {
		temp := float32(*params.Temperature)
		config.Temperature = &temp
	}
	if len(params.Stop) > 0 {
		config.StopSequences = params.Stop
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return nil, c.wrapError("generate", err)
	}

	result := &taskcore.GenerateResult{
		Text:  resp.Text(),
		Model: model,
	}
	if resp.UsageMetadata != nil {
		result.Usage = taskcore.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return result, nil
}

// Embed computes embedding vectors for the texts.
func (c *Client) Embed(ctx context.Context, model string, texts []string) (*taskcore.EmbedResult, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: at least one text is required for embedding", taskcore.ErrEmptyInput)
	}
	return retry.Do(ctx, c.retry, func() (*taskcore.EmbedResult, error) {
		return c.embed(ctx, model, texts)
	})
}

func (c *Client) embed(ctx context.Context, model string, texts []string) (*taskcore.EmbedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		}
	}

	resp, err := c.client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{})
	if err != nil {
		return nil, c.wrapError("embed", err)
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vectors[i][j] = float64(v)
		}
	}

	return &taskcore.EmbedResult{Vectors: vectors, Model: model}, nil
}

// HealthCheck reports whether the backend answers a model listing call.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
	return err == nil
}
