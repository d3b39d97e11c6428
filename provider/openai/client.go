package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sitewise/taskcore"
	"github.com/sitewise/taskcore/retry"
)

// DefaultTimeout bounds backend calls when the provider record does not
// configure one.
const DefaultTimeout = 60 * time.Second

// Client wraps the OpenAI SDK to implement taskcore.Adapter.
type Client struct {
	providerID string
	client     *openai.Client
	baseURL    string
	timeout    time.Duration
	retry      retry.Config
}

// New creates an OpenAI adapter with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		providerID: "openai",
		timeout:    DefaultTimeout,
		retry:      retry.Disabled(),
	}
	for _, opt := range opts {
		opt(c)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}
	client := openai.NewClient(reqOpts...)
	c.client = &client
	return c
}

// FromProvider creates an adapter configured from a provider record.
// The API key is passed separately; the record only names the credential.
func FromProvider(p taskcore.Provider, apiKey string) *Client {
	opts := []ClientOption{WithProviderID(p.ID), WithRetry(retry.ForMaxRetries(p.MaxRetries))}
	if p.Timeout > 0 {
		opts = append(opts, WithTimeout(p.Timeout))
	}
	if p.Endpoint != "" {
		opts = append(opts, WithBaseURL(p.Endpoint))
	}
	return New(apiKey, opts...)
}

// ClientOption configures the OpenAI adapter.
type ClientOption func(*Client)

// WithProviderID sets the provider identity used in error annotations.
func WithProviderID(id string) ClientOption {
	return func(c *Client) { c.providerID = id }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
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

	req := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}
	if params.Temperature != nil {
		req.Temperature = openai.Float(*params.Temperature)
	}
	if len(params.Stop) > 0 {
		req.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: params.Stop}
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, c.wrapError("generate", err)
	}
	if len(resp.Choices) == 0 {
		return nil, c.unavailable("generate", fmt.Errorf("empty response from backend"))
	}

	return &taskcore.GenerateResult{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: taskcore.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
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

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, c.wrapError("embed", err)
	}

	vectors := make([][]float64, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = data.Embedding
	}

	return &taskcore.EmbedResult{
		Vectors: vectors,
		Model:   resp.Model,
		Usage: taskcore.Usage{
			InputTokens: int(resp.Usage.PromptTokens),
		},
	}, nil
}

// HealthCheck reports whether the backend answers a model listing call.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.Models.List(ctx)
	return err == nil
}
