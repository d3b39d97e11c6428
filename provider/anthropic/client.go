package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sitewise/taskcore"
	"github.com/sitewise/taskcore/retry"
)

// DefaultTimeout bounds backend calls when the provider record does not
// configure one.
const DefaultTimeout = 60 * time.Second

// defaultMaxTokens applies when invocation parameters leave the output
// length unset; the Anthropic API requires an explicit bound.
const defaultMaxTokens = 4096

// Client wraps the Anthropic SDK to implement taskcore.Adapter.
type Client struct {
	providerID string
	client     *anthropic.Client
	baseURL    string
	timeout    time.Duration
	retry      retry.Config
}

// New creates an Anthropic adapter with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		providerID: "anthropic",
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
	client := anthropic.NewClient(reqOpts...)
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

// ClientOption configures the Anthropic adapter.
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

	maxTokens := int64(defaultMaxTokens)
	if params.MaxTokens > 0 {
		maxTokens = int64(params.MaxTokens)
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if params.Temperature != nil {
		req.Temperature = anthropic.Float(*params.Temperature)
	}
	if len(params.Stop) > 0 {
		req.StopSequences = params.Stop
	}

	resp, err := c.client.Messages.New(ctx, req)
	if err != nil {
		return nil, c.wrapError("generate", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &taskcore.GenerateResult{
		Text:  sb.String(),
		Model: string(resp.Model),
		Usage: taskcore.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// Embed is not supported by the Anthropic backend.
func (c *Client) Embed(ctx context.Context, model string, texts []string) (*taskcore.EmbedResult, error) {
	return nil, fmt.Errorf("anthropic: embeddings: %w", taskcore.ErrUnsupported)
}

// HealthCheck reports whether the backend answers a model listing call.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.Models.List(ctx, anthropic.ModelListParams{})
	return err == nil
}
