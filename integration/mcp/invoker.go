// Package mcp connects integration-call workflow steps to external tool
// services speaking the Model Context Protocol.
//
// An Invoker holds one client connection to an MCP server, caches its
// tool list, and satisfies the workflow ToolInvoker contract: step
// arguments go out as the tool call payload and the result comes back
// as a map merged into instance data.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// Invoker proxies tool calls to a remote MCP server.
//
// Invoker is safe for concurrent use. The tool list is cached locally
// and can be refreshed with [Invoker.Refresh].
type Invoker struct {
	client *client.Client
	mu     sync.RWMutex
	tools  map[string]mcp.Tool
}

// NewStdio creates an Invoker connected to an MCP server launched as a
// subprocess. The command is the server executable; args are passed to it.
func NewStdio(ctx context.Context, command string, env []string, args ...string) (*Invoker, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("mcp: create stdio client: %w", err)
	}
	return newInvoker(ctx, c)
}

// NewSSE creates an Invoker connected to an MCP server over SSE.
func NewSSE(ctx context.Context, baseURL string) (*Invoker, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("mcp: create SSE client: %w", err)
	}
	return newInvoker(ctx, c)
}

// NewFromClient creates an Invoker from an existing MCP client. The
// session is initialized and the tool list fetched.
func NewFromClient(ctx context.Context, c *client.Client) (*Invoker, error) {
	return newInvoker(ctx, c)
}

func newInvoker(ctx context.Context, c *client.Client) (*Invoker, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp: start client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "taskcore-workflow",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: initialize session: %w", err)
	}

	inv := &Invoker{client: c, tools: make(map[string]mcp.Tool)}
	if err := inv.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: list tools: %w", err)
	}
	return inv, nil
}

// Close closes the connection to the MCP server.
func (inv *Invoker) Close() error {
	return inv.client.Close()
}

// Refresh fetches the current tool list from the server.
func (inv *Invoker) Refresh(ctx context.Context) error {
	result, err := inv.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.tools = make(map[string]mcp.Tool, len(result.Tools))
	for _, t := range result.Tools {
		inv.tools[t.Name] = t
	}
	return nil
}

// Has reports whether the server offers the named tool.
func (inv *Invoker) Has(name string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	_, ok := inv.tools[name]
	return ok
}

// Names returns the names of all available tools.
func (inv *Invoker) Names() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	names := make([]string, 0, len(inv.tools))
	for name := range inv.tools {
		names = append(names, name)
	}
	return names
}

// Invoke calls the named tool and decodes its result into a map. A
// structured result is returned as-is; a JSON-object text result is
// parsed; any other text comes back under the "result" key.
func (inv *Invoker) Invoke(ctx context.Context, tool string, args map[string]any) (map[string]any, error) {
	if !inv.Has(tool) {
		return nil, fmt.Errorf("mcp: tool %q is not available", tool)
	}

	result, err := inv.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mcp: call tool %q: %w", tool, err)
	}
	if result == nil {
		return nil, fmt.Errorf("mcp: tool %q returned no result", tool)
	}

	text := textContent(result)
	if result.IsError {
		if text == "" {
			text = "tool call failed"
		}
		return nil, fmt.Errorf("mcp: tool %q: %s", tool, text)
	}

	if m, ok := result.StructuredContent.(map[string]any); ok {
		return m, nil
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed, nil
	}
	return map[string]any{"result": text}, nil
}

// textContent concatenates the text blocks of a tool result.
func textContent(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}
