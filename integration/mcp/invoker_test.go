package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/taskcore/workflow"
)

var _ workflow.ToolInvoker = (*Invoker)(nil)

// newTestInvoker wires an Invoker to an in-process MCP server exposing
// a spec-lookup tool and an always-failing tool.
func newTestInvoker(t *testing.T) *Invoker {
	t.Helper()

	s := server.NewMCPServer("test-tools", "1.0.0", server.WithToolCapabilities(true))

	s.AddTool(
		mcp.NewTool("spec-lookup",
			mcp.WithDescription("Look up a specification section"),
			mcp.WithString("section", mcp.Required(), mcp.Description("CSI section number")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := req.Params.Arguments.(map[string]any)
			payload, err := json.Marshal(map[string]any{
				"section": args["section"],
				"title":   "Concrete Reinforcing",
			})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(string(payload)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("broken", mcp.WithDescription("Always fails")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("drawing archive unreachable"), nil
		},
	)

	c, err := client.NewInProcessClient(s)
	require.NoError(t, err)

	inv, err := NewFromClient(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(func() { inv.Close() })
	return inv
}

func TestInvokerToolDiscovery(t *testing.T) {
	inv := newTestInvoker(t)

	assert.True(t, inv.Has("spec-lookup"))
	assert.True(t, inv.Has("broken"))
	assert.False(t, inv.Has("ghost"))
	assert.ElementsMatch(t, []string{"spec-lookup", "broken"}, inv.Names())

	require.NoError(t, inv.Refresh(context.Background()))
	assert.True(t, inv.Has("spec-lookup"))
}

func TestInvokerInvoke(t *testing.T) {
	inv := newTestInvoker(t)

	t.Run("decodes a JSON text result", func(t *testing.T) {
		result, err := inv.Invoke(context.Background(), "spec-lookup", map[string]any{"section": "03 20 00"})
		require.NoError(t, err)
		assert.Equal(t, "03 20 00", result["section"])
		assert.Equal(t, "Concrete Reinforcing", result["title"])
	})

	t.Run("surfaces tool errors", func(t *testing.T) {
		_, err := inv.Invoke(context.Background(), "broken", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "drawing archive unreachable")
	})

	t.Run("rejects unknown tools", func(t *testing.T) {
		_, err := inv.Invoke(context.Background(), "ghost", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available")
	})
}
