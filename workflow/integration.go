package workflow

import (
	"context"

	"github.com/sitewise/taskcore"
)

// ToolInvoker executes an integration-call step against an external
// tool service. The returned map is merged into instance data.
type ToolInvoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (map[string]any, error)
}

// AgentInvoker produces text for a logical agent identity. The model
// router satisfies this contract through RouterInvoker.
type AgentInvoker interface {
	Invoke(ctx context.Context, agentID, prompt string, params taskcore.Params) (string, error)
}

// AgentFunc adapts a function to the AgentInvoker interface.
type AgentFunc func(ctx context.Context, agentID, prompt string, params taskcore.Params) (string, error)

func (f AgentFunc) Invoke(ctx context.Context, agentID, prompt string, params taskcore.Params) (string, error) {
	return f(ctx, agentID, prompt, params)
}
