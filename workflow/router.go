package workflow

import (
	"context"

	"github.com/sitewise/taskcore"
	"github.com/sitewise/taskcore/router"
)

// RouterInvoker runs agent-task steps through the model router, so a
// step's agent identity resolves to its assigned primary and fallback
// models.
type RouterInvoker struct {
	Router *router.Router
}

// Invoke routes a generation request for the agent and returns the
// produced text.
func (r RouterInvoker) Invoke(ctx context.Context, agentID, prompt string, params taskcore.Params) (string, error) {
	out, err := r.Router.Generate(ctx, agentID, prompt, params)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}
