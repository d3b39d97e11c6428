package workflow

import (
	"github.com/sitewise/taskcore"
)

// StepKind identifies the behavior of a step.
type StepKind string

const (
	// StepAgentTask runs a model generation through the router.
	StepAgentTask StepKind = "agent-task"

	// StepHumanTask waits for a person to complete work.
	StepHumanTask StepKind = "human-task"

	// StepApproval waits for an approve/reject decision.
	StepApproval StepKind = "approval"

	// StepConditional branches on a boolean value in instance data.
	StepConditional StepKind = "conditional-branch"

	// StepNotification sends a message through the notification sink.
	// Delivery failures are recorded but never fail the instance.
	StepNotification StepKind = "notification"

	// StepIntegration calls an external tool and merges its result
	// into instance data.
	StepIntegration StepKind = "integration-call"
)

// Automated reports whether the kind advances without human input.
func (k StepKind) Automated() bool {
	switch k {
	case StepAgentTask, StepConditional, StepNotification, StepIntegration:
		return true
	}
	return false
}

// Step is one node in a definition's execution graph. The default
// successor is the next step in sequence; Next overrides it, and
// conditional and approval steps carry their own named transitions.
type Step struct {
	ID   string   `json:"id"`
	Name string   `json:"name,omitempty"`
	Kind StepKind `json:"kind"`

	// Next overrides the sequential successor. Empty means
	// next-in-sequence; the last step in sequence completes the run.
	Next string `json:"next,omitempty"`

	// Agent-task configuration. PromptKey names the data key whose
	// value becomes the prompt; OutputKey receives the generated text.
	AgentID   string          `json:"agent_id,omitempty"`
	PromptKey string          `json:"prompt_key,omitempty"`
	OutputKey string          `json:"output_key,omitempty"`
	Params    taskcore.Params `json:"params,omitempty"`

	// Human-task and approval configuration.
	Assignee string `json:"assignee,omitempty"`

	// OnReject names the step taken when an approval is rejected.
	// Empty fails the instance on rejection.
	OnReject string `json:"on_reject,omitempty"`

	// Conditional configuration. ConditionKey names a boolean data
	// key; OnTrue and OnFalse name the matching transitions.
	ConditionKey string `json:"condition_key,omitempty"`
	OnTrue       string `json:"on_true,omitempty"`
	OnFalse      string `json:"on_false,omitempty"`

	// Notification configuration.
	Recipient string `json:"recipient,omitempty"`
	Message   string `json:"message,omitempty"`

	// Integration configuration. The tool result is stored under
	// ResultKey, or merged key-by-key into data when ResultKey is empty.
	Tool      string         `json:"tool,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	ResultKey string         `json:"result_key,omitempty"`
}

// Definition is an ordered list of steps forming a directed graph.
type Definition struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Steps []Step `json:"steps"`
}

// step returns the step with the given id.
func (d *Definition) step(id string) (Step, bool) {
	for _, s := range d.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// successor returns the id of the step following id in sequence, or
// empty when id is the last step.
func (d *Definition) successor(id string) string {
	for i, s := range d.Steps {
		if s.ID == id && i+1 < len(d.Steps) {
			return d.Steps[i+1].ID
		}
	}
	return ""
}

// Validate checks the definition graph. Step ids must be unique and
// non-empty, kinds known, per-kind required configuration present, and
// every named transition must target an existing step. A transition
// left unnamed (for example a conditional with no on-false) passes
// validation; selecting it at runtime fails the instance instead.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return &DefinitionError{DefinitionID: d.ID, Reason: "definition id is required"}
	}
	if len(d.Steps) == 0 {
		return &DefinitionError{DefinitionID: d.ID, Reason: "at least one step is required"}
	}

	seen := make(map[string]bool, len(d.Steps))
	for _, s := range d.Steps {
		if s.ID == "" {
			return &DefinitionError{DefinitionID: d.ID, Reason: "step id is required"}
		}
		if seen[s.ID] {
			return &DefinitionError{DefinitionID: d.ID, StepID: s.ID, Reason: "duplicate step id"}
		}
		seen[s.ID] = true
	}

	for _, s := range d.Steps {
		switch s.Kind {
		case StepAgentTask:
			if s.AgentID == "" {
				return &DefinitionError{DefinitionID: d.ID, StepID: s.ID, Reason: "agent-task requires an agent id"}
			}
		case StepConditional:
			if s.ConditionKey == "" {
				return &DefinitionError{DefinitionID: d.ID, StepID: s.ID, Reason: "conditional-branch requires a condition key"}
			}
			if s.OnTrue == "" && s.OnFalse == "" {
				return &DefinitionError{DefinitionID: d.ID, StepID: s.ID, Reason: "conditional-branch requires at least one transition"}
			}
		case StepNotification:
			if s.Recipient == "" {
				return &DefinitionError{DefinitionID: d.ID, StepID: s.ID, Reason: "notification requires a recipient"}
			}
		case StepIntegration:
			if s.Tool == "" {
				return &DefinitionError{DefinitionID: d.ID, StepID: s.ID, Reason: "integration-call requires a tool name"}
			}
		case StepHumanTask, StepApproval:
		default:
			return &DefinitionError{DefinitionID: d.ID, StepID: s.ID, Reason: "unknown step kind " + string(s.Kind)}
		}

		for _, target := range []string{s.Next, s.OnTrue, s.OnFalse, s.OnReject} {
			if target != "" && !seen[target] {
				return &DefinitionError{DefinitionID: d.ID, StepID: s.ID, Reason: "transition targets unknown step " + target}
			}
		}
	}
	return nil
}
