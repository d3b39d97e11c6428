package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func triageDefinition() Definition {
	return Definition{
		ID: "rfi-triage",
		Steps: []Step{
			{ID: "analyze", Kind: StepAgentTask, AgentID: "rfi-analyst", PromptKey: "question", OutputKey: "analysis"},
			{ID: "review", Kind: StepHumanTask, Assignee: "site-engineer"},
			{ID: "approve", Kind: StepApproval, Assignee: "project-manager", OnReject: "review"},
			{ID: "notify", Kind: StepNotification, Recipient: "submitter", Message: "RFI answered"},
		},
	}
}

func TestDefinitionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		def := triageDefinition()
		assert.NoError(t, def.Validate())
	})

	t.Run("requires steps", func(t *testing.T) {
		def := Definition{ID: "empty"}
		var derr *DefinitionError
		require.ErrorAs(t, def.Validate(), &derr)
	})

	t.Run("rejects duplicate step ids", func(t *testing.T) {
		def := Definition{ID: "dup", Steps: []Step{
			{ID: "a", Kind: StepHumanTask},
			{ID: "a", Kind: StepHumanTask},
		}}
		var derr *DefinitionError
		require.ErrorAs(t, def.Validate(), &derr)
		assert.Equal(t, "a", derr.StepID)
	})

	t.Run("rejects unknown transition target", func(t *testing.T) {
		def := Definition{ID: "bad", Steps: []Step{
			{ID: "branch", Kind: StepConditional, ConditionKey: "ok", OnTrue: "ghost"},
		}}
		var derr *DefinitionError
		require.ErrorAs(t, def.Validate(), &derr)
		assert.Contains(t, derr.Reason, "ghost")
	})

	t.Run("rejects agent task without agent", func(t *testing.T) {
		def := Definition{ID: "bad", Steps: []Step{{ID: "a", Kind: StepAgentTask}}}
		var derr *DefinitionError
		require.ErrorAs(t, def.Validate(), &derr)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		def := Definition{ID: "bad", Steps: []Step{{ID: "a", Kind: "teleport"}}}
		var derr *DefinitionError
		require.ErrorAs(t, def.Validate(), &derr)
	})

	t.Run("allows a single-sided conditional", func(t *testing.T) {
		// The missing branch is a runtime failure, not an authoring one.
		def := Definition{ID: "half", Steps: []Step{
			{ID: "branch", Kind: StepConditional, ConditionKey: "ok", OnTrue: "done"},
			{ID: "done", Kind: StepHumanTask},
		}}
		assert.NoError(t, def.Validate())
	})
}

func TestNextStep(t *testing.T) {
	def := triageDefinition()

	t.Run("sequential success", func(t *testing.T) {
		tr, err := NextStep(&def, def.Steps[0], Outcome{})
		require.NoError(t, err)
		assert.Equal(t, "review", tr.NextStep)
	})

	t.Run("failure terminates", func(t *testing.T) {
		tr, err := NextStep(&def, def.Steps[0], Outcome{Failed: true})
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, tr.Terminal)
	})

	t.Run("last step completes", func(t *testing.T) {
		tr, err := NextStep(&def, def.Steps[3], Outcome{})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, tr.Terminal)
	})

	t.Run("approval approved continues in sequence", func(t *testing.T) {
		tr, err := NextStep(&def, def.Steps[2], Outcome{Decision: DecisionApproved})
		require.NoError(t, err)
		assert.Equal(t, "notify", tr.NextStep)
	})

	t.Run("approval rejected follows on-reject", func(t *testing.T) {
		tr, err := NextStep(&def, def.Steps[2], Outcome{Decision: DecisionRejected})
		require.NoError(t, err)
		assert.Equal(t, "review", tr.NextStep)
	})

	t.Run("approval rejected without on-reject fails", func(t *testing.T) {
		step := Step{ID: "gate", Kind: StepApproval}
		tr, err := NextStep(&def, step, Outcome{Decision: DecisionRejected})
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, tr.Terminal)
	})

	t.Run("explicit next overrides sequence", func(t *testing.T) {
		step := Step{ID: "analyze", Kind: StepAgentTask, Next: "notify"}
		tr, err := NextStep(&def, step, Outcome{})
		require.NoError(t, err)
		assert.Equal(t, "notify", tr.NextStep)
	})

	t.Run("conditional follows matching branch", func(t *testing.T) {
		step := Step{ID: "branch", Kind: StepConditional, ConditionKey: "ok", OnTrue: "notify", OnFalse: "review"}
		tr, err := NextStep(&def, step, Outcome{Condition: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, "notify", tr.NextStep)

		tr, err = NextStep(&def, step, Outcome{Condition: boolPtr(false)})
		require.NoError(t, err)
		assert.Equal(t, "review", tr.NextStep)
	})

	t.Run("conditional missing branch is a definition error", func(t *testing.T) {
		step := Step{ID: "branch", Kind: StepConditional, ConditionKey: "ok", OnTrue: "notify"}
		tr, err := NextStep(&def, step, Outcome{Condition: boolPtr(false)})
		var derr *DefinitionError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, StatusFailed, tr.Terminal)
	})
}
