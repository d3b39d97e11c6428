package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Manager creates instances from registered definitions, advances them
// to a stable waypoint on every operation, and persists each state
// change through the instance store.
//
// Operations against the same instance are serialized by a per-instance
// lock; concurrent completions race and the loser observes a typed
// StepMismatchError or InvalidStateError instead of corrupted history.
// Instances advance only inside Start, CompleteTask and Cancel calls;
// there is no background scheduler.
type Manager struct {
	mu          sync.Mutex
	locks       map[string]*sync.Mutex
	definitions map[string]Definition

	store  InstanceStore
	agents AgentInvoker
	tools  ToolInvoker
	notify NotificationSink
	log    *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithAgentInvoker sets the invoker used for agent-task steps.
func WithAgentInvoker(agents AgentInvoker) ManagerOption {
	return func(m *Manager) { m.agents = agents }
}

// WithToolInvoker sets the invoker used for integration-call steps.
func WithToolInvoker(tools ToolInvoker) ManagerOption {
	return func(m *Manager) { m.tools = tools }
}

// WithNotificationSink sets the sink used for notification steps.
func WithNotificationSink(sink NotificationSink) ManagerOption {
	return func(m *Manager) { m.notify = sink }
}

// WithManagerLogger sets the manager's logger.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a manager over the given instance store.
func NewManager(store InstanceStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		locks:       make(map[string]*sync.Mutex),
		definitions: make(map[string]Definition),
		store:       store,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterDefinition validates and stores a workflow definition,
// replacing any previous definition with the same id.
func (m *Manager) RegisterDefinition(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions[def.ID] = def
	return nil
}

// Definition returns a registered definition.
func (m *Manager) Definition(id string) (Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	def, ok := m.definitions[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrDefinitionNotFound, id)
	}
	return def, nil
}

// Start creates a running instance of the definition and advances it
// through leading automated steps until it reaches a human-facing step,
// a conditional missing its input, or a terminal state. The definition
// graph is re-validated here, not only at registration time.
func (m *Manager) Start(ctx context.Context, definitionID string, initialData map[string]any) (*Instance, error) {
	def, err := m.Definition(definitionID)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	in := newInstance(&def, initialData)
	in.record(EventStarted, "", "workflow "+def.ID+" started")

	lock := m.instanceLock(in.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.store.Save(ctx, in); err != nil {
		return nil, err
	}
	return m.advance(ctx, lock, in, &def)
}

// TaskOutcome carries the result of a completed human-facing step.
type TaskOutcome struct {
	// Data is merged into instance data, overwriting existing keys.
	Data map[string]any

	// Decision is required for approval steps and ignored otherwise.
	Decision Decision
}

// CompleteTask resolves the instance's current waiting step and
// continues auto-advancing. It fails with StepMismatchError if stepID
// is not the current step, and with InvalidStateError if the instance
// is terminal; neither failure mutates data or history.
func (m *Manager) CompleteTask(ctx context.Context, instanceID, stepID string, outcome TaskOutcome) (*Instance, error) {
	lock := m.instanceLock(instanceID)
	lock.Lock()
	defer lock.Unlock()

	in, err := m.store.Load(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if in.Status.Terminal() {
		return nil, &InvalidStateError{InstanceID: instanceID, Status: in.Status, Op: "complete task"}
	}
	if in.CurrentStep != stepID {
		return nil, &StepMismatchError{InstanceID: instanceID, Requested: stepID, Current: in.CurrentStep}
	}

	def, err := m.Definition(in.DefinitionID)
	if err != nil {
		return nil, err
	}
	step, ok := def.step(stepID)
	if !ok {
		return nil, &DefinitionError{DefinitionID: def.ID, StepID: stepID, Reason: "current step not in definition"}
	}

	switch step.Kind {
	case StepHumanTask:
		in.merge(outcome.Data)
		in.record(EventStepCompleted, stepID, "task completed")
		return m.applyAndAdvance(ctx, lock, in, &def, step, Outcome{})

	case StepApproval:
		if outcome.Decision != DecisionApproved && outcome.Decision != DecisionRejected {
			return nil, &InvalidStateError{InstanceID: instanceID, Status: in.Status, Op: "complete approval without a decision"}
		}
		in.merge(outcome.Data)
		in.record(EventStepCompleted, stepID, string(outcome.Decision))
		return m.applyAndAdvance(ctx, lock, in, &def, step, Outcome{Decision: outcome.Decision})

	case StepConditional:
		// A conditional parked waiting for data resumes once the
		// completion supplies it; the advance loop evaluates it.
		in.merge(outcome.Data)
		in.Status = StatusRunning
		if err := m.store.Save(ctx, in); err != nil {
			return nil, err
		}
		return m.advance(ctx, lock, in, &def)

	default:
		return nil, &InvalidStateError{InstanceID: instanceID, Status: in.Status, Op: "complete automated step " + stepID}
	}
}

// Cancel transitions a non-terminal instance to cancelled, recording
// the triggering actor. Cancelling a terminal instance fails with
// InvalidStateError and leaves history untouched.
func (m *Manager) Cancel(ctx context.Context, instanceID, actor, reason string) (*Instance, error) {
	lock := m.instanceLock(instanceID)
	lock.Lock()
	defer lock.Unlock()

	in, err := m.store.Load(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if in.Status.Terminal() {
		return nil, &InvalidStateError{InstanceID: instanceID, Status: in.Status, Op: "cancel"}
	}

	in.Status = StatusCancelled
	detail := "cancelled by " + actor
	if reason != "" {
		detail += ": " + reason
	}
	in.record(EventCancelled, in.CurrentStep, detail)
	if err := m.store.Save(ctx, in); err != nil {
		return nil, err
	}
	return in.Clone(), nil
}

// GetInstance returns a read-only snapshot including full history.
func (m *Manager) GetInstance(ctx context.Context, instanceID string) (*Instance, error) {
	return m.store.Load(ctx, instanceID)
}

// ListInstances returns snapshots of all known instances.
func (m *Manager) ListInstances(ctx context.Context) ([]*Instance, error) {
	return m.store.List(ctx)
}

func (m *Manager) instanceLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// applyAndAdvance moves the instance out of step per the outcome, then
// continues the automated advance loop.
func (m *Manager) applyAndAdvance(ctx context.Context, lock *sync.Mutex, in *Instance, def *Definition, step Step, out Outcome) (*Instance, error) {
	t, terr := NextStep(def, step, out)
	if terr != nil {
		return m.fail(ctx, in, step.ID, terr.Error())
	}
	if t.Terminal != "" {
		return m.finish(ctx, in, t.Terminal, step.ID)
	}
	in.Status = StatusRunning
	in.CurrentStep = t.NextStep
	if err := m.store.Save(ctx, in); err != nil {
		return nil, err
	}
	return m.advance(ctx, lock, in, def)
}

// advance runs the instance to a fixed point: it executes automated
// steps until the instance waits on a person or missing data, or
// terminates. Callers hold the instance lock; it is released around
// agent calls so cancellation stays responsive, and the stored state is
// re-read afterwards — a result arriving for a cancelled instance is
// discarded.
func (m *Manager) advance(ctx context.Context, lock *sync.Mutex, in *Instance, def *Definition) (*Instance, error) {
	for in.Status == StatusRunning {
		step, ok := def.step(in.CurrentStep)
		if !ok {
			return m.fail(ctx, in, in.CurrentStep, "current step not in definition")
		}

		switch step.Kind {
		case StepHumanTask:
			in.Status = StatusWaiting
			in.record(EventWaiting, step.ID, "waiting for task completion")
			if err := m.store.Save(ctx, in); err != nil {
				return nil, err
			}
			return in.Clone(), nil

		case StepApproval:
			in.Status = StatusWaiting
			in.record(EventWaiting, step.ID, "waiting for approval")
			if err := m.store.Save(ctx, in); err != nil {
				return nil, err
			}
			return in.Clone(), nil

		case StepAgentTask:
			next, err := m.runAgentStep(ctx, lock, in, def, step)
			if next == nil || err != nil {
				return next, err
			}
			in = next

		case StepConditional:
			value, ok := in.Data[step.ConditionKey]
			if !ok {
				in.Status = StatusWaiting
				in.record(EventWaiting, step.ID, "waiting for condition value "+step.ConditionKey)
				if err := m.store.Save(ctx, in); err != nil {
					return nil, err
				}
				return in.Clone(), nil
			}
			cond, isBool := value.(bool)
			if !isBool {
				return m.fail(ctx, in, step.ID, "condition value "+step.ConditionKey+" is not a boolean")
			}
			t, terr := NextStep(def, step, Outcome{Condition: &cond})
			if terr != nil {
				in.record(EventStepFailed, step.ID, terr.Error())
				return m.finish(ctx, in, StatusFailed, step.ID)
			}
			in.record(EventStepCompleted, step.ID, fmt.Sprintf("condition %s = %t", step.ConditionKey, cond))
			if done, out, err := m.transition(ctx, in, step, t); done {
				return out, err
			}

		case StepNotification:
			m.runNotificationStep(ctx, in, step)
			t, _ := NextStep(def, step, Outcome{})
			if done, out, err := m.transition(ctx, in, step, t); done {
				return out, err
			}

		case StepIntegration:
			if failed, err := m.runIntegrationStep(ctx, in, step); err != nil {
				return nil, err
			} else if failed {
				return m.finish(ctx, in, StatusFailed, step.ID)
			}
			t, _ := NextStep(def, step, Outcome{})
			if done, out, err := m.transition(ctx, in, step, t); done {
				return out, err
			}

		default:
			return m.fail(ctx, in, step.ID, "unknown step kind "+string(step.Kind))
		}
	}
	return in.Clone(), nil
}

// transition moves the instance out of an automated step. It reports
// done=true when the loop should stop (terminal or save failure).
func (m *Manager) transition(ctx context.Context, in *Instance, step Step, t Transition) (bool, *Instance, error) {
	if t.Terminal != "" {
		out, err := m.finish(ctx, in, t.Terminal, step.ID)
		return true, out, err
	}
	in.CurrentStep = t.NextStep
	if err := m.store.Save(ctx, in); err != nil {
		return true, nil, err
	}
	return false, nil, nil
}

// runAgentStep executes one agent-task. The instance lock is released
// for the duration of the model call; afterwards the stored state is
// reloaded and a cancelled instance discards the result.
func (m *Manager) runAgentStep(ctx context.Context, lock *sync.Mutex, in *Instance, def *Definition, step Step) (*Instance, error) {
	if m.agents == nil {
		return m.fail(ctx, in, step.ID, "no agent invoker configured")
	}
	prompt, ok := in.Data[step.PromptKey].(string)
	if !ok {
		return m.fail(ctx, in, step.ID, "prompt value "+step.PromptKey+" is not available")
	}

	in.record(EventStepStarted, step.ID, "agent "+step.AgentID)
	if err := m.store.Save(ctx, in); err != nil {
		return nil, err
	}

	lock.Unlock()
	text, invokeErr := m.agents.Invoke(ctx, step.AgentID, prompt, step.Params)
	lock.Lock()

	fresh, err := m.store.Load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if fresh.Status != StatusRunning {
		// Cancelled (or otherwise settled) while the call was in
		// flight; the late result is discarded without regression.
		m.log.Info("discarding in-flight agent result",
			"instance", in.ID,
			"step", step.ID,
			"status", fresh.Status,
		)
		return fresh, nil
	}

	if invokeErr != nil {
		m.log.Warn("agent step failed",
			"instance", in.ID,
			"step", step.ID,
			"agent", step.AgentID,
			"error", invokeErr,
		)
		return m.fail(ctx, fresh, step.ID, invokeErr.Error())
	}

	outputKey := step.OutputKey
	if outputKey == "" {
		outputKey = "output"
	}
	fresh.merge(map[string]any{outputKey: text})
	fresh.record(EventStepCompleted, step.ID, "agent "+step.AgentID)

	t, terr := NextStep(def, step, Outcome{})
	if terr != nil {
		return m.fail(ctx, fresh, step.ID, terr.Error())
	}
	if t.Terminal != "" {
		return m.finish(ctx, fresh, t.Terminal, step.ID)
	}
	fresh.CurrentStep = t.NextStep
	if err := m.store.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// runNotificationStep delivers a notification. Failures are recorded in
// history and never fail the instance.
func (m *Manager) runNotificationStep(ctx context.Context, in *Instance, step Step) {
	if m.notify == nil {
		in.record(EventStepCompleted, step.ID, "no notification sink configured, skipped")
		return
	}
	err := m.notify.Notify(ctx, Notification{
		InstanceID: in.ID,
		StepID:     step.ID,
		Recipient:  step.Recipient,
		Message:    step.Message,
	})
	if err != nil {
		m.log.Warn("notification delivery failed",
			"instance", in.ID,
			"step", step.ID,
			"recipient", step.Recipient,
			"error", err,
		)
		in.record(EventNotificationFailed, step.ID, err.Error())
		return
	}
	in.record(EventStepCompleted, step.ID, "notified "+step.Recipient)
}

// runIntegrationStep calls an external tool and merges its result into
// instance data. It reports failed=true when the step failed the run.
func (m *Manager) runIntegrationStep(ctx context.Context, in *Instance, step Step) (bool, error) {
	if m.tools == nil {
		in.record(EventStepFailed, step.ID, "no tool invoker configured")
		return true, nil
	}
	result, err := m.tools.Invoke(ctx, step.Tool, step.Args)
	if err != nil {
		m.log.Warn("integration step failed",
			"instance", in.ID,
			"step", step.ID,
			"tool", step.Tool,
			"error", err,
		)
		in.record(EventStepFailed, step.ID, err.Error())
		return true, nil
	}
	if step.ResultKey != "" {
		in.merge(map[string]any{step.ResultKey: result})
	} else {
		in.merge(result)
	}
	in.record(EventStepCompleted, step.ID, "tool "+step.Tool)
	return false, nil
}

// fail records a step failure and terminates the instance.
func (m *Manager) fail(ctx context.Context, in *Instance, stepID, detail string) (*Instance, error) {
	in.record(EventStepFailed, stepID, detail)
	return m.finish(ctx, in, StatusFailed, stepID)
}

// finish moves the instance to a terminal status.
func (m *Manager) finish(ctx context.Context, in *Instance, terminal Status, stepID string) (*Instance, error) {
	in.Status = terminal
	switch terminal {
	case StatusCompleted:
		in.record(EventCompleted, stepID, "workflow completed")
	case StatusFailed:
		in.record(EventFailed, stepID, "workflow failed")
	case StatusCancelled:
		in.record(EventCancelled, stepID, "workflow cancelled")
	}
	if err := m.store.Save(ctx, in); err != nil {
		return nil, err
	}
	return in.Clone(), nil
}
