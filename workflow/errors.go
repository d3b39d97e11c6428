package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInstanceNotFound indicates a referenced instance does not exist.
	ErrInstanceNotFound = errors.New("workflow: instance not found")

	// ErrDefinitionNotFound indicates a referenced definition does not exist.
	ErrDefinitionNotFound = errors.New("workflow: definition not found")
)

// DefinitionError reports a workflow definition that fails validation,
// or a transition that cannot be resolved at runtime.
type DefinitionError struct {
	DefinitionID string
	StepID       string
	Reason       string
}

func (e *DefinitionError) Error() string {
	if e.StepID == "" {
		return fmt.Sprintf("workflow: definition %s invalid: %s", e.DefinitionID, e.Reason)
	}
	return fmt.Sprintf("workflow: definition %s invalid at step %s: %s", e.DefinitionID, e.StepID, e.Reason)
}

// InvalidStateError reports an operation attempted against an instance
// whose status does not permit it.
type InvalidStateError struct {
	InstanceID string
	Status     Status
	Op         string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("workflow: cannot %s instance %s in status %s", e.Op, e.InstanceID, e.Status)
}

// StepMismatchError reports a task completion targeting a step that is
// not the instance's current step.
type StepMismatchError struct {
	InstanceID string
	Requested  string
	Current    string
}

func (e *StepMismatchError) Error() string {
	return fmt.Sprintf("workflow: instance %s is at step %s, not %s", e.InstanceID, e.Current, e.Requested)
}
