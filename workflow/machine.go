package workflow

// Decision is the outcome of an approval step.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Outcome is the result of executing or completing one step, fed to the
// transition function.
type Outcome struct {
	// Failed marks an unrecoverable step error.
	Failed bool

	// Decision carries the approve/reject result for approval steps.
	Decision Decision

	// Condition carries the evaluated branch value for conditional
	// steps. Nil means the value was not available.
	Condition *bool
}

// Transition is the computed move out of a step: either the id of the
// next step, or a terminal status.
type Transition struct {
	NextStep string
	Terminal Status // empty unless the instance terminates
}

// NextStep computes the transition out of the current step. It is a
// pure function of the definition, the step and the outcome; it never
// touches instance state.
//
// A failed outcome terminates the run. A conditional outcome selecting
// a transition the definition does not name is a definition error,
// returned for the caller to fail the instance. A rejected approval
// follows the step's on-reject transition when one is named, and
// terminates failed otherwise. Success past the last sequential step
// completes the run.
func NextStep(def *Definition, current Step, out Outcome) (Transition, error) {
	if out.Failed {
		return Transition{Terminal: StatusFailed}, nil
	}

	switch current.Kind {
	case StepConditional:
		if out.Condition == nil {
			return Transition{Terminal: StatusFailed}, &DefinitionError{
				DefinitionID: def.ID,
				StepID:       current.ID,
				Reason:       "condition value for key " + current.ConditionKey + " is not available",
			}
		}
		target := current.OnFalse
		name := "on-false"
		if *out.Condition {
			target = current.OnTrue
			name = "on-true"
		}
		if target == "" {
			return Transition{Terminal: StatusFailed}, &DefinitionError{
				DefinitionID: def.ID,
				StepID:       current.ID,
				Reason:       "no " + name + " transition is defined",
			}
		}
		return Transition{NextStep: target}, nil

	case StepApproval:
		if out.Decision == DecisionRejected {
			if current.OnReject == "" {
				return Transition{Terminal: StatusFailed}, nil
			}
			return Transition{NextStep: current.OnReject}, nil
		}
	}

	if current.Next != "" {
		return Transition{NextStep: current.Next}, nil
	}
	if next := def.successor(current.ID); next != "" {
		return Transition{NextStep: next}, nil
	}
	return Transition{Terminal: StatusCompleted}, nil
}
