package workflow

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an instance.
type Status string

const (
	StatusRunning   Status = "running"
	StatusWaiting   Status = "waiting"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// EventKind classifies a history entry.
type EventKind string

const (
	EventStarted            EventKind = "started"
	EventStepStarted        EventKind = "step_started"
	EventStepCompleted      EventKind = "step_completed"
	EventStepFailed         EventKind = "step_failed"
	EventWaiting            EventKind = "waiting"
	EventNotificationFailed EventKind = "notification_failed"
	EventCompleted          EventKind = "completed"
	EventFailed             EventKind = "failed"
	EventCancelled          EventKind = "cancelled"
)

// Event is one append-only history entry.
type Event struct {
	ID     string    `json:"id"`
	Kind   EventKind `json:"kind"`
	StepID string    `json:"step_id,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Instance is one run of a definition. Once the status is terminal the
// instance is immutable.
type Instance struct {
	ID           string         `json:"id"`
	DefinitionID string         `json:"definition_id"`
	Status       Status         `json:"status"`
	CurrentStep  string         `json:"current_step,omitempty"`
	Data         map[string]any `json:"data"`
	History      []Event        `json:"history"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// newInstance creates a running instance positioned at the entry step.
func newInstance(def *Definition, initialData map[string]any) *Instance {
	now := time.Now().UTC()
	in := &Instance{
		ID:           uuid.NewString(),
		DefinitionID: def.ID,
		Status:       StatusRunning,
		CurrentStep:  def.Steps[0].ID,
		Data:         make(map[string]any),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	maps.Copy(in.Data, initialData)
	return in
}

// record appends a history event. History is append-only; entries are
// never rewritten.
func (in *Instance) record(kind EventKind, stepID, detail string) {
	now := time.Now().UTC()
	in.History = append(in.History, Event{
		ID:     uuid.NewString(),
		Kind:   kind,
		StepID: stepID,
		Detail: detail,
		At:     now,
	})
	in.UpdatedAt = now
}

// merge copies values into instance data, overwriting existing keys.
func (in *Instance) merge(values map[string]any) {
	if in.Data == nil {
		in.Data = make(map[string]any)
	}
	maps.Copy(in.Data, values)
}

// Clone returns a snapshot safe to hand to callers. Data values are
// copied shallowly; history entries are immutable by convention.
func (in *Instance) Clone() *Instance {
	out := *in
	out.Data = maps.Clone(in.Data)
	out.History = slices.Clone(in.History)
	return &out
}
