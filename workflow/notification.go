package workflow

import "context"

// Notification is a message produced by a notification step.
type Notification struct {
	InstanceID string
	StepID     string
	Recipient  string
	Message    string
}

// NotificationSink delivers notifications to people outside the
// orchestration core (email, chat, a site dashboard). Delivery failures
// are recorded in instance history but never fail the run.
type NotificationSink interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifyFunc adapts a function to the NotificationSink interface.
type NotifyFunc func(ctx context.Context, n Notification) error

func (f NotifyFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }
