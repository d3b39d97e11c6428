// Package workflow drives multi-step collaborative processes to
// completion: ordered and branching steps, human tasks and approvals,
// waiting states and cancellation.
//
// A Definition describes the step graph. The Manager creates instances
// from definitions, advances them through automated steps until they
// reach a human-facing step or a terminal state, and records every
// transition in an append-only history. Instances are persisted through
// an InstanceStore on every state change, so a reloaded instance
// resumes exactly where it stopped.
package workflow
