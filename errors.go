package taskcore

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a required input slice is empty.
var ErrEmptyInput = errors.New("empty input")

// ErrUnsupported is returned when a backend does not implement the
// requested capability (e.g. embeddings on a chat-only backend).
var ErrUnsupported = errors.New("operation not supported by backend")

// ProviderUnavailableError reports that a backend call failed at the
// transport layer: a timeout, a connection failure, or a non-2xx status
// that indicates the backend cannot currently serve requests. It is the
// only error class the router treats as grounds for a fallback hop.
type ProviderUnavailableError struct {
	// ProviderID identifies the provider whose call failed.
	ProviderID string

	// Op is the operation that failed: "generate", "embed" or "health".
	Op string

	// StatusCode is the HTTP status when applicable, 0 otherwise.
	StatusCode int

	// Cause is the underlying transport or API error.
	Cause error
}

// Error returns the error message.
func (e *ProviderUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s unavailable during %s: %v", e.ProviderID, e.Op, e.Cause)
	}
	return fmt.Sprintf("provider %s unavailable during %s", e.ProviderID, e.Op)
}

// Unwrap returns the underlying error.
func (e *ProviderUnavailableError) Unwrap() error { return e.Cause }

// IsProviderUnavailable reports whether err or any wrapped error is a
// ProviderUnavailableError.
func IsProviderUnavailable(err error) bool {
	var pu *ProviderUnavailableError
	return errors.As(err, &pu)
}

// NotFoundKind names the entity class a lookup missed.
type NotFoundKind string

// Entity classes resolvable through the registry.
const (
	KindAssignment NotFoundKind = "assignment"
	KindModel      NotFoundKind = "model"
	KindProvider   NotFoundKind = "provider"
)

// NotFoundError reports a configuration lookup miss.
type NotFoundError struct {
	Kind NotFoundKind
	ID   string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err or any wrapped error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsNotFoundKind reports whether err is a NotFoundError for the given
// entity class.
func IsNotFoundKind(err error, kind NotFoundKind) bool {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Kind == kind
	}
	return false
}

// ValidationError reports a registry mutation that would violate a
// catalog invariant (duplicate defaults, fallback equal to primary,
// dangling references).
type ValidationError struct {
	Entity string // "provider", "model" or "assignment"
	ID     string
	Reason string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, e.ID, e.Reason)
}

// IsValidation reports whether err or any wrapped error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
