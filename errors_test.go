package taskcore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderUnavailableError(t *testing.T) {
	t.Run("message includes provider and op", func(t *testing.T) {
		err := &ProviderUnavailableError{ProviderID: "openai", Op: "generate", Cause: errors.New("dial tcp: timeout")}
		assert.Contains(t, err.Error(), "openai")
		assert.Contains(t, err.Error(), "generate")
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("message without cause", func(t *testing.T) {
		err := &ProviderUnavailableError{ProviderID: "local", Op: "health"}
		assert.Equal(t, "provider local unavailable during health", err.Error())
	})

	t.Run("unwrap exposes cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := &ProviderUnavailableError{ProviderID: "p", Op: "embed", Cause: cause}
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("IsProviderUnavailable sees wrapped errors", func(t *testing.T) {
		inner := &ProviderUnavailableError{ProviderID: "p", Op: "generate"}
		wrapped := fmt.Errorf("route failed: %w", inner)
		assert.True(t, IsProviderUnavailable(wrapped))
		assert.False(t, IsProviderUnavailable(errors.New("plain")))
		assert.False(t, IsProviderUnavailable(nil))
	})
}

func TestNotFoundError(t *testing.T) {
	t.Run("message names kind and id", func(t *testing.T) {
		err := &NotFoundError{Kind: KindModel, ID: "gpt-4o"}
		assert.Equal(t, "model not found: gpt-4o", err.Error())
	})

	t.Run("predicates", func(t *testing.T) {
		err := fmt.Errorf("resolve: %w", &NotFoundError{Kind: KindAssignment, ID: "rfi-analyst"})
		assert.True(t, IsNotFound(err))
		assert.True(t, IsNotFoundKind(err, KindAssignment))
		assert.False(t, IsNotFoundKind(err, KindProvider))
		assert.False(t, IsNotFound(errors.New("plain")))
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Entity: "assignment", ID: "rfi-analyst", Reason: "fallback equals primary"}
	require.EqualError(t, err, "invalid assignment rfi-analyst: fallback equals primary")
	assert.True(t, IsValidation(fmt.Errorf("register: %w", err)))
	assert.False(t, IsValidation(errors.New("plain")))
}
