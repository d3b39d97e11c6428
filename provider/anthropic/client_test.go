package anthropic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sitewise/taskcore"
)

func TestEmbedUnsupported(t *testing.T) {
	c := &Client{providerID: "anthropic"}
	_, err := c.Embed(context.Background(), "any", []string{"text"})
	assert.ErrorIs(t, err, taskcore.ErrUnsupported)
}

func TestWrapError(t *testing.T) {
	c := &Client{providerID: "claude-primary"}

	t.Run("deadline becomes provider unavailable", func(t *testing.T) {
		err := c.wrapError("generate", context.DeadlineExceeded)
		assert.True(t, taskcore.IsProviderUnavailable(err))

		var pu *taskcore.ProviderUnavailableError
		assert.ErrorAs(t, err, &pu)
		assert.Equal(t, "claude-primary", pu.ProviderID)
	})

	t.Run("cancellation passes through", func(t *testing.T) {
		err := c.wrapError("generate", context.Canceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, taskcore.IsProviderUnavailable(err))
	})

	t.Run("transport failure becomes provider unavailable", func(t *testing.T) {
		err := c.wrapError("generate", errors.New("connection reset by peer"))
		assert.True(t, taskcore.IsProviderUnavailable(err))
	})
}
