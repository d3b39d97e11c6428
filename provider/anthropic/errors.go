package anthropic

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/sitewise/taskcore"
)

// wrapError converts timeouts, transport failures and backend-side
// status codes into a taskcore.ProviderUnavailableError. Request errors
// the caller must correct pass through unchanged.
func (c *Client) wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return c.unavailable(op, 0, err)
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return c.unavailable(op, 0, err)
	}

	if unavailableStatus(apiErr.StatusCode) {
		return c.unavailable(op, apiErr.StatusCode, err)
	}
	return err
}

func (c *Client) unavailable(op string, code int, cause error) error {
	return &taskcore.ProviderUnavailableError{
		ProviderID: c.providerID,
		Op:         op,
		StatusCode: code,
		Cause:      cause,
	}
}

// unavailableStatus reports whether an HTTP status means the backend
// cannot currently serve requests.
func unavailableStatus(code int) bool {
	return code == 408 || code == 429 || (code >= 500 && code < 600)
}
