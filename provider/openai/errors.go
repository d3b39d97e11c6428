package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"

	"github.com/sitewise/taskcore"
)

// wrapError converts timeouts, transport failures and backend-side
// status codes into a taskcore.ProviderUnavailableError. Request errors
// the caller must correct (bad model name, malformed input) pass through
// unchanged.
func (c *Client) wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return c.unavailable(op, err)
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		// No API error means the request never got a response: DNS,
		// connection refused, TLS. The backend is unreachable.
		return c.unavailable(op, err)
	}

	if unavailableStatus(apiErr.StatusCode) {
		return &taskcore.ProviderUnavailableError{
			ProviderID: c.providerID,
			Op:         op,
			StatusCode: apiErr.StatusCode,
			Cause:      err,
		}
	}
	return err
}

func (c *Client) unavailable(op string, cause error) error {
	return &taskcore.ProviderUnavailableError{ProviderID: c.providerID, Op: op, Cause: cause}
}

// unavailableStatus reports whether an HTTP status means the backend
// cannot currently serve requests.
func unavailableStatus(code int) bool {
	return code == 408 || code == 429 || (code >= 500 && code < 600)
}
