package providers

import (
	"errors"
	"fmt"
)

// ErrNotConfigured means the provider's API key is missing from the
// environment. Handlers translate it to a 500 without calling upstream.
var ErrNotConfigured = errors.New("provider not configured")

// RateLimitError reports an upstream 429. RetryAfter is in seconds and may
// be zero when the upstream gave no hint.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded, retry in %ds", e.RetryAfter)
	}
	return "rate limit exceeded"
}

// InvalidRequestError carries an upstream 400 message back to the caller
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "invalid request"
}
