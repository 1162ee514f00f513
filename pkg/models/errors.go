package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks malformed caller input: empty concept, non-positive
// budget, empty pilot list.
var ErrInvalidInput = errors.New("invalid input")

// InvalidAgentResponseError means an LLM agent returned output that could not
// be coerced to its schema even after the retry.
type InvalidAgentResponseError struct {
	Role string
	Raw  string
	Err  error
}

func (e *InvalidAgentResponseError) Error() string {
	return fmt.Sprintf("invalid %s response: %v", e.Role, e.Err)
}

func (e *InvalidAgentResponseError) Unwrap() error { return e.Err }

// ProviderError is a generation-backend failure. Retryable failures (network,
// rate limit, 5xx) are recovered by exponential backoff; permanent ones
// (auth, invalid request, unsupported tier) drop the variation immediately.
type ProviderError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "transient"
	}
	return fmt.Sprintf("provider %s: %s failure: %v", e.Provider, kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
