package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Fallback reasons reported when a model failure sends a quiz, tutor
// reply or interview question to the offline generator.
const (
	ReasonRateLimited     = "rate_limited"
	ReasonInvalidResponse = "invalid_response"
	ReasonUnavailable     = "unavailable"
	ReasonTruncated       = "truncated"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider did not say.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("model rate limited, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("model rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error          { return e.Err }
func (e *ErrRateLimit) FallbackReason() string { return ReasonRateLimited }

// ErrInvalidResponse means the model answered, but not with something
// usable: an empty tutor reply or quiz JSON that fails its schema.
// Content holds what came back.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("unusable model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error          { return e.Err }
func (e *ErrInvalidResponse) FallbackReason() string { return ReasonInvalidResponse }

// ErrProviderUnavailable covers outages, auth failures and an exhausted
// mock script.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "model provider unavailable"
	}
	return fmt.Sprintf("model provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error          { return e.Err }
func (e *ErrProviderUnavailable) FallbackReason() string { return ReasonUnavailable }

// ErrMaxTokensExceeded is a reply cut off at MaxTokens. A half-written
// quiz is never usable, so this is not retried.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("model reply truncated after %d bytes", len(e.Content))
}

func (e *ErrMaxTokensExceeded) FallbackReason() string { return ReasonTruncated }

// Reason returns the fallback reason carried by err, or "" when err did
// not come from a provider.
func Reason(err error) string {
	var r interface{ FallbackReason() string }
	if errors.As(err, &r) {
		return r.FallbackReason()
	}
	return ""
}
