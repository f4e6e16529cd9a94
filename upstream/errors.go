package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FailureKind classifies why a call to a companion service failed.
type FailureKind string

const (
	KindTimeout   FailureKind = "timeout"
	KindTransport FailureKind = "transport"
	KindStatus    FailureKind = "status"
	KindDecode    FailureKind = "decode"
)

// Error describes a failed call to the interview or summarizer service.
type Error struct {
	Kind   FailureKind
	Op     string // e.g. "POST /api/start-interview"
	Status int    // set when Kind is KindStatus
	Body   string // upstream response body for KindStatus
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.Status, e.Body)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, or "" if err is not an *Error.
func KindOf(err error) FailureKind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ue *Error
	if errors.As(err, &ue) && ue.Kind == KindStatus {
		return ue.Status
	}
	return 0
}

// ShouldFallback reports whether a summarizer failure means "service not
// there": a timeout, a transport or decode error, a 404 or any 5xx.
// Other 4xx answers are the caller's fault and are passed through.
func ShouldFallback(err error) bool {
	if err == nil {
		return false
	}
	var ue *Error
	if !errors.As(err, &ue) {
		return true
	}
	if ue.Kind != KindStatus {
		return true
	}
	return ue.Status == http.StatusNotFound || ue.Status >= 500
}

// AnyFailure is the interview policy: every failure falls back.
func AnyFailure(err error) bool {
	return err != nil
}

func classify(op string, err error) *Error {
	kind := KindTransport
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
