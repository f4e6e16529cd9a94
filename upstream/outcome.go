package upstream

import (
	"context"
	"errors"
	"log/slog"
)

// Source says who produced a result.
type Source string

const (
	// SourceUpstream is a real answer from the companion service or LLM.
	SourceUpstream Source = "upstream"
	// SourceFallback is synthesized locally because the real producer failed.
	SourceFallback Source = "fallback"
	// SourceLocal is computed locally by design, e.g. a perfect quiz score.
	SourceLocal Source = "local"
)

// Meta is embedded in response bodies so clients can tell a real answer
// from a synthesized one without guessing.
type Meta struct {
	Source  Source `json:"source"`
	Warning string `json:"warning,omitempty"`
}

// Outcome is either a real upstream value or a local fallback, never an
// unlabeled mix of the two.
type Outcome[T any] struct {
	Value   T
	Source  Source
	Warning string
	// Err is why the fallback was taken. Nil for upstream outcomes.
	Err error
}

func Upstream[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Source: SourceUpstream}
}

func Local[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Source: SourceLocal}
}

func Fallback[T any](v T, warning string, cause error) Outcome[T] {
	return Outcome[T]{Value: v, Source: SourceFallback, Warning: warning, Err: cause}
}

func (o Outcome[T]) IsFallback() bool {
	return o.Source == SourceFallback
}

func (o Outcome[T]) Meta() Meta {
	return Meta{Source: o.Source, Warning: o.Warning}
}

// Reason is a short machine-readable cause for the fallback, suitable
// for a response header. Errors with a FallbackReason method, such as
// model provider failures, name their own reason.
func (o Outcome[T]) Reason() string {
	if !o.IsFallback() {
		return ""
	}
	var r interface{ FallbackReason() string }
	if errors.As(o.Err, &r) {
		return r.FallbackReason()
	}
	if kind := KindOf(o.Err); kind != "" {
		return string(kind)
	}
	if o.Err == nil {
		return "unconfigured"
	}
	return "unavailable"
}

// Resolve calls primary and, when it fails and shouldFallback agrees,
// substitutes fallback. Errors that must not fall back are returned.
func Resolve[T any](
	ctx context.Context,
	primary func(context.Context) (T, error),
	shouldFallback func(error) bool,
	fallback func(error) T,
	warning string,
) (Outcome[T], error) {
	v, err := primary(ctx)
	if err == nil {
		return Upstream(v), nil
	}
	if !shouldFallback(err) {
		return Outcome[T]{}, err
	}
	slog.Warn("Using local fallback", "kind", KindOf(err), "error", err)
	return Fallback(fallback(err), warning, err), nil
}
