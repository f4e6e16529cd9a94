package upstream

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	fallback := func(error) string { return "local" }

	t.Run("upstream success", func(t *testing.T) {
		out, err := Resolve(ctx, func(context.Context) (string, error) { return "remote", nil }, AnyFailure, fallback, "warn")
		require.NoError(t, err)
		assert.Equal(t, "remote", out.Value)
		assert.Equal(t, SourceUpstream, out.Source)
		assert.Empty(t, out.Warning)
		assert.Empty(t, out.Reason())
	})

	t.Run("fallback on failure", func(t *testing.T) {
		cause := &Error{Kind: KindTimeout, Op: "POST /x", Err: context.DeadlineExceeded}
		out, err := Resolve(ctx, func(context.Context) (string, error) { return "", cause }, AnyFailure, fallback, "warn")
		require.NoError(t, err)
		assert.Equal(t, "local", out.Value)
		assert.True(t, out.IsFallback())
		assert.Equal(t, "warn", out.Meta().Warning)
		assert.Equal(t, "timeout", out.Reason())
		assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	})

	t.Run("non-fallback error returned", func(t *testing.T) {
		cause := &Error{Kind: KindStatus, Status: 400, Body: "bad"}
		_, err := Resolve(ctx, func(context.Context) (string, error) { return "", cause }, ShouldFallback, fallback, "warn")
		assert.Equal(t, 400, StatusOf(err))
	})
}

func TestOutcomeReason(t *testing.T) {
	assert.Equal(t, "unconfigured", Fallback(1, "w", nil).Reason())
	assert.Equal(t, "unavailable", Fallback(1, "w", errors.New("llm down")).Reason())
	assert.Equal(t, "", Local(1).Reason())
	assert.Equal(t, SourceLocal, Local(1).Meta().Source)
}

type quotaError struct{}

func (quotaError) Error() string { return "quota exhausted" }
func (quotaError) FallbackReason() string { return "rate_limited" }

func TestOutcomeReasonFromError(t *testing.T) {
	wrapped := fmt.Errorf("generate quiz: %w", quotaError{})
	assert.Equal(t, "rate_limited", Fallback(1, "w", wrapped).Reason())
}
