package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// retryingProvider retries model calls that failed for reasons a second
// attempt can fix. Every quiz, tutor and interview call goes through it.
type retryingProvider struct {
	next   Provider
	cfg    RetryConfig
	jitter func() float64
}

// WithRetry wraps p so transient failures are retried with capped
// exponential backoff.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if cfg.MaxWait < cfg.InitialWait {
		cfg.MaxWait = cfg.InitialWait
	}
	return &retryingProvider{next: p, cfg: cfg, jitter: rand.Float64}
}

func (p *retryingProvider) ModelID() string {
	return p.next.ModelID()
}

func (p *retryingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	reasked := false
	for attempt := 1; ; attempt++ {
		resp, err := p.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= p.cfg.MaxAttempts || !retryable(err, &reasked) {
			return nil, err
		}

		wait := p.delay(attempt, err)
		slog.Warn("Retrying model call",
			"purpose", PurposeFrom(ctx),
			"attempt", attempt,
			"wait", wait,
			"reason", Reason(err),
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryable reports whether err is worth another call. A malformed
// answer is re-asked only once.
func retryable(err error, reasked *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var truncated *ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		return false
	}

	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		if *reasked {
			return false
		}
		*reasked = true
	}
	return true
}

// delay is how long to wait after the given failed attempt (1-based).
// A provider's Retry-After is honored up to MaxWait.
func (p *retryingProvider) delay(attempt int, err error) time.Duration {
	var limited *ErrRateLimit
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		return min(limited.RetryAfter, p.cfg.MaxWait)
	}

	wait := float64(p.cfg.InitialWait) * math.Pow(p.cfg.Multiplier, float64(attempt-1))
	wait = math.Min(wait, float64(p.cfg.MaxWait))
	// Jitter of up to 20% either way.
	wait *= 1 + 0.2*(2*p.jitter()-1)
	return time.Duration(max(wait, 0))
}
