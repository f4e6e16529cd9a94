package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → timeout → retry → logging → vendor.
//
// It returns (nil, nil) when no provider is configured; callers treat a
// nil Provider as "use the local fallback".
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	cfg, ok := cfg.Discover()
	if !ok {
		slog.Warn("No LLM provider configured, AI features will use local fallbacks")
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "mock":
		// An empty mock fails every call, which exercises the fallbacks.
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	slog.Info("LLM provider initialized", "provider", cfg.Provider, "model", base.ModelID())

	logged := WithLogging(base, cfg.Provider)
	retried := WithRetry(logged, cfg.Retry)
	return WithTimeout(retried, cfg.Timeout), nil
}
