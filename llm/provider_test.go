package llm

import (
	"context"
	"testing"
	"time"
)

func TestConfigDiscover(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		provider string
		ok       bool
	}{
		{"nothing configured", Config{}, "", false},
		{"explicit none", Config{Provider: "none", Gemini: GeminiConfig{APIKey: "g"}}, "none", false},
		{"gemini wins", Config{Gemini: GeminiConfig{APIKey: "g"}, OpenAI: OpenAIConfig{APIKey: "o"}}, "gemini", true},
		{"openai second", Config{OpenAI: OpenAIConfig{APIKey: "o"}, Anthropic: AnthropicConfig{APIKey: "a"}}, "openai", true},
		{"anthropic last", Config{Anthropic: AnthropicConfig{APIKey: "a"}}, "anthropic", true},
		{"explicit kept", Config{Provider: "mock"}, "mock", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.cfg.Discover()
			if ok != tt.ok || got.Provider != tt.provider {
				t.Errorf("Discover() = (%q, %v), want (%q, %v)", got.Provider, ok, tt.provider, tt.ok)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Provider: "openai"}).Validate(); err == nil {
		t.Error("expected missing key error")
	}
	if err := (Config{Provider: "bogus"}).Validate(); err == nil {
		t.Error("expected unknown provider error")
	}
	if err := (Config{Provider: "mock"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewProvider_NoneConfigured(t *testing.T) {
	p, err := NewProvider(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil provider, got %T", p)
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input    string
		models   map[string]string
		expected string
	}{
		{"gemini-flash", geminiModels, "gemini-2.0-flash"},
		{"gemini-2.0-flash", geminiModels, "gemini-2.0-flash"},
		{"claude-haiku", anthropicModels, "claude-haiku-4-5-20251001"},
		{"gpt-4o-mini", openaiModels, "gpt-4o-mini"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, tt.models); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"answers": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []any{"questions", "answers"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if schema.Properties["questions"].Items.Type != "STRING" {
		t.Fatalf("expected STRING items, got %s", schema.Properties["questions"].Items.Type)
	}
	if schema.Properties["answers"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER items, got %s", schema.Properties["answers"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 5*time.Millisecond)
	start := time.Now()
	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected deadline error")
	}
	if time.Since(start) > time.Second {
		t.Fatal("timeout was not applied")
	}
	if WithTimeout(slowProvider{}, 0) != (slowProvider{}) {
		t.Fatal("zero timeout should return the provider unchanged")
	}
}
