package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single seam between the services and an LLM vendor.
type Provider interface {
	// Generate sends a prompt and returns the model output. When the
	// request carries a Schema the returned Content is validated JSON;
	// otherwise it is the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// Schema, when set, asks for JSON output and validates it locally.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness. Zero leaves the vendor default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema and keys the compiled-schema cache.
	Name string

	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	// Envelope lists wrapper keys some models put around the payload,
	// e.g. {"quizData": {...}}. A single-key object whose key is listed
	// here is unwrapped before validation.
	Envelope []string
}

// Response holds the LLM's output.
type Response struct {
	Content json.RawMessage

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Text returns the content as a plain string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds the common single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}
