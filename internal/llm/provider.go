package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider generates tutor content from a prompt. Implementations wrap one
// vendor SDK each; decorators add retry and event logging.
type Provider interface {
	// Generate sends req to the model. With req.Schema set the returned
	// Content is JSON validated against it; without a schema Content is the
	// model's plain text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier requests are sent to.
	ModelID() string
}

// Request describes a single generation call.
type Request struct {
	// System sets the model's role, e.g. "You are a patient tutor".
	System string

	// Messages is the conversation so far. Lessons, notes and assessments
	// send one user message; chat may send the recent transcript.
	Messages []Message

	// Schema requests structured output. Nil means plain text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who sent a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds a Request holding a single user message.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// Schema is the JSON Schema a structured response must satisfy.
type Schema struct {
	// Name is sent as the schema or tool name, e.g. "assessment".
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any

	// Strict asks providers that support it to enforce the schema during
	// decoding. Only valid for schemas that close every object with
	// additionalProperties false.
	Strict bool
}

// Response is the model's output for one Request.
type Response struct {
	// Content is validated JSON for structured requests and plain text
	// otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that served the request, which may differ from
	// the configured alias.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Text returns Content as a trimmed string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Content))
}

// Decode unmarshals structured Content into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return fmt.Errorf("decode: nil response")
	}
	if err := json.Unmarshal(r.Content, v); err != nil {
		return &ErrInvalidResponse{Content: r.Content, Err: err}
	}
	return nil
}

// Usage is token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
