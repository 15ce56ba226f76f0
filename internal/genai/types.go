// Package genai provides the completion collaborator.
//
// Architecture:
//   - Gemini: google.golang.org/genai (official SDK)
//   - xAI, OpenAI, Groq: github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Every implementation issues exactly one request per call. Non-success
// statuses and non-JSON bodies surface as *errors.UpstreamError carrying the
// raw body; a well-formed reply without choices yields NoResponse.
package genai

import (
	"context"
)

// NoResponse is returned in place of model text when the reply has no choices.
const NoResponse = "No response generated."

// serviceName labels completion calls in errors and metrics.
const serviceName = "completion"

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderXAI represents xAI's Grok API (OpenAI-compatible).
	ProviderXAI Provider = "xai"
	// ProviderOpenAI represents OpenAI's API.
	ProviderOpenAI Provider = "openai"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderXAI:    "https://api.x.ai/v1/",
	ProviderOpenAI: "https://api.openai.com/v1/",
	ProviderGroq:   "https://api.groq.com/openai/v1/",
}

// DefaultModel is used when no model is configured.
var DefaultModel = map[Provider]string{
	ProviderXAI:    "grok-3",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGroq:   "llama-3.3-70b-versatile",
	ProviderGemini: "gemini-2.5-flash",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat-completion conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Completer sends a conversation to a hosted model and returns its text.
type Completer interface {
	// Complete issues one completion request and returns the first choice's text,
	// or NoResponse when the reply carries none.
	Complete(ctx context.Context, messages []Message) (string, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
}

// Recorder receives per-call telemetry. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordUpstream(service string, duration float64, err error)
	RecordTokens(provider string, prompt, completion int64)
}

type nopRecorder struct{}

func (nopRecorder) RecordUpstream(string, float64, error) {}
func (nopRecorder) RecordTokens(string, int64, int64)     {}
