// Package llm provides the text generation gateway used by the analysis
// endpoints. It wraps an OpenAI-compatible chat completion API (Groq by
// default) and the Anthropic Messages API behind one Generator interface,
// with a circuit breaker in front of each provider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names as used in configuration and metrics.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Common errors.
var (
	ErrNoAPIKey      = errors.New("llm: API key not configured")
	ErrRateLimit     = errors.New("llm: rate limit exceeded")
	ErrProviderDown  = errors.New("llm: provider unavailable")
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrNoProviders   = errors.New("llm: no providers configured")
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn of conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is one generation call: a system instruction, optional prior
// turns, and the new user prompt.
type Request struct {
	System  string
	History []Message
	Prompt  string

	// Model overrides the provider's configured model when set.
	Model string
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the provider's reply.
type Response struct {
	Content      string        `json:"content"`
	FinishReason string        `json:"finish_reason,omitempty"`
	Usage        Usage         `json:"usage"`
	Model        string        `json:"model"`
	Provider     string        `json:"provider"`
	Latency      time.Duration `json:"latency"`
}

// Generator produces text for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Options holds the sampling settings shared by the providers.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
	Timeout     time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Model:       "qwen/qwen3-32b",
		Temperature: 0.7,
		MaxTokens:   4096,
		TopP:        1,
		Timeout:     120 * time.Second,
	}
}

func (o Options) model(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return o.Model
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// String returns a short human-readable summary of the response.
func (r *Response) String() string {
	truncated := r.Content
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	return fmt.Sprintf("[%s/%s] %q, %d tokens, %v",
		r.Provider, r.Model, truncated, r.Usage.TotalTokens, r.Latency.Round(time.Millisecond))
}
