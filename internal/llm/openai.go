package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIBaseURL points at Groq's OpenAI-compatible endpoint.
const DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"

// OpenAI generates text through any OpenAI-compatible chat completion API.
type OpenAI struct {
	client *openai.Client
	opts   Options
}

// NewOpenAI creates an OpenAI-compatible generator. An empty baseURL selects
// Groq.
func NewOpenAI(apiKey, baseURL string, opts Options) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), opts: opts}, nil
}

func (p *OpenAI) Name() string { return ProviderOpenAI }

// Generate sends one non-streaming chat completion request.
func (p *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	model := p.opts.model(req)
	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(req),
		Temperature: float32(p.opts.Temperature),
		MaxTokens:   p.opts.MaxTokens,
		TopP:        float32(p.opts.TopP),
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	choice := resp.Choices[0]
	return &Response{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Model:    coalesce(resp.Model, model),
		Provider: ProviderOpenAI,
		Latency:  time.Since(start),
	}, nil
}

func toOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.History {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimit, apiErr.Message)
		case apiErr.HTTPStatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrNoAPIKey, apiErr.Message)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: %s", ErrProviderDown, apiErr.Message)
		}
	}
	return fmt.Errorf("openai: %w", err)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
