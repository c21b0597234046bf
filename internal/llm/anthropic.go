package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when the configured model is not a Claude model.
const DefaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Anthropic generates text through the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	opts   Options
}

// NewAnthropic creates an Anthropic generator. baseURL is only set in tests.
func NewAnthropic(apiKey, baseURL string, opts Options) (*Anthropic, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if !IsAnthropicModel(opts.Model) {
		opts.Model = DefaultAnthropicModel
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(opts.Timeout),
		option.WithMaxRetries(1),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	return &Anthropic{client: anthropic.NewClient(reqOpts...), opts: opts}, nil
}

func (p *Anthropic) Name() string { return ProviderAnthropic }

// Generate sends one Messages API request and joins the text blocks of the
// reply. Non-Claude model overrides are ignored.
func (p *Anthropic) Generate(ctx context.Context, req Request) (*Response, error) {
	model := p.opts.Model
	if IsAnthropicModel(req.Model) {
		model = req.Model
	}
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(p.opts.MaxTokens),
		Messages:    toAnthropicMessages(req),
		Temperature: anthropic.Float(p.opts.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return nil, ErrEmptyResponse
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &Response{
		Content:      b.String(),
		FinishReason: string(msg.StopReason),
		Usage:        Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
		Model:        coalesce(string(msg.Model), model),
		Provider:     ProviderAnthropic,
		Latency:      time.Since(start),
	}, nil
}

// IsAnthropicModel reports whether a model name belongs to the Claude family.
func IsAnthropicModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "claude")
}

// The Messages API has no system role inside the turn list and requires the
// first turn to come from the user.
func toAnthropicMessages(req Request) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, m := range req.History {
		switch m.Role {
		case RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			if len(msgs) == 0 {
				continue
			}
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimit, err)
		case apiErr.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrNoAPIKey, err)
		case apiErr.StatusCode >= 500:
			return fmt.Errorf("%w: %v", ErrProviderDown, err)
		}
	}
	return fmt.Errorf("anthropic: %w", err)
}
