package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/seenimoa/marketdesk/internal/config"
)

// Router sends each request to a registered provider. A request naming a
// Claude model goes to Anthropic when it is registered; everything else goes
// to the primary provider.
type Router struct {
	mu        sync.RWMutex
	providers map[string]Generator
	primary   string
}

// NewRouter creates an empty router with the given primary provider name.
func NewRouter(primary string) *Router {
	return &Router{providers: make(map[string]Generator), primary: primary}
}

// RegisterProvider adds or replaces a provider under its Name.
func (r *Router) RegisterProvider(g Generator) {
	r.mu.Lock()
	r.providers[g.Name()] = g
	r.mu.Unlock()
}

// ProviderNames returns the registered provider names in sorted order.
func (r *Router) ProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Router) Name() string { return "router" }

// Generate picks a provider for req and forwards the call.
func (r *Router) Generate(ctx context.Context, req Request) (*Response, error) {
	g, err := r.pick(req.Model)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, req)
}

func (r *Router) pick(model string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if IsAnthropicModel(model) {
		if g, ok := r.providers[ProviderAnthropic]; ok {
			return g, nil
		}
		return nil, fmt.Errorf("%w: model %q needs the anthropic provider", ErrNoAPIKey, model)
	}
	if g, ok := r.providers[r.primary]; ok {
		return g, nil
	}
	for _, name := range []string{ProviderOpenAI, ProviderAnthropic} {
		if g, ok := r.providers[name]; ok {
			return g, nil
		}
	}
	return nil, ErrNoProviders
}

// NewFromConfig builds a router with every provider that has a key, each
// behind its own breaker. A missing key is not an error here: the router
// reports ErrNoProviders at call time so the rest of the service still runs.
func NewFromConfig(cfg config.LLMConfig, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	opts := Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        cfg.TopP,
		Timeout:     cfg.Timeout,
	}
	r := NewRouter(cfg.Provider)

	if p, err := NewOpenAI(cfg.APIKey, cfg.BaseURL, opts); err == nil {
		r.RegisterProvider(NewBreaker(p, DefaultBreakerConfig(), logger))
	} else {
		logger.Debug("openai-compatible provider disabled", slog.String("reason", err.Error()))
	}
	if p, err := NewAnthropic(cfg.AnthropicKey, "", opts); err == nil {
		r.RegisterProvider(NewBreaker(p, DefaultBreakerConfig(), logger))
	} else {
		logger.Debug("anthropic provider disabled", slog.String("reason", err.Error()))
	}

	logger.Info("text generation providers", slog.Any("providers", r.ProviderNames()), slog.String("primary", cfg.Provider))
	return r
}
