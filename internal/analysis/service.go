// Package analysis turns portfolios, headlines, articles and chat turns into
// prompts for the text generation gateway and returns cleaned Markdown.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/marketdesk/internal/config"
	"github.com/seenimoa/marketdesk/internal/llm"
	"github.com/seenimoa/marketdesk/internal/logging"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// ErrInvalidRequest marks a request the service refuses before calling a provider.
var ErrInvalidRequest = errors.New("analysis: invalid request")

// Service runs the four analysis operations.
type Service struct {
	gen       llm.Generator
	articles  ArticleFetcher
	fetchBody bool
	bodyLimit int
	logger    *slog.Logger
	newID     func() string
}

// NewService creates an analysis service. articles may be nil, in which case
// article analysis always works from the title and summary.
func NewService(gen llm.Generator, articles ArticleFetcher, cfg config.AnalysisConfig, logger *slog.Logger) *Service {
	return &Service{
		gen:       gen,
		articles:  articles,
		fetchBody: cfg.FetchArticleBody && articles != nil,
		bodyLimit: cfg.ArticleBodyLimit,
		logger:    logging.OrDefault(logger),
		newID:     uuid.NewString,
	}
}

// Portfolio analyses a set of holdings against the requested strategy.
func (s *Service) Portfolio(ctx context.Context, req models.PortfolioAnalysisRequest) (*models.AnalysisResponse, error) {
	if len(req.Portfolio) == 0 {
		return nil, fmt.Errorf("%w: portfolio is empty", ErrInvalidRequest)
	}
	return s.generate(ctx, "portfolio", llm.Request{
		System: withLanguage(portfolioSystem, req.Language),
		Prompt: portfolioPrompt(req),
		Model:  req.Model,
	})
}

// News summarises a batch of headlines.
func (s *Service) News(ctx context.Context, req models.NewsAnalysisRequest) (*models.AnalysisResponse, error) {
	items := make([]models.NewsBrief, 0, len(req.News))
	for _, it := range req.News {
		if strings.TrimSpace(it.Title) != "" {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no news items", ErrInvalidRequest)
	}
	return s.generate(ctx, "news", llm.Request{
		System: withLanguage(newsSystem, req.Language),
		Prompt: newsPrompt(items),
		Model:  req.Model,
	})
}

// Article explains one article. When body fetching is enabled the page text
// is downloaded and truncated; any fetch failure falls back to the title and
// summary carried in the request.
func (s *Service) Article(ctx context.Context, req models.ArticleAnalysisRequest) (*models.AnalysisResponse, error) {
	a := req.Article
	if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Link) == "" {
		return nil, fmt.Errorf("%w: article needs a title or link", ErrInvalidRequest)
	}
	return s.generate(ctx, "article", llm.Request{
		System: withLanguage(articleSystem, req.Language),
		Prompt: articlePrompt(a, s.articleBody(ctx, a)),
		Model:  req.Model,
	})
}

func (s *Service) articleBody(ctx context.Context, a models.NewsBrief) string {
	fallback := strings.TrimSpace(strings.TrimSpace(a.Title) + "\n\n" + strings.TrimSpace(a.Summary))
	if !s.fetchBody || a.Link == "" {
		return fallback
	}
	text, err := s.articles.Fetch(ctx, a.Link)
	if err != nil {
		s.logger.Warn("article fetch failed, using summary",
			slog.String("link", a.Link), slog.String("error", err.Error()))
		return fallback
	}
	return truncateRunes(text, s.bodyLimit)
}

// Chat answers a message given prior turns. Only user and assistant turns
// with content are forwarded.
func (s *Service) Chat(ctx context.Context, req models.ChatRequest) (*models.AnalysisResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidRequest)
	}
	history := make([]llm.Message, 0, len(req.History))
	for _, m := range req.History {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch llm.Role(m.Role) {
		case llm.RoleUser, llm.RoleAssistant:
			history = append(history, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
		}
	}
	return s.generate(ctx, "chat", llm.Request{
		System:  withLanguage(chatSystem, req.Language),
		History: history,
		Prompt:  req.Message,
		Model:   req.Model,
	})
}

func (s *Service) generate(ctx context.Context, kind string, req llm.Request) (*models.AnalysisResponse, error) {
	id := s.newID()
	logger := logging.WithRequestID(ctx, s.logger).With(
		slog.String("generation_id", id),
		slog.String("kind", kind),
		slog.String("model", req.Model))

	start := time.Now()
	resp, err := s.gen.Generate(ctx, req)
	if err != nil {
		logger.Error("generation failed", slog.Duration("duration", time.Since(start)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("analysis %s: %w", kind, err)
	}

	text := llm.StripThinking(resp.Content)
	if text == "" {
		logger.Error("generation returned only reasoning", slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("analysis %s: %w", kind, llm.ErrEmptyResponse)
	}

	logger.Info("generation completed",
		slog.String("provider", resp.Provider),
		slog.Int("tokens", resp.Usage.TotalTokens),
		slog.Duration("duration", time.Since(start)))
	return &models.AnalysisResponse{Analysis: text}, nil
}

// compile-time check
var _ ArticleFetcher = (*ReadabilityFetcher)(nil)
