package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seenimoa/marketdesk/api"
	"github.com/seenimoa/marketdesk/internal/analysis"
	"github.com/seenimoa/marketdesk/internal/calendar"
	"github.com/seenimoa/marketdesk/internal/config"
	"github.com/seenimoa/marketdesk/internal/infra"
	"github.com/seenimoa/marketdesk/internal/llm"
	"github.com/seenimoa/marketdesk/internal/marketdata"
	"github.com/seenimoa/marketdesk/internal/news"
	"github.com/seenimoa/marketdesk/internal/prices"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// app holds the wired components shared by the server and the CLI commands.
type app struct {
	market   *marketdata.Yahoo
	news     *news.Aggregator
	prices   *prices.Service
	calendar *calendar.Provider
	analysis *analysis.Service
	redis    *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *app) deps() api.Deps {
	return api.Deps{
		News:     a.news,
		Prices:   a.prices,
		Calendar: a.calendar,
		Market:   a.market,
		Analyzer: a.analysis,
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	if cfg.Cache.Backend == "redis" {
		client, err := infra.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
		logger.Info("using redis cache", slog.String("url", cfg.Cache.RedisURL))
	}

	a.market = marketdata.NewYahoo(marketdata.YahooOptions{
		BaseURL:       cfg.Market.BaseURL,
		Timeout:       cfg.Market.RequestTimeout,
		RatePerSecond: cfg.Market.RatePerSecond,
		Burst:         cfg.Market.Burst,
		Logger:        logger,
	})

	var newsSource marketdata.NewsSource = a.market
	if cfg.News.Source == "rss" {
		newsSource = marketdata.NewRSSNews(cfg.Market.RSSURL, cfg.Market.RequestTimeout, cfg.Market.RatePerSecond, logger)
	}
	a.news = news.NewAggregator(newsSource,
		infra.NewStore[[]models.NewsItem](a.redis, "marketdesk:news:", cfg.News.TTL, cfg.News.MaxEntries, logger),
		cfg.News.ChunkSize, logger)

	a.prices = prices.NewService(a.market,
		infra.NewStore[prices.Entry](a.redis, "marketdesk:price:", cfg.Prices.TTL, cfg.Prices.MaxEntries, logger),
		infra.NewStore[models.MiniChart](a.redis, "marketdesk:chart:", cfg.Prices.ChartTTL, cfg.Prices.MaxEntries, logger),
		logger)

	cal, err := buildCalendar(cfg.Calendar, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.calendar = cal

	gen := llm.NewFromConfig(cfg.LLM, logger)
	a.analysis = analysis.NewService(gen, analysis.NewReadabilityFetcher(cfg.Market.RequestTimeout), cfg.Analysis, logger)

	return a, nil
}

func buildCalendar(cfg config.CalendarConfig, logger *slog.Logger) (*calendar.Provider, error) {
	static, err := calendar.NewStatic(time.Duration(cfg.FallbackWindow) * 24 * time.Hour)
	if err != nil {
		return nil, fmt.Errorf("load fallback calendar: %w", err)
	}

	cache := calendar.NewFileCache(cfg.CacheFile, cfg.CacheTTL)
	tiers := []calendar.Tier{{Source: cache}}
	if !cfg.DisableScraping {
		tiers = append(tiers, calendar.Tier{
			Source: calendar.NewScraper(calendar.ScraperOptions{
				BaseURL:        cfg.ScrapeBaseURL,
				MonthsBack:     cfg.MonthsBack,
				MonthsAhead:    cfg.MonthsAhead,
				Currencies:     cfg.Currencies,
				Strict:         cfg.Strict,
				StrictCurrency: cfg.StrictCurrency,
				Timeout:        cfg.RequestTimeout,
				Throttle:       cfg.Throttle,
				Logger:         logger,
			}),
			Persist: true,
		})
	}
	return calendar.NewProvider(cache, static, logger, tiers...), nil
}
