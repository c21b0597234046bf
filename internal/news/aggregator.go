// Package news aggregates per-symbol news feeds into deduplicated,
// recency-sorted, short-lived cached lists for a category or symbol.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/marketdesk/internal/infra"
	"github.com/seenimoa/marketdesk/internal/marketdata"
	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// DefaultChunkSize is the number of extended symbols per page.
const DefaultChunkSize = 3

// maxConcurrentFetches bounds in-flight upstream calls for one aggregation.
const maxConcurrentFetches = 4

// sharedPassTimeout caps an aggregation pass detached from its callers.
const sharedPassTimeout = 30 * time.Second

// Query selects a news list. A non-empty Symbol overrides Category.
type Query struct {
	Category string
	Symbol   string
	Page     int
}

// Aggregator fans out to the news source for each symbol of a query and
// merges the results. Computed lists are cached per query key.
type Aggregator struct {
	source    marketdata.NewsSource
	cache     infra.Store[[]models.NewsItem]
	chunkSize int
	logger    *slog.Logger
	group     singleflight.Group
}

// NewAggregator creates an aggregator reading from source and caching in cache.
func NewAggregator(source marketdata.NewsSource, cache infra.Store[[]models.NewsItem], chunkSize int, logger *slog.Logger) *Aggregator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{source: source, cache: cache, chunkSize: chunkSize, logger: logger}
}

// Key returns the cache key for q after category and symbol normalization.
func (a *Aggregator) Key(q Query) string {
	if sym := strings.ToUpper(strings.TrimSpace(q.Symbol)); sym != "" {
		return fmt.Sprintf("symbol:%s|%d", sym, q.Page)
	}
	return fmt.Sprintf("category:%s|%d", ResolveCategory(q.Category), q.Page)
}

// Symbols returns the symbols q fans out to. An explicit symbol is a
// one-element set, so it only has a page 0.
func (a *Aggregator) Symbols(q Query) []string {
	if sym := strings.ToUpper(strings.TrimSpace(q.Symbol)); sym != "" {
		if q.Page > 0 {
			return []string{}
		}
		return []string{sym}
	}
	return PageSymbols(q.Category, q.Page, a.chunkSize)
}

// Aggregate returns the news list for q. It never fails: per-symbol errors
// drop that symbol and anything unexpected yields an empty list.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) []models.NewsItem {
	key := a.Key(q)
	if items, ok := a.cache.Get(ctx, key); ok {
		metrics.CacheLookup("news", true)
		return items
	}
	metrics.CacheLookup("news", false)

	// The shared pass outlives any single caller so one client going away
	// cannot empty the list handed to the others waiting on the same key.
	ch := a.group.DoChan(key, func() (any, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedPassTimeout)
		defer cancel()
		if items, ok := a.cache.Get(pctx, key); ok {
			return items, nil
		}
		items, ok := a.compute(pctx, a.Symbols(q))
		if ok && pctx.Err() == nil {
			a.cache.Set(pctx, key, items)
		}
		return items, nil
	})

	var items []models.NewsItem
	select {
	case res := <-ch:
		items, _ = res.Val.([]models.NewsItem)
	case <-ctx.Done():
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items
}

type fetchResult struct {
	symbol string
	items  []models.NewsItem
	err    error
}

// compute fetches and merges symbols. ok is false when the pass panicked,
// in which case the empty result must not be cached.
func (a *Aggregator) compute(ctx context.Context, symbols []string) (items []models.NewsItem, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("news aggregation panicked", "symbols", symbols, "panic", r)
			items, ok = []models.NewsItem{}, false
		}
	}()

	results := make([]fetchResult, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, sym := range symbols {
		g.Go(func() error {
			results[i] = a.fetchSymbol(gctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	return merge(results, a.logger), true
}

func (a *Aggregator) fetchSymbol(ctx context.Context, symbol string) (res fetchResult) {
	res.symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			res.items, res.err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	raw, err := a.source.News(ctx, symbol)
	if err != nil {
		res.err = err
		return res
	}
	res.items = make([]models.NewsItem, 0, len(raw))
	for _, r := range raw {
		if item, ok := Normalize(r); ok {
			res.items = append(res.items, item)
		}
	}
	return res
}

// merge dedups results in symbol order, first writer wins, and sorts by
// publish time descending. Items without a time sort last.
func merge(results []fetchResult, logger *slog.Logger) []models.NewsItem {
	seen := make(map[string]struct{})
	merged := []models.NewsItem{}
	for _, res := range results {
		if res.err != nil {
			metrics.UpstreamFailure(metrics.SourceNews)
			logger.Warn("news fetch failed", "symbol", res.symbol, "error", res.err)
			continue
		}
		for _, item := range res.items {
			key := item.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, item)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishTime > merged[j].PublishTime
	})
	return merged
}
