// Package prices serves per-symbol price snapshots through a short-lived
// cache. Each symbol is resolved independently through a fallback chain:
// chart snapshot, then a two-day close history, then the full info lookup.
package prices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seenimoa/marketdesk/internal/infra"
	"github.com/seenimoa/marketdesk/internal/marketdata"
	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/pkg/models"
)

var (
	// ErrUpstreamUnavailable is returned when upstream could not be reached
	// for any symbol in a batch. Unknown symbols price as zero instead.
	ErrUpstreamUnavailable = errors.New("price data unavailable")
	// ErrNoSymbols is returned when a single-symbol lookup is given an empty symbol.
	ErrNoSymbols = errors.New("no symbol given")
)

// historyWindow is the close series consulted when the snapshot is incomplete.
const historyWindow = "2d"

// Entry is what the cache holds per symbol. Failed entries are cached too,
// so a persistently failing symbol is retried at most once per TTL.
type Entry struct {
	Snapshot models.PriceSnapshot `json:"snapshot"`
	Failed   bool                 `json:"failed,omitempty"`
	// Unreachable marks a failure where no step got an answer from
	// upstream, as opposed to upstream reporting an unknown symbol.
	Unreachable bool `json:"unreachable,omitempty"`
}

// Service resolves and caches price snapshots and mini charts.
type Service struct {
	source marketdata.PriceSource
	cache  infra.Store[Entry]
	charts infra.Store[models.MiniChart]
	logger *slog.Logger
}

// NewService creates a price service. charts may be nil to disable chart caching.
func NewService(source marketdata.PriceSource, cache infra.Store[Entry], charts infra.Store[models.MiniChart], logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, charts: charts, logger: logger}
}

// ParseSymbols splits a comma-separated list, trimming and upper-casing
// each symbol. Empty entries and repeats are dropped.
func ParseSymbols(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		sym := strings.ToUpper(strings.TrimSpace(part))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// Prices returns a snapshot for every symbol in the comma-separated list.
// A symbol that cannot be priced gets a zeroed snapshot. The call fails
// only when the context ends or every symbol in the batch failed.
func (s *Service) Prices(ctx context.Context, symbols string) (map[string]models.PriceSnapshot, error) {
	list := ParseSymbols(symbols)
	out := make(map[string]models.PriceSnapshot, len(list))
	if len(list) == 0 {
		return out, nil
	}

	unreachable := 0
	for _, sym := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := s.lookup(ctx, sym)
		if entry.Failed && entry.Unreachable {
			unreachable++
		}
		out[sym] = entry.Snapshot
	}
	if unreachable == len(list) {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, strings.Join(list, ","))
	}
	return out, nil
}

func (s *Service) lookup(ctx context.Context, sym string) Entry {
	if entry, ok := s.cache.Get(ctx, sym); ok {
		metrics.CacheLookup("prices", true)
		return entry
	}
	metrics.CacheLookup("prices", false)

	entry := s.resolve(ctx, sym)
	if ctx.Err() == nil {
		s.cache.Set(ctx, sym, entry)
	}
	return entry
}

// resolve walks the fallback chain for one symbol.
func (s *Service) resolve(ctx context.Context, sym string) Entry {
	reached := false
	answered := func(err error) {
		if err == nil || errors.Is(err, marketdata.ErrNotFound) {
			reached = true
		}
	}

	price, prev, err := s.source.Snapshot(ctx, sym)
	answered(err)
	if err != nil {
		metrics.UpstreamFailure(metrics.SourcePriceSnapshot)
		s.logger.Debug("price snapshot failed", "symbol", sym, "error", err)
	} else if price != nil && prev != nil {
		return Entry{Snapshot: models.NewPriceSnapshot(*price, *prev)}
	}

	closes, err := s.source.History(ctx, sym, historyWindow)
	answered(err)
	switch {
	case err != nil:
		metrics.UpstreamFailure(metrics.SourcePriceHistory)
		s.logger.Debug("price history failed", "symbol", sym, "error", err)
	case len(closes) > 0:
		last := closes[len(closes)-1]
		return Entry{Snapshot: models.NewPriceSnapshot(last, closes[0])}
	}

	var prevClose float64
	if prev != nil {
		prevClose = *prev
	}
	info, err := s.source.Info(ctx, sym)
	answered(err)
	if err == nil && info != nil {
		return Entry{Snapshot: models.NewPriceSnapshot(info.Price, prevClose)}
	}
	metrics.UpstreamFailure(metrics.SourcePriceInfo)

	if price != nil {
		return Entry{Snapshot: models.NewPriceSnapshot(*price, prevClose)}
	}
	s.logger.Warn("price unavailable", "symbol", sym, "error", err)
	return Entry{Failed: true, Unreachable: !reached}
}
