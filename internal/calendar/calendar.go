// Package calendar resolves upcoming economic events through an ordered
// list of tiers: a durable file cache, a live ForexFactory scrape, and an
// embedded static table. The first tier with a non-empty result wins.
package calendar

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// ErrEmpty is returned by a tier that ran but produced no events.
var ErrEmpty = errors.New("no economic events")

// Source is one tier of the calendar chain.
type Source interface {
	Name() string
	Events(ctx context.Context) ([]models.EconomicEvent, error)
}

// Tier wires a Source into the chain. Persist marks tiers whose results
// are written back to the file cache.
type Tier struct {
	Source  Source
	Persist bool
}

// Provider walks its tiers in order and falls back to the static table.
type Provider struct {
	tiers  []Tier
	cache  *FileCache
	static *Static
	logger *slog.Logger
}

// NewProvider creates a provider. cache may be nil, in which case nothing
// is persisted; static is always consulted last.
func NewProvider(cache *FileCache, static *Static, logger *slog.Logger, tiers ...Tier) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{tiers: tiers, cache: cache, static: static, logger: logger}
}

// Events returns upcoming events. It never fails.
func (p *Provider) Events(ctx context.Context) []models.EconomicEvent {
	for _, t := range p.tiers {
		events, err := p.try(ctx, t.Source)
		if err != nil {
			p.logger.Info("calendar tier fell through", "tier", t.Source.Name(), "error", err)
			continue
		}
		// A list cut short by the caller going away is served but not kept.
		if t.Persist && p.cache != nil && ctx.Err() == nil {
			if err := p.cache.Save(events); err != nil {
				p.logger.Warn("calendar cache write failed", "path", p.cache.Path(), "error", err)
			}
		}
		metrics.CalendarServed(t.Source.Name())
		return events
	}

	metrics.CalendarServed(p.static.Name())
	events, _ := p.static.Events(ctx)
	return events
}

// try runs one tier, turning panics and empty results into errors.
func (p *Provider) try(ctx context.Context, src Source) (events []models.EconomicEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			events, err = nil, errors.New("tier panicked")
			p.logger.Error("calendar tier panicked", "tier", src.Name(), "panic", r)
		}
	}()
	events, err = src.Events(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrEmpty
	}
	return events, nil
}

// finish fills the derived display fields of e from its ISO date.
func finish(e *models.EconomicEvent) {
	d, err := time.Parse(time.DateOnly, e.Date)
	if err != nil {
		return
	}
	if e.DisplayDate == "" {
		e.DisplayDate = d.Format("Jan 2")
	}
	if e.Weekday == "" {
		e.Weekday = d.Format("Mon")
	}
	if e.Country == "" {
		e.Country = CountryFor(e.Currency)
	}
	if e.Time == "" {
		e.Time = models.AllDay
	}
}

func sortByDate(events []models.EconomicEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })
}

var currencyCountries = map[string]string{
	"USD": "United States",
	"EUR": "Euro Area",
	"GBP": "United Kingdom",
	"JPY": "Japan",
	"CNY": "China",
	"CAD": "Canada",
	"AUD": "Australia",
	"NZD": "New Zealand",
	"CHF": "Switzerland",
}

// CountryFor maps a currency code to the economy that reports under it.
func CountryFor(currency string) string {
	if c, ok := currencyCountries[currency]; ok {
		return c
	}
	return currency
}
