package prices

import (
	"context"
	"fmt"
	"strings"

	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// chartWindow is the sparkline range shown in ticker tooltips.
const chartWindow = "1mo"

// MiniChart returns one month of daily closes for symbol with the latest
// price and its change against the prior close. Only successful charts
// are cached.
func (s *Service) MiniChart(ctx context.Context, symbol string) (*models.MiniChart, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, ErrNoSymbols
	}
	if s.charts != nil {
		if chart, ok := s.charts.Get(ctx, sym); ok {
			metrics.CacheLookup("chart", true)
			return &chart, nil
		}
		metrics.CacheLookup("chart", false)
	}

	closes, err := s.source.History(ctx, sym, chartWindow)
	if err != nil {
		metrics.UpstreamFailure(metrics.SourceChart)
		return nil, fmt.Errorf("mini chart %s: %w", sym, err)
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("mini chart %s: %w", sym, ErrUpstreamUnavailable)
	}

	last := closes[len(closes)-1]
	prior := last
	if len(closes) > 1 {
		prior = closes[len(closes)-2]
	}
	snap := models.NewPriceSnapshot(last, prior)
	chart := models.MiniChart{
		Symbol:        sym,
		Price:         snap.Price,
		Change:        snap.Change,
		ChangePercent: snap.ChangePercent,
		Sparkline:     closes,
	}
	if s.charts != nil {
		s.charts.Set(ctx, sym, chart)
	}
	return &chart, nil
}
