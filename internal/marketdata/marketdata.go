// Package marketdata is the gateway to third-party market data: symbol
// search, asset info, raw per-symbol news, price snapshots and daily
// close history. The default implementation talks to Yahoo Finance.
package marketdata

import (
	"context"
	"errors"
	"strings"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// ErrNotFound is returned when a symbol cannot be resolved upstream.
var ErrNotFound = errors.New("symbol not found")

// NewsSource returns raw, loosely-typed news records for one symbol.
type NewsSource interface {
	News(ctx context.Context, symbol string) ([]models.RawNews, error)
}

// PriceSource returns price data for one symbol.
type PriceSource interface {
	// Snapshot returns the latest price and previous close. Either may be
	// nil when the upstream does not report it.
	Snapshot(ctx context.Context, symbol string) (price, previousClose *float64, err error)
	// History returns daily closes over window ("2d", "1mo", ...), oldest first.
	History(ctx context.Context, symbol, window string) ([]float64, error)
	// Info returns descriptive data including a price, which may be 0.
	Info(ctx context.Context, symbol string) (*models.AssetInfo, error)
}

// Gateway is everything the services consume from the market data provider.
type Gateway interface {
	NewsSource
	PriceSource
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
