package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/seenimoa/marketdesk/internal/infra"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// DefaultYahooBaseURL is the Yahoo Finance query host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

const (
	searchMaxResults = 10
	searchNewsCount  = 10
)

// YahooOptions configures a Yahoo gateway. Zero values get defaults.
type YahooOptions struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	Logger        *slog.Logger
}

// Yahoo implements Gateway against the Yahoo Finance JSON endpoints.
type Yahoo struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ Gateway = (*Yahoo)(nil)

// NewYahoo creates a new Yahoo Finance gateway.
func NewYahoo(opts YahooOptions) *Yahoo {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultYahooBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Yahoo{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  infra.NewHTTPClient(opts.Timeout),
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		logger:  opts.Logger,
	}
}

// Search returns up to 10 quote matches for query.
func (y *Yahoo) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var resp yfSearchResponse
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=%d&newsCount=0",
		y.baseURL, url.QueryEscape(query), searchMaxResults)
	if err := y.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yahoo search %q: %w", query, err)
	}

	results := make([]models.SearchResult, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Symbol:   q.Symbol,
			Name:     coalesce(q.ShortName, q.LongName, q.Symbol),
			Type:     coalesce(q.QuoteType, "Unknown"),
			ExchDisp: q.ExchDisp,
			Currency: "USD",
		})
		if len(results) == searchMaxResults {
			break
		}
	}
	return results, nil
}

// News returns the raw news records Yahoo attaches to a symbol search.
func (y *Yahoo) News(ctx context.Context, symbol string) ([]models.RawNews, error) {
	var resp yfSearchResponse
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=0&newsCount=%d",
		y.baseURL, url.QueryEscape(symbol), searchNewsCount)
	if err := y.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yahoo news %s: %w", symbol, err)
	}
	return resp.News, nil
}

// Info returns descriptive data for symbol. Sector and industry come from
// the asset profile and default to "Unknown" when it is unavailable.
func (y *Yahoo) Info(ctx context.Context, symbol string) (*models.AssetInfo, error) {
	var resp yfQuoteResponse
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", y.baseURL, url.QueryEscape(symbol))
	if err := y.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo quote %s: %s", symbol, resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	r := resp.QuoteResponse.Result[0]
	info := &models.AssetInfo{
		Symbol:   symbol,
		Name:     coalesce(r.ShortName, r.LongName),
		Currency: coalesce(r.Currency, "USD"),
		Type:     coalesce(r.QuoteType, "Unknown"),
		Sector:   "Unknown",
		Industry: "Unknown",
	}
	switch {
	case r.RegularMarketPrice != nil:
		info.Price = *r.RegularMarketPrice
	case r.RegularMarketPreviousClose != nil:
		info.Price = *r.RegularMarketPreviousClose
	}

	if profile, err := y.assetProfile(ctx, symbol); err != nil {
		y.logger.Debug("asset profile unavailable", "symbol", symbol, "error", err)
	} else if profile != nil {
		info.Sector = coalesce(profile.Sector, "Unknown")
		info.Industry = coalesce(profile.Industry, "Unknown")
	}
	return info, nil
}

func (y *Yahoo) assetProfile(ctx context.Context, symbol string) (*yfAssetProfile, error) {
	var resp yfQuoteSummaryResponse
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile", y.baseURL, url.PathEscape(symbol))
	if err := y.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil
	}
	return resp.QuoteSummary.Result[0].AssetProfile, nil
}

// Snapshot returns the chart meta price and previous close for symbol.
func (y *Yahoo) Snapshot(ctx context.Context, symbol string) (*float64, *float64, error) {
	result, err := y.chart(ctx, symbol, "1d")
	if err != nil {
		return nil, nil, err
	}
	meta := result.Meta
	prev := meta.ChartPreviousClose
	if prev == nil {
		prev = meta.PreviousClose
	}
	return meta.RegularMarketPrice, prev, nil
}

// History returns daily closes over window, skipping missing points.
func (y *Yahoo) History(ctx context.Context, symbol, window string) ([]float64, error) {
	result, err := y.chart(ctx, symbol, window)
	if err != nil {
		return nil, err
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	raw := result.Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, c := range raw {
		if c != nil {
			closes = append(closes, *c)
		}
	}
	return closes, nil
}

func (y *Yahoo) chart(ctx context.Context, symbol, window string) (*yfChartResult, error) {
	var resp yfChartResponse
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		y.baseURL, url.PathEscape(symbol), url.QueryEscape(window))
	if err := y.getJSON(ctx, u, &resp); err != nil {
		var httpErr *infra.ErrHTTP
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return &resp.Chart.Result[0], nil
}

// getJSON waits for the rate limiter, fetches u and decodes it into v.
func (y *Yahoo) getJSON(ctx context.Context, u string, v any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}
	body, err := infra.DoGet(ctx, y.client, u, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
