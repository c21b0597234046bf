package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/seenimoa/marketdesk/internal/infra"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// DefaultRSSURL is Yahoo's per-symbol headline feed.
const DefaultRSSURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"

// RSSNews is a NewsSource backed by Yahoo's headline RSS feed. Items are
// mapped into the same raw record shape the search endpoint returns.
type RSSNews struct {
	feedURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ NewsSource = (*RSSNews)(nil)

// NewRSSNews creates an RSS news source. An empty feedURL uses DefaultRSSURL.
func NewRSSNews(feedURL string, timeout time.Duration, ratePerSecond float64, logger *slog.Logger) *RSSNews {
	if feedURL == "" {
		feedURL = DefaultRSSURL
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSNews{
		feedURL: feedURL,
		client:  infra.NewHTTPClient(timeout),
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		logger:  logger,
	}
}

// News fetches the headline feed for symbol.
func (r *RSSNews) News(ctx context.Context, symbol string) ([]models.RawNews, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.UserAgent = infra.DefaultUserAgent
	fp.Client = r.client

	u := fmt.Sprintf("%s?s=%s&region=US&lang=en-US", r.feedURL, url.QueryEscape(symbol))
	feed, err := fp.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS for %s: %w", symbol, err)
	}

	publisher := coalesce(feed.Title, "Yahoo Finance")
	records := make([]models.RawNews, 0, len(feed.Items))
	for _, item := range feed.Items {
		rec := models.RawNews{
			"id":    coalesce(item.GUID, item.Link),
			"title": strings.TrimSpace(item.Title),
			"link":  item.Link,
			"type":  models.DefaultNewsKind,
		}
		if item.Author != nil && item.Author.Name != "" {
			rec["publisher"] = item.Author.Name
		} else {
			rec["publisher"] = publisher
		}
		if item.PublishedParsed != nil {
			rec["providerPublishTime"] = item.PublishedParsed.Unix()
		}
		if summary := cleanHTML(item.Description); summary != "" {
			rec["summary"] = summary
		}
		if item.Image != nil && item.Image.URL != "" {
			rec["thumbnail"] = map[string]any{
				"resolutions": []any{map[string]any{"url": item.Image.URL}},
			}
		}
		records = append(records, rec)
	}
	r.logger.Debug("rss news fetched", "symbol", symbol, "items", len(records))
	return records, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
