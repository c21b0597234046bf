package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/seenimoa/marketdesk/internal/infra"
)

// ErrNoContent is returned when a page has no readable article text.
var ErrNoContent = errors.New("analysis: no readable content")

// maxArticleBytes caps how much HTML is read from an article page.
const maxArticleBytes = 5 << 20

// ArticleFetcher returns the readable body text of a news article.
type ArticleFetcher interface {
	Fetch(ctx context.Context, link string) (string, error)
}

// ReadabilityFetcher downloads a page and extracts its main text with the
// Mozilla Readability algorithm.
type ReadabilityFetcher struct {
	client *http.Client
}

// NewReadabilityFetcher creates a fetcher with the given request timeout.
func NewReadabilityFetcher(timeout time.Duration) *ReadabilityFetcher {
	return &ReadabilityFetcher{client: infra.NewHTTPClient(timeout)}
}

// Fetch implements ArticleFetcher. Only http and https links are followed.
func (f *ReadabilityFetcher) Fetch(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("analysis: unsupported article link %q", link)
	}

	body, err := infra.DoGet(ctx, f.client, u.String(), map[string]string{"Accept": "text/html"})
	if err != nil {
		return "", err
	}
	defer body.Close()

	html, err := io.ReadAll(io.LimitReader(body, maxArticleBytes))
	if err != nil {
		return "", fmt.Errorf("read article: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(html), u)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}
	text := collapseBlankLines(article.TextContent)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// truncateRunes cuts s to at most limit runes. A non-positive limit keeps s.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
