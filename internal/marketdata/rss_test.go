package marketdata

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/internal/logging"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Yahoo! Finance: NVDA News</title>
  <item>
    <guid>nvda-1</guid>
    <title>Nvidia (NVDA) extends rally </title>
    <link>https://finance.yahoo.com/news/nvda-1.html</link>
    <description>&lt;p&gt;Shares of &lt;b&gt;Nvidia&lt;/b&gt; rose.&lt;/p&gt;</description>
    <pubDate>Wed, 14 Oct 2026 13:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Chip stocks slide</title>
    <link>https://finance.yahoo.com/news/chips.html</link>
  </item>
</channel>
</rss>`

func TestRSSNews(t *testing.T) {
	var gotSymbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("s")
		w.Header().Set("Content-Type", "application/rss+xml")
		io.WriteString(w, sampleFeed)
	}))
	defer srv.Close()

	src := NewRSSNews(srv.URL, time.Second, 100, logging.Discard())
	records, err := src.News(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", gotSymbol)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "nvda-1", first["id"])
	assert.Equal(t, "Nvidia (NVDA) extends rally", first["title"])
	assert.Equal(t, "Yahoo! Finance: NVDA News", first["publisher"])
	assert.Equal(t, "Shares of Nvidia rose.", first["summary"])
	assert.Equal(t, time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC).Unix(), first["providerPublishTime"])

	second := records[1]
	assert.Equal(t, "https://finance.yahoo.com/news/chips.html", second["id"], "link stands in for a missing guid")
	assert.NotContains(t, second, "providerPublishTime")
}

func TestRSSNewsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRSSNews(srv.URL, time.Second, 100, logging.Discard()).News(context.Background(), "NVDA")
	assert.Error(t, err)
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<p>Hello <b>world</b></p>\n<p>again</p>", "Hello world again"},
	}
	for _, tt := range tests {
		if got := cleanHTML(tt.in); got != tt.want {
			t.Errorf("cleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
