package marketdata

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/internal/logging"
)

func newTestYahoo(t *testing.T, routes map[string]string) *Yahoo {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewYahoo(YahooOptions{BaseURL: srv.URL, RatePerSecond: 1000, Burst: 100, Logger: logging.Discard()})
}

func TestYahooSnapshot(t *testing.T) {
	y := newTestYahoo(t, map[string]string{
		"/v8/finance/chart/AAPL": `{"chart":{"result":[{"meta":{"symbol":"AAPL","regularMarketPrice":190.5,"chartPreviousClose":188.0}}]}}`,
		"/v8/finance/chart/MSFT": `{"chart":{"result":[{"meta":{"symbol":"MSFT","regularMarketPrice":410.0,"previousClose":400.0}}]}}`,
		"/v8/finance/chart/NOPX": `{"chart":{"result":[{"meta":{"symbol":"NOPX"}}]}}`,
	})
	ctx := context.Background()

	price, prev, err := y.Snapshot(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, price)
	require.NotNil(t, prev)
	assert.Equal(t, 190.5, *price)
	assert.Equal(t, 188.0, *prev)

	_, prev, err = y.Snapshot(ctx, "MSFT")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, 400.0, *prev, "previousClose is used when chartPreviousClose is absent")

	price, prev, err = y.Snapshot(ctx, "NOPX")
	require.NoError(t, err)
	assert.Nil(t, price)
	assert.Nil(t, prev)
}

func TestYahooSnapshotUnknownSymbol(t *testing.T) {
	y := newTestYahoo(t, nil)
	_, _, err := y.Snapshot(context.Background(), "ZZZZ")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestYahooHistorySkipsNulls(t *testing.T) {
	y := newTestYahoo(t, map[string]string{
		"/v8/finance/chart/AAPL": `{"chart":{"result":[{"meta":{},"indicators":{"quote":[{"close":[101.0,null,103.5,104.0]}]}}]}}`,
	})
	closes, err := y.History(context.Background(), "AAPL", "1mo")
	require.NoError(t, err)
	assert.Equal(t, []float64{101.0, 103.5, 104.0}, closes)
}

func TestYahooSearch(t *testing.T) {
	y := newTestYahoo(t, map[string]string{
		"/v1/finance/search": `{"quotes":[
			{"symbol":"AAPL","shortname":"Apple Inc.","quoteType":"EQUITY","exchDisp":"NASDAQ"},
			{"symbol":"APLE","longname":"Apple Hospitality REIT"},
			{"symbol":"","shortname":"ignored"}
		]}`,
	})
	results, err := y.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Apple Inc.", results[0].Name)
	assert.Equal(t, "NASDAQ", results[0].ExchDisp)
	assert.Equal(t, "USD", results[0].Currency)
	assert.Equal(t, "Apple Hospitality REIT", results[1].Name)
	assert.Equal(t, "Unknown", results[1].Type)
}

func TestYahooNewsReturnsRawRecords(t *testing.T) {
	y := newTestYahoo(t, map[string]string{
		"/v1/finance/search": `{"news":[{"uuid":"u1","title":"Nvidia beats","providerPublishTime":1700000000,"content":{"x":1}}]}`,
	})
	news, err := y.News(context.Background(), "NVDA")
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "u1", news[0]["uuid"])
	assert.Equal(t, float64(1700000000), news[0]["providerPublishTime"])
	assert.IsType(t, map[string]any{}, news[0]["content"])
}

func TestYahooInfo(t *testing.T) {
	y := newTestYahoo(t, map[string]string{
		"/v7/finance/quote":                `{"quoteResponse":{"result":[{"symbol":"AAPL","shortName":"Apple","quoteType":"EQUITY","currency":"USD","regularMarketPrice":190.5}]}}`,
		"/v10/finance/quoteSummary/AAPL": `{"quoteSummary":{"result":[{"assetProfile":{"sector":"Technology","industry":"Consumer Electronics"}}]}}`,
	})
	info, err := y.Info(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple", info.Name)
	assert.Equal(t, 190.5, info.Price)
	assert.Equal(t, "Technology", info.Sector)
	assert.Equal(t, "Consumer Electronics", info.Industry)
}

func TestYahooInfoFallbacks(t *testing.T) {
	y := newTestYahoo(t, map[string]string{
		"/v7/finance/quote": `{"quoteResponse":{"result":[{"symbol":"BTC-USD","longName":"Bitcoin USD","regularMarketPreviousClose":60000}]}}`,
	})
	info, err := y.Info(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin USD", info.Name)
	assert.Equal(t, 60000.0, info.Price)
	assert.Equal(t, "Unknown", info.Sector)
	assert.Equal(t, "Unknown", info.Type)
}

func TestYahooInfoNotFound(t *testing.T) {
	y := newTestYahoo(t, map[string]string{
		"/v7/finance/quote": `{"quoteResponse":{"result":[]}}`,
	})
	_, err := y.Info(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		input []string
		want  string
	}{
		{[]string{"", "", "hello"}, "hello"},
		{[]string{"first", "second"}, "first"},
		{[]string{"", ""}, ""},
		{[]string{"  ", "actual"}, "actual"},
	}
	for _, tt := range tests {
		if got := coalesce(tt.input...); got != tt.want {
			t.Errorf("coalesce(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
