package prices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/internal/infra"
	"github.com/seenimoa/marketdesk/internal/logging"
	"github.com/seenimoa/marketdesk/internal/marketdata"
	"github.com/seenimoa/marketdesk/pkg/models"
)

func f64(v float64) *float64 { return &v }

type quote struct {
	price, prev *float64
	snapErr     error
	history     []float64
	histErr     error
	info        *models.AssetInfo
	infoErr     error
}

type fakePrices struct {
	mu     sync.Mutex
	quotes map[string]quote
	calls  map[string]int
}

func unknown(sym string) error {
	return fmt.Errorf("%w: %s", marketdata.ErrNotFound, sym)
}

func newFakePrices(q map[string]quote) *fakePrices {
	return &fakePrices{quotes: q, calls: map[string]int{}}
}

func (f *fakePrices) count(key string) {
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()
}

func (f *fakePrices) Calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakePrices) Snapshot(_ context.Context, sym string) (*float64, *float64, error) {
	f.count("snapshot:" + sym)
	q, ok := f.quotes[sym]
	if !ok {
		return nil, nil, unknown(sym)
	}
	return q.price, q.prev, q.snapErr
}

func (f *fakePrices) History(_ context.Context, sym, window string) ([]float64, error) {
	f.count("history:" + sym + ":" + window)
	q, ok := f.quotes[sym]
	if !ok {
		return nil, unknown(sym)
	}
	return q.history, q.histErr
}

func (f *fakePrices) Info(_ context.Context, sym string) (*models.AssetInfo, error) {
	f.count("info:" + sym)
	q, ok := f.quotes[sym]
	if q.infoErr != nil {
		return nil, q.infoErr
	}
	if !ok || q.info == nil {
		return nil, unknown(sym)
	}
	return q.info, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(src *fakePrices) (*Service, *testClock) {
	clk := &testClock{now: time.Date(2026, 10, 14, 14, 30, 0, 0, time.UTC)}
	cache := infra.NewMemoryStore[Entry](15*time.Second, 0).WithClock(clk.Now)
	charts := infra.NewMemoryStore[models.MiniChart](5*time.Minute, 0).WithClock(clk.Now)
	return NewService(src, cache, charts, logging.Discard()), clk
}

func TestParseSymbols(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT", "BTC-USD"}, ParseSymbols(" aapl, MSFT ,,btc-usd,AAPL"))
	assert.Empty(t, ParseSymbols(""))
	assert.Empty(t, ParseSymbols(" , "))
}

func TestPricesFromSnapshot(t *testing.T) {
	src := newFakePrices(map[string]quote{
		"AAPL": {price: f64(110), prev: f64(100)},
	})
	svc, _ := newTestService(src)

	got, err := svc.Prices(context.Background(), "aapl")
	require.NoError(t, err)
	snap := got["AAPL"]
	assert.Equal(t, 110.0, snap.Price)
	assert.Equal(t, 100.0, snap.PreviousClose)
	assert.InDelta(t, 10.0, snap.Change, 1e-9)
	assert.InDelta(t, 10.0, snap.ChangePercent, 1e-9)
	assert.Zero(t, src.Calls("history:AAPL:2d"), "complete snapshot needs no history")
}

func TestPricesFallsBackToHistory(t *testing.T) {
	src := newFakePrices(map[string]quote{
		"MSFT": {price: f64(400), history: []float64{390, 405}},
		"ONE":  {snapErr: errors.New("timeout"), history: []float64{50}},
	})
	svc, _ := newTestService(src)

	got, err := svc.Prices(context.Background(), "MSFT,ONE")
	require.NoError(t, err)

	assert.Equal(t, models.NewPriceSnapshot(405, 390), got["MSFT"], "latest close is the price, earliest is the previous close")

	one := got["ONE"]
	assert.Equal(t, 50.0, one.Price)
	assert.Equal(t, 50.0, one.PreviousClose, "a single point is its own previous close")
	assert.Zero(t, one.Change)
}

func TestPricesFallsBackToInfo(t *testing.T) {
	src := newFakePrices(map[string]quote{
		"FUND": {snapErr: errors.New("no chart"), histErr: errors.New("no history"), info: &models.AssetInfo{Price: 12.5}},
	})
	svc, _ := newTestService(src)

	got, err := svc.Prices(context.Background(), "FUND")
	require.NoError(t, err)
	assert.Equal(t, 12.5, got["FUND"].Price)
	assert.Zero(t, got["FUND"].ChangePercent, "no previous close means no percentage")
}

func TestPricesPartialFailureIsolated(t *testing.T) {
	src := newFakePrices(map[string]quote{
		"AAPL": {price: f64(200), prev: f64(0)},
	})
	svc, _ := newTestService(src)

	got, err := svc.Prices(context.Background(), "AAPL,NOPE")
	require.NoError(t, err)
	assert.Equal(t, 200.0, got["AAPL"].Price)
	assert.Zero(t, got["AAPL"].ChangePercent, "previous close 0 keeps changePercent at 0")
	assert.Equal(t, models.PriceSnapshot{}, got["NOPE"])
}

func TestPricesUnreachableUpstreamIsAnError(t *testing.T) {
	down := errors.New("dial tcp: connection refused")
	unreachable := quote{snapErr: down, histErr: down, infoErr: down}
	svc, _ := newTestService(newFakePrices(map[string]quote{"X": unreachable, "Y": unreachable}))

	_, err := svc.Prices(context.Background(), "X,Y")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestPricesUnknownSymbolsAreZeroed(t *testing.T) {
	svc, _ := newTestService(newFakePrices(nil))

	got, err := svc.Prices(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Equal(t, map[string]models.PriceSnapshot{"ZZZZ": {}}, got)
}

func TestPricesMixedUnknownAndUnreachableIsZeroed(t *testing.T) {
	down := errors.New("timeout")
	svc, _ := newTestService(newFakePrices(map[string]quote{
		"X": {snapErr: down, histErr: down, infoErr: down},
	}))

	got, err := svc.Prices(context.Background(), "X,ZZZZ")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPricesEmptyInput(t *testing.T) {
	svc, _ := newTestService(newFakePrices(nil))
	got, err := svc.Prices(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPricesCacheTTLIncludesFailures(t *testing.T) {
	src := newFakePrices(map[string]quote{"AAPL": {price: f64(1), prev: f64(1)}})
	svc, clk := newTestService(src)
	ctx := context.Background()

	_, _ = svc.Prices(ctx, "AAPL,NOPE")
	_, _ = svc.Prices(ctx, "AAPL,NOPE")
	assert.Equal(t, 1, src.Calls("snapshot:AAPL"))
	assert.Equal(t, 1, src.Calls("snapshot:NOPE"), "failed lookups are cached for the TTL too")

	clk.Advance(15 * time.Second)
	_, _ = svc.Prices(ctx, "AAPL")
	assert.Equal(t, 2, src.Calls("snapshot:AAPL"))
}

func TestPricesCancelledContext(t *testing.T) {
	svc, _ := newTestService(newFakePrices(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Prices(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}
