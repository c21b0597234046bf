package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/internal/logging"
	"github.com/seenimoa/marketdesk/pkg/models"
)

var today = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return today }

type stubSource struct {
	name   string
	events []models.EconomicEvent
	err    error
	panics bool
	calls  int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Events(context.Context) ([]models.EconomicEvent, error) {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.events, s.err
}

func testStatic(t *testing.T) *Static {
	t.Helper()
	st, err := NewStatic(60 * 24 * time.Hour)
	require.NoError(t, err)
	return st.WithClock(fixedNow)
}

func scraped() []models.EconomicEvent {
	return []models.EconomicEvent{{Date: "2026-10-14", Currency: "USD", Title: "CPI m/m", Impact: models.ImpactHigh}}
}

func TestProviderFileCacheHit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	cache := NewFileCache(path, 12*time.Hour)
	require.NoError(t, cache.Save(scraped()))

	scraper := &stubSource{name: "scrape", err: errors.New("should not run")}
	p := NewProvider(cache, testStatic(t), logging.Discard(),
		Tier{Source: cache}, Tier{Source: scraper, Persist: true})

	got := p.Events(context.Background())
	assert.Equal(t, scraped(), got)
	assert.Zero(t, scraper.calls)
}

func TestProviderScrapePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calendar.json")
	cache := NewFileCache(path, 12*time.Hour)
	scraper := &stubSource{name: "scrape", events: scraped()}
	p := NewProvider(cache, testStatic(t), logging.Discard(),
		Tier{Source: cache}, Tier{Source: scraper, Persist: true})

	got := p.Events(context.Background())
	assert.Equal(t, scraped(), got)

	persisted, err := cache.Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scraped(), persisted)
}

func TestProviderDoesNotPersistAfterCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	cache := NewFileCache(path, 12*time.Hour)
	scraper := &stubSource{name: "scrape", events: scraped()}
	p := NewProvider(cache, testStatic(t), logging.Discard(),
		Tier{Source: cache}, Tier{Source: scraper, Persist: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, scraped(), p.Events(ctx))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "a cancelled pass must not write the cache file")
}

func TestProviderCacheWriteFailureIgnored(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	cache := NewFileCache(filepath.Join(blocker, "calendar.json"), time.Hour)

	scraper := &stubSource{name: "scrape", events: scraped()}
	p := NewProvider(cache, testStatic(t), logging.Discard(),
		Tier{Source: cache}, Tier{Source: scraper, Persist: true})

	assert.Equal(t, scraped(), p.Events(context.Background()))
}

func TestProviderFallsBackToStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	cache := NewFileCache(path, 12*time.Hour).WithClock(func() time.Time { return time.Now().Add(13 * time.Hour) })
	require.NoError(t, cache.Save(scraped()))

	failing := &stubSource{name: "scrape", err: errors.New("403")}
	p := NewProvider(cache, testStatic(t), logging.Discard(),
		Tier{Source: cache}, Tier{Source: failing, Persist: true})

	got := p.Events(context.Background())
	require.NotEmpty(t, got)
	from, to := "2026-10-14", "2026-12-13"
	for i, e := range got {
		assert.GreaterOrEqual(t, e.Date, from)
		assert.LessOrEqual(t, e.Date, to)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Date, e.Date, "static fallback is sorted ascending")
		}
	}
}

func TestProviderEmptyAndPanickingTiersFallThrough(t *testing.T) {
	empty := &stubSource{name: "empty"}
	broken := &stubSource{name: "broken", panics: true}
	p := NewProvider(nil, testStatic(t), logging.Discard(), Tier{Source: empty}, Tier{Source: broken})

	got := p.Events(context.Background())
	assert.NotEmpty(t, got)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, 1, broken.calls)
}

func TestFileCacheMissing(t *testing.T) {
	c := NewFileCache(filepath.Join(t.TempDir(), "none.json"), time.Hour)
	_, err := c.Events(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileCacheStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	c := NewFileCache(path, time.Hour)
	require.NoError(t, c.Save(scraped()))

	c.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	_, err := c.Events(context.Background())
	assert.ErrorIs(t, err, ErrStale)
}

func TestStaticWindow(t *testing.T) {
	data := []byte(`
events:
  - {date: "2026-12-20", currency: USD, title: "Too far", impact: high}
  - {date: "2026-10-20", currency: EUR, title: "Later", impact: high}
  - {date: "2026-10-13", currency: USD, title: "Past", impact: high}
  - {date: "2026-10-14", currency: USD, title: "Today", impact: high, time: "8:30am"}
`)
	st, err := NewStaticFromYAML(data, 30*24*time.Hour)
	require.NoError(t, err)
	got, err := st.WithClock(fixedNow).Events(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Today", got[0].Title)
	assert.Equal(t, "Wed", got[0].Weekday)
	assert.Equal(t, "Oct 14", got[0].DisplayDate)
	assert.Equal(t, "Later", got[1].Title)
	assert.Equal(t, models.AllDay, got[1].Time)
	assert.Equal(t, "Euro Area", got[1].Country)
}

func TestStaticRejectsBadDates(t *testing.T) {
	_, err := NewStaticFromYAML([]byte(`events: [{date: "tomorrow", title: "x"}]`), 0)
	assert.Error(t, err)
}

func TestEmbeddedTableLoads(t *testing.T) {
	st, err := NewStatic(0)
	require.NoError(t, err)
	assert.NotEmpty(t, st.events)
	for _, e := range st.events {
		assert.NotEmpty(t, e.Weekday, e.Title)
		assert.Contains(t, []models.Impact{models.ImpactHigh, models.ImpactMedium, models.ImpactLow}, e.Impact)
	}
}
