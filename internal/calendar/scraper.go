package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/seenimoa/marketdesk/internal/infra"
	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// DefaultScrapeURL is the ForexFactory calendar page.
const DefaultScrapeURL = "https://www.forexfactory.com/calendar"

// ScraperOptions configures a Scraper. Zero values get defaults.
type ScraperOptions struct {
	BaseURL        string
	MonthsBack     int
	MonthsAhead    int
	Currencies     []string
	Strict         bool
	StrictCurrency string
	Timeout        time.Duration
	Throttle       time.Duration
	Logger         *slog.Logger
}

// Scraper reads the ForexFactory monthly calendar pages straddling the
// current month and keeps the rows for the configured currencies.
type Scraper struct {
	baseURL        string
	monthsBack     int
	monthsAhead    int
	currencies     map[string]struct{}
	strict         bool
	strictCurrency string
	client         *http.Client
	limiter        *rate.Limiter
	logger         *slog.Logger
	now            func() time.Time
}

// NewScraper creates a scraper.
func NewScraper(opts ScraperOptions) *Scraper {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultScrapeURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Throttle <= 0 {
		opts.Throttle = time.Second
	}
	if opts.StrictCurrency == "" {
		opts.StrictCurrency = "USD"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	currencies := make(map[string]struct{}, len(opts.Currencies))
	for _, c := range opts.Currencies {
		currencies[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return &Scraper{
		baseURL:        opts.BaseURL,
		monthsBack:     opts.MonthsBack,
		monthsAhead:    opts.MonthsAhead,
		currencies:     currencies,
		strict:         opts.Strict,
		strictCurrency: strings.ToUpper(opts.StrictCurrency),
		client:         infra.NewHTTPClient(opts.Timeout),
		limiter:        rate.NewLimiter(rate.Every(opts.Throttle), 1),
		logger:         opts.Logger,
		now:            time.Now,
	}
}

// WithClock replaces the scraper's time source and returns the scraper.
func (s *Scraper) WithClock(now func() time.Time) *Scraper {
	s.now = now
	return s
}

func (s *Scraper) Name() string { return "scrape" }

// Events scrapes every month in the window. A month that fails is logged
// and skipped. When the context ends partway, the months scraped so far
// are returned.
func (s *Scraper) Events(ctx context.Context) ([]models.EconomicEvent, error) {
	var events []models.EconomicEvent
	for _, month := range s.months() {
		if err := s.limiter.Wait(ctx); err != nil {
			if len(events) == 0 {
				return nil, err
			}
			s.logger.Warn("calendar scrape stopped early", "month", month.Format("2006-01"), "error", err)
			break
		}
		got, err := s.scrapeMonth(ctx, month)
		if err != nil {
			metrics.UpstreamFailure(metrics.SourceCalendarMonth)
			s.logger.Warn("calendar month scrape failed", "month", month.Format("2006-01"), "error", err)
			continue
		}
		events = append(events, got...)
	}
	sortByDate(events)
	return events, nil
}

// months returns the first day of each month from monthsBack before the
// current month to monthsAhead after it.
func (s *Scraper) months() []time.Time {
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, 0, s.monthsBack+s.monthsAhead+1)
	for i := -s.monthsBack; i <= s.monthsAhead; i++ {
		out = append(out, first.AddDate(0, i, 0))
	}
	return out
}

func (s *Scraper) monthURL(month time.Time) string {
	return fmt.Sprintf("%s?month=%s.%d", s.baseURL, strings.ToLower(month.Format("Jan")), month.Year())
}

func (s *Scraper) scrapeMonth(ctx context.Context, month time.Time) ([]models.EconomicEvent, error) {
	body, err := infra.DoGet(ctx, s.client, s.monthURL(month), map[string]string{
		"Accept": "text/html,application/xhtml+xml",
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse calendar html: %w", err)
	}
	return s.parse(doc, month), nil
}

// parse walks the calendar rows. The date cell only appears on the first
// row of each day and the time cell only when it changes, so both carry
// forward: the date until the next date row, the time within its day.
func (s *Scraper) parse(doc *goquery.Document, month time.Time) []models.EconomicEvent {
	var (
		events  []models.EconomicEvent
		curDate time.Time
		curTime string
	)
	doc.Find("tr.calendar__row").Each(func(_ int, row *goquery.Selection) {
		if d, ok := parseDateCell(cellText(row, ".calendar__date"), month); ok {
			curDate = d
			curTime = ""
		}
		if t := cellText(row, ".calendar__time"); t != "" {
			curTime = t
		}

		currency := strings.ToUpper(cellText(row, ".calendar__currency"))
		title := cellText(row, ".calendar__event-title")
		if curDate.IsZero() || currency == "" || title == "" {
			return
		}

		impact := parseImpact(row.Find(".calendar__impact span").First())
		if !s.keep(currency, impact) {
			return
		}

		e := models.EconomicEvent{
			Date:     curDate.Format(time.DateOnly),
			Time:     coalesce(curTime, models.AllDay),
			Currency: currency,
			Title:    title,
			Impact:   impact,
			Description: describe(
				cellText(row, ".calendar__actual"),
				cellText(row, ".calendar__forecast"),
				cellText(row, ".calendar__previous"),
			),
		}
		finish(&e)
		events = append(events, e)
	})
	return events
}

func (s *Scraper) keep(currency string, impact models.Impact) bool {
	if s.strict {
		return currency == s.strictCurrency && impact != models.ImpactLow
	}
	_, ok := s.currencies[currency]
	return ok
}

func cellText(row *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(row.Find(selector).First().Text()), " ")
}

var dateCellPattern = regexp.MustCompile(`(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s*(\d{1,2})`)

// parseDateCell reads cells like "Wed Oct 14" or "WedOct 14". The year
// comes from the page's month, adjusted for rows that spill into the
// neighbouring year.
func parseDateCell(text string, month time.Time) (time.Time, bool) {
	m := dateCellPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	mon, err := time.Parse("Jan", m[1])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := month.Year()
	switch {
	case month.Month() == time.December && mon.Month() == time.January:
		year++
	case month.Month() == time.January && mon.Month() == time.December:
		year--
	}
	return time.Date(year, mon.Month(), day, 0, 0, 0, 0, time.UTC), true
}

// parseImpact maps the impact icon to a level. The icon class carries a
// colour code (red, ora, yel, gra); the title attribute is the fallback.
func parseImpact(icon *goquery.Selection) models.Impact {
	class, _ := icon.Attr("class")
	switch {
	case strings.Contains(class, "-red"):
		return models.ImpactHigh
	case strings.Contains(class, "-ora"):
		return models.ImpactMedium
	case strings.Contains(class, "-yel"), strings.Contains(class, "-gra"):
		return models.ImpactLow
	}
	title, _ := icon.Attr("title")
	switch t := strings.ToLower(title); {
	case strings.HasPrefix(t, "high"):
		return models.ImpactHigh
	case strings.HasPrefix(t, "medium"):
		return models.ImpactMedium
	}
	return models.ImpactLow
}

// describe joins the non-empty actual, forecast and previous values.
func describe(actual, forecast, previous string) string {
	var parts []string
	if actual != "" {
		parts = append(parts, "Actual: "+actual)
	}
	if forecast != "" {
		parts = append(parts, "Forecast: "+forecast)
	}
	if previous != "" {
		parts = append(parts, "Previous: "+previous)
	}
	return strings.Join(parts, " | ")
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
