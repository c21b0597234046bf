package calendar

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/marketdesk/pkg/models"
)

//go:embed fallback_events.yaml
var fallbackYAML []byte

// DefaultFallbackWindow is how far ahead the static table looks.
const DefaultFallbackWindow = 60 * 24 * time.Hour

// Static serves known high-impact events from an embedded table.
type Static struct {
	events []models.EconomicEvent
	window time.Duration
	now    func() time.Time
}

// NewStatic loads the embedded fallback table.
func NewStatic(window time.Duration) (*Static, error) {
	return NewStaticFromYAML(fallbackYAML, window)
}

// NewStaticFromYAML builds a static tier from a YAML list of events.
func NewStaticFromYAML(data []byte, window time.Duration) (*Static, error) {
	var doc struct {
		Events []models.EconomicEvent `yaml:"events"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fallback events: %w", err)
	}
	for i := range doc.Events {
		if _, err := time.Parse(time.DateOnly, doc.Events[i].Date); err != nil {
			return nil, fmt.Errorf("fallback event %q: bad date %q", doc.Events[i].Title, doc.Events[i].Date)
		}
		finish(&doc.Events[i])
	}
	if window <= 0 {
		window = DefaultFallbackWindow
	}
	return &Static{events: doc.Events, window: window, now: time.Now}, nil
}

// WithClock replaces the tier's time source and returns the tier.
func (s *Static) WithClock(now func() time.Time) *Static {
	s.now = now
	return s
}

func (s *Static) Name() string { return "static" }

// Events returns the table entries from today through the window, sorted
// by date. It never fails.
func (s *Static) Events(_ context.Context) ([]models.EconomicEvent, error) {
	now := s.now()
	from := now.Format(time.DateOnly)
	to := now.Add(s.window).Format(time.DateOnly)

	out := []models.EconomicEvent{}
	for _, e := range s.events {
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	sortByDate(out)
	return out, nil
}
