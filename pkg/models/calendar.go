package models

// Impact classifies how market-moving an economic event is expected to be.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// AllDay is the display time used when an event has no resolvable time.
const AllDay = "All Day"

// EconomicEvent is one scheduled macro release or central bank event.
type EconomicEvent struct {
	Date        string `json:"date"        yaml:"date"`        // YYYY-MM-DD
	DisplayDate string `json:"dateDisplay" yaml:"dateDisplay"` // e.g. "Oct 14"
	Weekday     string `json:"weekday"     yaml:"weekday"`     // e.g. "Wed"
	Time        string `json:"time"        yaml:"time"`
	Currency    string `json:"currency"    yaml:"currency"`
	Country     string `json:"country"     yaml:"country"`
	Title       string `json:"title"       yaml:"title"`
	Impact      Impact `json:"impact"      yaml:"impact"`
	Description string `json:"description" yaml:"description"`
}
