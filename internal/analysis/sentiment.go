package analysis

import (
	"fmt"
	"strings"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// Keyword weights for the offline headline tone hint that is embedded in the
// news prompt. Lowercase; phrases match as substrings.
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5,
	"exceeds": 0.5, "expansion": 0.4, "soar": 0.6,
	"profit": 0.3, "dividend": 0.4, "rate cut": 0.4,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"sell": 0.5, "weak": 0.4, "decline": 0.5, "loss": 0.4,
	"selloff": 0.7, "fall": 0.4, "correction": 0.5, "tumble": 0.6,
	"default": 0.7, "fraud": 0.8, "investigation": 0.5, "recession": 0.7,
	"miss": 0.5, "warning": 0.5, "concern": 0.3, "layoff": 0.5,
}

// Tone is a keyword score for one headline: Score in [-1, 1] and the number
// of dictionary matches behind it.
type Tone struct {
	Score   float64
	Matches int
}

// Label buckets the score the way the prompt presents it.
func (t Tone) Label() string {
	switch {
	case t.Matches == 0:
		return "neutral"
	case t.Score > 0.3:
		return "bullish"
	case t.Score > 0.1:
		return "slightly bullish"
	case t.Score < -0.3:
		return "bearish"
	case t.Score < -0.1:
		return "slightly bearish"
	default:
		return "neutral"
	}
}

// ScoreHeadline scores text against the keyword dictionaries.
func ScoreHeadline(text string) Tone {
	lower := strings.ToLower(text)

	var bull, bear float64
	matches := 0
	for word, weight := range bullishWords {
		if strings.Contains(lower, word) {
			bull += weight
			matches++
		}
	}
	for word, weight := range bearishWords {
		if strings.Contains(lower, word) {
			bear += weight
			matches++
		}
	}
	if matches == 0 {
		return Tone{}
	}
	return Tone{Score: (bull - bear) / (bull + bear), Matches: matches}
}

// ScoreBriefs returns the mean tone over a batch of headlines and their
// summaries.
func ScoreBriefs(items []models.NewsBrief) Tone {
	var sum float64
	var agg Tone
	scored := 0
	for _, it := range items {
		t := ScoreHeadline(it.Title + " " + it.Summary)
		if t.Matches == 0 {
			continue
		}
		sum += t.Score
		agg.Matches += t.Matches
		scored++
	}
	if scored > 0 {
		agg.Score = sum / float64(scored)
	}
	return agg
}

func (t Tone) String() string {
	return fmt.Sprintf("%s (%+.2f from %d keyword matches)", t.Label(), t.Score, t.Matches)
}
