package news

import "strings"

// DefaultCategory is used when a request names no known category.
const DefaultCategory = "general"

// TickerSet is the pair of symbol lists a category paginates over: the
// primary set backs page 0 and the extended set is chunked for later pages.
type TickerSet struct {
	Primary  []string
	Extended []string
}

// Categories maps each news category to its ticker sets.
var Categories = map[string]TickerSet{
	"general": {
		Primary:  []string{"SPY", "QQQ", "DIA", "AAPL", "MSFT"},
		Extended: []string{"NVDA", "AMZN", "TSLA", "META", "GOOGL", "JPM", "XOM", "BRK-B", "V"},
	},
	"tech": {
		Primary:  []string{"NVDA", "AAPL", "MSFT", "GOOGL", "AMD"},
		Extended: []string{"META", "AMZN", "TSLA", "INTC", "CRM", "ORCL", "ADBE", "AVGO"},
	},
	"finance": {
		Primary:  []string{"JPM", "BAC", "GS", "MS", "WFC"},
		Extended: []string{"C", "BLK", "SCHW", "AXP", "V", "MA", "PYPL", "COF"},
	},
	"crypto": {
		Primary:  []string{"BTC-USD", "ETH-USD", "COIN", "MSTR", "SOL-USD"},
		Extended: []string{"XRP-USD", "DOGE-USD", "ADA-USD", "MARA", "RIOT", "HOOD", "BNB-USD", "AVAX-USD"},
	},
}

// ResolveCategory lowercases name and maps unknown names to DefaultCategory.
func ResolveCategory(name string) string {
	c := strings.ToLower(strings.TrimSpace(name))
	if _, ok := Categories[c]; ok {
		return c
	}
	return DefaultCategory
}

// PageSymbols returns the symbols to query for category at page. Page 0
// is the primary set; page n >= 1 is the (n-1)th chunk of the extended set.
// A chunk past the end of the extended set yields an empty list.
func PageSymbols(category string, page, chunkSize int) []string {
	set := Categories[ResolveCategory(category)]
	if page <= 0 {
		return append([]string(nil), set.Primary...)
	}
	if chunkSize <= 0 {
		chunkSize = 3
	}
	start := (page - 1) * chunkSize
	if start >= len(set.Extended) {
		return []string{}
	}
	end := min(start+chunkSize, len(set.Extended))
	return append([]string(nil), set.Extended[start:end]...)
}
