package news

import "regexp"

// MaxRelatedTickers caps the tickers attached to one news item.
const MaxRelatedTickers = 5

// tickerPattern matches 2-5 uppercase letters, either parenthesized or
// standing alone between word boundaries.
var tickerPattern = regexp.MustCompile(`\(([A-Z]{2,5})\)|\b([A-Z]{2,5})\b`)

// excludedWords are uppercase tokens common in headlines that are not tickers.
var excludedWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"AI", "AN", "AND", "API", "ARE", "AS", "AT", "ATH", "BE", "BUT", "BUY", "BY",
		"CEO", "CFO", "COO", "CPI", "CTO", "DO", "ECB", "EPS", "ETF", "ETFS", "EU",
		"EUR", "EV", "EVS", "FDA", "FED", "FOMC", "FOR", "FROM", "FTC", "GDP", "GO",
		"HAS", "HIGH", "HOLD", "HOW", "IMF", "IN", "INC", "IPO", "IS", "IT", "LLC",
		"LOW", "LTD", "NEWS", "NO", "NOT", "NYSE", "OF", "OK", "ON", "OR", "PC",
		"PE", "PPI", "QOQ", "SEC", "SELL", "SO", "THAT", "THE", "THIS", "TO", "TOP",
		"TV", "UK", "UP", "US", "USD", "WAS", "WE", "WHO", "WHY", "WITH", "YOY",
	} {
		excludedWords[w] = struct{}{}
	}
}

// ExtractTickers returns up to MaxRelatedTickers candidate ticker symbols
// found in text, in order of first appearance and without duplicates.
// It is a heuristic: any unexcluded run of capitals qualifies.
func ExtractTickers(text string) []string {
	tickers := []string{}
	if text == "" {
		return tickers
	}
	seen := make(map[string]struct{})
	for _, m := range tickerPattern.FindAllStringSubmatch(text, -1) {
		sym := m[1]
		if sym == "" {
			sym = m[2]
		}
		if len(sym) < 2 {
			continue
		}
		if _, skip := excludedWords[sym]; skip {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		tickers = append(tickers, sym)
		if len(tickers) == MaxRelatedTickers {
			break
		}
	}
	return tickers
}
