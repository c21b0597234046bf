package models

// SearchResult is one quote match from a symbol search.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ExchDisp string `json:"exchDisp"`
	Currency string `json:"currency"`
}

// AssetInfo is the descriptive record behind GET /info.
type AssetInfo struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Sector   string  `json:"sector"`
	Industry string  `json:"industry"`
	Type     string  `json:"type"`
}

// PriceSnapshot is a point-in-time price with its change versus the previous close.
type PriceSnapshot struct {
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// NewPriceSnapshot derives change and changePercent from price and previous close.
// changePercent is 0 when previousClose is 0.
func NewPriceSnapshot(price, previousClose float64) PriceSnapshot {
	s := PriceSnapshot{
		Price:         price,
		PreviousClose: previousClose,
		Change:        price - previousClose,
	}
	if previousClose != 0 {
		s.ChangePercent = s.Change / previousClose * 100
	}
	return s
}

// MiniChart backs the ticker hover tooltip on the dashboard.
type MiniChart struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Sparkline     []float64 `json:"sparkline"`
}
