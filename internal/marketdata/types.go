package marketdata

import "github.com/seenimoa/marketdesk/pkg/models"

// --- Yahoo Finance API types ---

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yfSearchResponse wraps the v1 search API response. News records are
// kept as raw maps: their shape varies between feed generations.
type yfSearchResponse struct {
	Quotes []yfSearchQuote   `json:"quotes"`
	News   []models.RawNews `json:"news"`
}

type yfSearchQuote struct {
	Exchange  string `json:"exchange"`
	ExchDisp  string `json:"exchDisp"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	QuoteType string `json:"quoteType"`
	Symbol    string `json:"symbol"`
	Sector    string `json:"sector"`
	Industry  string `json:"industry"`
}

type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

type yfQuoteResult struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	QuoteType                  string   `json:"quoteType"`
	Currency                   string   `json:"currency"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
}

type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *yfAssetProfile `json:"assetProfile"`
		} `json:"result"`
		Error *yfError `json:"error"`
	} `json:"quoteSummary"`
}

type yfAssetProfile struct {
	Industry string `json:"industry"`
	Sector   string `json:"sector"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	PreviousClose      *float64 `json:"previousClose"`
}

type yfIndicators struct {
	Quote []struct {
		Close []*float64 `json:"close"`
	} `json:"quote"`
}
