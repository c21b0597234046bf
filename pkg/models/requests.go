package models

// PortfolioItem is one holding submitted for portfolio analysis.
type PortfolioItem struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	Value        float64 `json:"value"`
	Sector       string  `json:"sector,omitempty"`
	Industry     string  `json:"industry,omitempty"`
}

// PortfolioAnalysisRequest is the body of POST /analyze.
type PortfolioAnalysisRequest struct {
	Portfolio []PortfolioItem `json:"portfolio"`
	Mode      string          `json:"mode,omitempty"`
	Language  string          `json:"language,omitempty"`
	Model     string          `json:"model,omitempty"`
}

// NewsBrief is the subset of a news item the analysis endpoints accept.
type NewsBrief struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher,omitempty"`
	Link      string `json:"link,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// NewsAnalysisRequest is the body of POST /news/analyze.
type NewsAnalysisRequest struct {
	News     []NewsBrief `json:"news"`
	Language string      `json:"language,omitempty"`
	Model    string      `json:"model,omitempty"`
}

// ArticleAnalysisRequest is the body of POST /news/analyze/article.
type ArticleAnalysisRequest struct {
	Article  NewsBrief `json:"article"`
	Language string    `json:"language,omitempty"`
	Model    string    `json:"model,omitempty"`
}

// ChatMessage is one prior turn of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message  string        `json:"message"`
	History  []ChatMessage `json:"history,omitempty"`
	Model    string        `json:"model,omitempty"`
	Language string        `json:"language,omitempty"`
}

// AnalysisResponse is the reply of every analysis endpoint.
type AnalysisResponse struct {
	Analysis string `json:"analysis"`
}
