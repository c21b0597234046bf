package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/seenimoa/marketdesk/internal/logging"
	"github.com/seenimoa/marketdesk/internal/marketdata"
	"github.com/seenimoa/marketdesk/internal/news"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// Version is reported by the health endpoints. Set at build time.
var Version = "dev"

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "marketdesk API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "healthy", Version: Version})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := 0
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "page must be a non-negative integer")
			return
		}
		page = n
	}
	items := s.deps.News.Aggregate(r.Context(), news.Query{
		Category: q.Get("category"),
		Symbol:   strings.TrimSpace(q.Get("symbol")),
		Page:     page,
	})
	if items == nil {
		items = []models.NewsItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Prices.Prices(r.Context(), r.URL.Query().Get("symbols"))
	if err != nil {
		logging.WithRequestID(r.Context(), s.logger).Error("price lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	events := s.deps.Calendar.Events(r.Context())
	if events == nil {
		events = []models.EconomicEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, []models.SearchResult{})
		return
	}
	results, err := s.deps.Market.Search(r.Context(), query)
	if err != nil {
		logging.WithRequestID(r.Context(), s.logger).Warn("search failed",
			slog.String("query", query), slog.String("error", err.Error()))
		results = nil
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	info, err := s.deps.Market.Info(r.Context(), symbol)
	if err != nil {
		if !errors.Is(err, marketdata.ErrNotFound) {
			logging.WithRequestID(r.Context(), s.logger).Warn("info lookup failed",
				slog.String("symbol", symbol), slog.String("error", err.Error()))
		}
		writeError(w, http.StatusNotFound, "Asset not found")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type chartError struct {
	Error  string `json:"error"`
	Symbol string `json:"symbol"`
}

func (s *Server) handleMiniChart(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	chart, err := s.deps.Prices.MiniChart(r.Context(), symbol)
	if err != nil {
		logging.WithRequestID(r.Context(), s.logger).Debug("mini chart unavailable",
			slog.String("symbol", symbol), slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, chartError{Error: "Could not fetch data", Symbol: symbol})
		return
	}
	writeJSON(w, http.StatusOK, chart)
}
