package api

import (
	"net/http"

	"github.com/seenimoa/marketdesk/internal/config"
)

// StatusResponse describes the running configuration without secrets.
type StatusResponse struct {
	Version        string             `json:"version"`
	LLMProvider    string             `json:"llm_provider"`
	LLMModel       string             `json:"llm_model"`
	LLMReady       bool               `json:"llm_ready"`
	Keys           []config.KeyStatus `json:"keys"`
	NewsSource     string             `json:"news_source"`
	CacheBackend   string             `json:"cache_backend"`
	CalendarScrape bool               `json:"calendar_scrape"`
}

// handleStatus reports which backends are active and whether the text
// generation keys are set. Keys are only ever returned masked.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Version:        Version,
		LLMProvider:    s.cfg.LLM.Provider,
		LLMModel:       s.cfg.LLM.Model,
		LLMReady:       config.ActiveKeySet(s.cfg),
		Keys:           config.CheckAPIKeys(s.cfg),
		NewsSource:     s.cfg.News.Source,
		CacheBackend:   s.cfg.Cache.Backend,
		CalendarScrape: !s.cfg.Calendar.DisableScraping,
	})
}
