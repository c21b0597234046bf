package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/seenimoa/marketdesk/internal/logging"
	"github.com/seenimoa/marketdesk/pkg/models"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.PortfolioAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondAnalysis(w, r, func(ctx context.Context) (*models.AnalysisResponse, error) {
		return s.deps.Analyzer.Portfolio(ctx, req)
	})
}

func (s *Server) handleNewsAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.NewsAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondAnalysis(w, r, func(ctx context.Context) (*models.AnalysisResponse, error) {
		return s.deps.Analyzer.News(ctx, req)
	})
}

func (s *Server) handleArticleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.ArticleAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondAnalysis(w, r, func(ctx context.Context) (*models.AnalysisResponse, error) {
		return s.deps.Analyzer.Article(ctx, req)
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondAnalysis(w, r, func(ctx context.Context) (*models.AnalysisResponse, error) {
		return s.deps.Analyzer.Chat(ctx, req)
	})
}

func (s *Server) respondAnalysis(w http.ResponseWriter, r *http.Request, run func(context.Context) (*models.AnalysisResponse, error)) {
	resp, err := run(r.Context())
	if err != nil {
		status, msg := analysisStatus(err)
		if status >= http.StatusInternalServerError {
			logging.WithRequestID(r.Context(), s.logger).Error("analysis failed",
				slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
