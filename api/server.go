// Package api provides the HTTP server for the marketdesk dashboard.
//
// It exposes the news feed, price snapshots, the economic calendar, symbol
// search and info, mini charts, and the text analysis endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seenimoa/marketdesk/internal/config"
	"github.com/seenimoa/marketdesk/internal/logging"
	"github.com/seenimoa/marketdesk/internal/news"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// NewsService returns the aggregated news feed for a query.
type NewsService interface {
	Aggregate(ctx context.Context, q news.Query) []models.NewsItem
}

// PriceService serves price snapshots and mini charts.
type PriceService interface {
	Prices(ctx context.Context, symbols string) (map[string]models.PriceSnapshot, error)
	MiniChart(ctx context.Context, symbol string) (*models.MiniChart, error)
}

// CalendarService serves upcoming economic events.
type CalendarService interface {
	Events(ctx context.Context) []models.EconomicEvent
}

// MarketService answers symbol search and asset info lookups.
type MarketService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Info(ctx context.Context, symbol string) (*models.AssetInfo, error)
}

// Analyzer runs the text analysis endpoints.
type Analyzer interface {
	Portfolio(ctx context.Context, req models.PortfolioAnalysisRequest) (*models.AnalysisResponse, error)
	News(ctx context.Context, req models.NewsAnalysisRequest) (*models.AnalysisResponse, error)
	Article(ctx context.Context, req models.ArticleAnalysisRequest) (*models.AnalysisResponse, error)
	Chat(ctx context.Context, req models.ChatRequest) (*models.AnalysisResponse, error)
}

// Deps bundles the services the server routes to.
type Deps struct {
	News     NewsService
	Prices   PriceService
	Calendar CalendarService
	Market   MarketService
	Analyzer Analyzer
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{cfg: cfg, deps: deps, logger: logging.OrDefault(logger)}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.cfg.API.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.cfg.API.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.API.RequestTimeout))
	}

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	s.mountRoutes(r)
	// The dashboard's production build talks to the same routes under /api.
	r.Route("/api", s.mountRoutes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

func (s *Server) mountRoutes(r chi.Router) {
	// Market data
	r.Get("/news", s.handleNews)
	r.Get("/prices", s.handlePrices)
	r.Get("/economic-calendar", s.handleCalendar)
	r.Get("/search", s.handleSearch)
	r.Get("/info", s.handleInfo)
	r.Get("/mini-chart", s.handleMiniChart)

	// Analysis
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/news/analyze", s.handleNewsAnalyze)
	r.Post("/news/analyze/article", s.handleArticleAnalyze)
	r.Post("/chat", s.handleChat)
}
