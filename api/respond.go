package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/seenimoa/marketdesk/internal/analysis"
	"github.com/seenimoa/marketdesk/internal/llm"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Detail: msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// analysisStatus maps an analysis error to its HTTP status and message.
func analysisStatus(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, llm.ErrProviderDown):
		return http.StatusServiceUnavailable, "Text generation is temporarily unavailable"
	case errors.Is(err, llm.ErrNoAPIKey), errors.Is(err, llm.ErrNoProviders):
		return http.StatusInternalServerError, "Text generation is not configured"
	default:
		return http.StatusInternalServerError, "Text generation failed: " + err.Error()
	}
}
