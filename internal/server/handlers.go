package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/pipeline"
	"github.com/desertthunder/auxq/internal/shared"
)

// RecommendationHandler serves the pipeline's aggregate and streaming
// endpoints. Implements the Handler interface for registration with a Router.
type RecommendationHandler struct {
	engine pipeline.Recommender
	logger *log.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler backed by the given engine.
func NewRecommendationHandler(engine pipeline.Recommender, logger *log.Logger) *RecommendationHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &RecommendationHandler{engine: engine, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *RecommendationHandler) Routes() []string {
	return []string{"/api/recommendations", "/api/recommendations/stream"}
}

// ServeHTTP dispatches to the aggregate or streaming endpoint by path.
func (h *RecommendationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	if strings.HasSuffix(r.URL.Path, "/stream") {
		h.stream(w, r, req)
		return
	}
	h.recommend(w, r, req)
}

// recommend runs the synchronous pipeline and writes the aggregate result.
func (h *RecommendationHandler) recommend(w http.ResponseWriter, r *http.Request, req models.Request) {
	result, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		h.logger.Error("recommendation failed", "seed", req.SeedText, "error", err)
		writeJSONError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// stream runs the pipeline incrementally and relays its events as
// Server-Sent Events: one `data: {json}` frame per event, blank-line
// separated, flushed as they arrive. Client disconnects cancel the run via
// the request context.
func (h *RecommendationHandler) stream(w http.ResponseWriter, r *http.Request, req models.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported by connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range h.engine.Stream(r.Context(), req) {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("failed to encode event", "type", event.Type, "error", err)
			continue
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			// Client went away; the context cancellation winds the run down.
			return
		}
		flusher.Flush()
	}
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRequest parses and validates the pipeline request body.
func decodeRequest(r *http.Request) (models.Request, error) {
	var req models.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: invalid JSON body: %v", shared.ErrInvalidInput, err)
	}
	if strings.TrimSpace(req.SeedText) == "" {
		return req, fmt.Errorf("%w: seed_song is required", shared.ErrInvalidInput)
	}
	if req.Count < 0 {
		return req, fmt.Errorf("%w: count must be positive", shared.ErrInvalidInput)
	}
	return req, nil
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrAuthExpired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrSeedNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNoActiveDevice):
		return http.StatusConflict
	case errors.Is(err, shared.ErrCatalogUnavailable), errors.Is(err, shared.ErrAIUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
