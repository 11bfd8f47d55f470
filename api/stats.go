package api

import (
	"context"
	"net/http"

	"github.com/askphys/askphys/internal/log"
)

// ChunkCounter reports corpus size. Satisfied by *store.Store.
type ChunkCounter interface {
	Count(ctx context.Context) (int64, error)
}

// StatsResponse is the GET /api/stats response body.
type StatsResponse struct {
	Chunks int64 `json:"chunks"`
}

// StatsHandler reports corpus statistics.
type StatsHandler struct {
	counter ChunkCounter
	logger  log.Logger
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(counter ChunkCounter, logger log.Logger) *StatsHandler {
	return &StatsHandler{counter: counter, logger: logger}
}

// RegisterRoutes registers stats routes on the given mux.
func (h *StatsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stats", h.handleStats)
}

func (h *StatsHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := h.counter.Count(r.Context())
	if err != nil {
		h.logger.Error("stats query failed",
			"error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "vector store not reachable")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Chunks: n})
}
