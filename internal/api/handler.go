package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hookboard/internal/message"
	"hookboard/internal/response"
	"hookboard/internal/stats"
	"hookboard/internal/storage"
)

// DefaultLimit is the page size when the client does not ask for one
const DefaultLimit = 50

// ServiceName is reported by the health endpoint
const ServiceName = "hookboard"

// Store is the storage the read API serves from
type Store interface {
	storage.Storage
	Status(ctx context.Context) string
}

// Handler handles API requests
type Handler struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(store Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListResponse is the body of GET /api/webhooks
type ListResponse struct {
	Status string          `json:"status"`
	Data   []message.Entry `json:"data"`
	Count  int             `json:"count"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	Service       string `json:"service"`
	StorageStatus string `json:"storage_status"`
}

// ListWebhooks handles GET /api/webhooks
func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, ok := parseNonNegative(query.Get("limit"), DefaultLimit)
	if !ok {
		response.Error(w, h.logger, http.StatusBadRequest, "Invalid limit parameter")
		return
	}
	if limit == 0 {
		limit = DefaultLimit
	}

	offset, ok := parseNonNegative(query.Get("offset"), 0)
	if !ok {
		response.Error(w, h.logger, http.StatusBadRequest, "Invalid offset parameter")
		return
	}

	events, err := h.store.ListEvents(r.Context(), storage.QueryOptions{Limit: limit, Offset: offset})
	if err != nil {
		h.logger.Error("Error listing webhooks", "error", err)
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to fetch webhooks")
		return
	}

	entries := message.NewEntries(events)
	response.JSON(w, h.logger, http.StatusOK, ListResponse{
		Status: response.StatusSuccess,
		Data:   entries,
		Count:  len(entries),
	})
}

// GetWebhook handles GET /api/webhooks/{id}
func (h *Handler) GetWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.store.GetEvent(r.Context(), id)
	if storage.IsNotFound(err) {
		response.Error(w, h.logger, http.StatusNotFound, "Webhook not found")
		return
	}
	if err != nil {
		h.logger.Error("Error getting webhook", "id", id, "error", err)
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to fetch webhook")
		return
	}

	response.OK(w, h.logger, message.NewEntry(event))
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	s, err := stats.Compute(r.Context(), h.store, h.now())
	if err != nil {
		h.logger.Error("Error getting stats", "error", err)
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	response.OK(w, h.logger, s)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Timestamp:     h.now().Format(time.RFC3339),
		Service:       ServiceName,
		StorageStatus: h.store.Status(r.Context()),
	})
}

// parseNonNegative parses an optional non-negative integer query value
func parseNonNegative(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
