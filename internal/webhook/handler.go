package webhook

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"hookboard/internal/response"
	"hookboard/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookboard_webhook_received_total",
			Help: "Total number of webhook events received and stored, by action",
		},
		[]string{"action"},
	)

	webhookRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookboard_webhook_rejected_total",
			Help: "Total number of webhook requests rejected, by reason",
		},
		[]string{"reason"},
	)
)

// Response messages
const (
	MessageReceived     = "Webhook received and processed"
	MessageInvalidJSON  = "Invalid JSON payload"
	MessageParseFailed  = "Failed to parse webhook payload"
	MessageTooLarge     = "Payload too large"
	defaultEventType    = "unknown"
	headerGitHubEvent   = "X-GitHub-Event"
	headerGitHubDeliver = "X-GitHub-Delivery"
)

// Publisher receives every stored event, e.g. to push it to live clients
type Publisher interface {
	Publish(event *storage.Event)
}

type Handler struct {
	logger           *slog.Logger
	store            storage.Storage
	normalizer       *Normalizer
	publisher        Publisher
	metricsCollector *storage.DBMetricsCollector
}

type Options struct {
	Logger           *slog.Logger
	Store            storage.Storage
	Normalizer       *Normalizer
	Publisher        Publisher
	MetricsCollector *storage.DBMetricsCollector
}

func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = &Normalizer{}
	}

	return &Handler{
		logger:           logger,
		store:            opts.Store,
		normalizer:       normalizer,
		publisher:        opts.Publisher,
		metricsCollector: opts.MetricsCollector,
	}
}

// ReceiveResponse is the body of a successful delivery
type ReceiveResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      string `json:"id"`
	Action  string `json:"action"`
}

// ServeHTTP handles incoming webhook requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logger.Error("validation error", "error", fmt.Sprintf("invalid method: %s", r.Method))
		response.Error(w, h.logger, http.StatusMethodNotAllowed, fmt.Sprintf("invalid method: %s", r.Method))
		return
	}

	eventType := r.Header.Get(headerGitHubEvent)
	if eventType == "" {
		eventType = defaultEventType
	}
	logger := h.logger.With("event_type", eventType, "delivery", r.Header.Get(headerGitHubDeliver))

	body, err := readBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			logger.Warn("payload too large", "limit", tooLarge.Limit)
			webhookRejected.WithLabelValues("too_large").Inc()
			response.Error(w, logger, http.StatusRequestEntityTooLarge, MessageTooLarge)
		case errors.Is(err, ErrInvalidJSON):
			logger.Warn("invalid payload", "error", err)
			webhookRejected.WithLabelValues("invalid_json").Inc()
			response.Error(w, logger, http.StatusBadRequest, MessageInvalidJSON)
		default:
			webhookRejected.WithLabelValues("internal").Inc()
			response.InternalError(w, logger, fmt.Errorf("reading body: %w", err))
		}
		return
	}

	event, err := h.normalizer.Normalize(body, eventType)
	switch {
	case errors.Is(err, ErrInvalidJSON):
		logger.Warn("invalid payload", "error", err)
		webhookRejected.WithLabelValues("invalid_json").Inc()
		response.Error(w, logger, http.StatusBadRequest, MessageInvalidJSON)
		return
	case errors.Is(err, ErrNotObject):
		logger.Warn("unparseable payload", "error", err)
		webhookRejected.WithLabelValues("not_object").Inc()
		response.Error(w, logger, http.StatusBadRequest, MessageParseFailed)
		return
	case err != nil:
		webhookRejected.WithLabelValues("internal").Inc()
		response.InternalError(w, logger, fmt.Errorf("normalizing event: %w", err))
		return
	}

	id, err := h.store.StoreEvent(r.Context(), event)
	if err != nil {
		webhookRejected.WithLabelValues("internal").Inc()
		response.InternalError(w, logger, fmt.Errorf("storing event: %w", err))
		return
	}

	logger.Info("stored webhook event", "id", id, "action", event.Action, "repository", event.Repository)
	webhookReceived.WithLabelValues(event.Action.String()).Inc()

	if h.publisher != nil {
		h.publisher.Publish(event)
	}
	if h.metricsCollector != nil {
		h.metricsCollector.EnqueueGatherMetrics(r.Context())
	}

	response.JSON(w, logger, http.StatusOK, ReceiveResponse{
		Status:  response.StatusSuccess,
		Message: MessageReceived,
		ID:      id,
		Action:  event.Action.String(),
	})
}
