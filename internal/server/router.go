// Package server assembles hookboard's HTTP surface.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hookboard/internal/api"
	"hookboard/internal/feed"
	"hookboard/internal/graphql"
	"hookboard/internal/metrics"
	"hookboard/internal/security"
	"hookboard/internal/storage"
	"hookboard/internal/webhook"
)

// Options wires the router's dependencies.
type Options struct {
	Logger           *slog.Logger
	Store            api.Store
	Hub              *feed.Hub
	MetricsCollector *storage.DBMetricsCollector
	// Funnel rewrites RemoteAddr from Tailscale Funnel connections; only
	// meaningful when the server's ConnContext is security.ConnContext.
	Funnel bool
}

// NewRouter builds the chi router serving every hookboard endpoint.
func NewRouter(opts Options) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var publisher webhook.Publisher
	if opts.Hub != nil {
		publisher = opts.Hub
	}

	webhookHandler := webhook.NewHandler(webhook.Options{
		Logger:           logger,
		Store:            opts.Store,
		Publisher:        publisher,
		MetricsCollector: opts.MetricsCollector,
	})
	apiHandler := api.NewHandler(opts.Store, logger)

	graphqlHandler, err := graphql.NewHandler(opts.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("creating graphql handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if opts.Funnel {
		r.Use(security.FunnelRealIP(logger))
	}
	r.Use(metrics.Middleware)

	r.Handle("/webhook/receiver", webhookHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/webhooks", apiHandler.ListWebhooks)
		r.Get("/webhooks/{id}", apiHandler.GetWebhook)
		r.Get("/stats", apiHandler.GetStats)
	})
	r.Get("/health", apiHandler.Health)

	r.Handle("/graphql", graphqlHandler)
	if opts.Hub != nil {
		r.Get("/ws", opts.Hub.ServeHTTP)
	}
	r.Handle("/metrics", promhttp.Handler())

	return r, nil
}
