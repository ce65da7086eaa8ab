package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hookboard_db_events_count",
		Help: "Number of stored webhook events by action",
	}, []string{"action"})

	storedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hookboard_storage_stored_events_total",
		Help: "Total number of webhook events stored, by backend",
	}, []string{"backend"})

	storageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hookboard_storage_fallbacks_total",
		Help: "Total number of storage operations served from memory after a durable backend failure",
	}, []string{"operation"})

	storageDegraded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hookboard_storage_degraded",
		Help: "1 while the durable backend is failing and memory is serving writes",
	})
)

type DBMetricsCollector struct {
	storage Storage
	logger  *slog.Logger
	queue   chan struct{}
}

func NewDBMetricsCollector(storage Storage, logger *slog.Logger) *DBMetricsCollector {
	return &DBMetricsCollector{
		storage: storage,
		logger:  logger,
		queue:   make(chan struct{}, 1),
	}
}

func (c *DBMetricsCollector) GatherMetrics(ctx context.Context) error {
	c.logger.Debug("gathering metrics")

	stats, err := c.storage.GetStats(ctx, time.Time{})
	if err != nil {
		return err
	}

	for action, count := range stats {
		eventCount.WithLabelValues(action).Set(float64(count))
	}

	return nil
}

func (c *DBMetricsCollector) EnqueueGatherMetrics(ctx context.Context) {
	select {
	case c.queue <- struct{}{}:
		c.logger.Debug("enqueued metrics job")
	default:
		c.logger.Debug("metrics job already pending")
	}
}

// Run gathers metrics whenever a job is enqueued and, if interval > 0, on a
// fixed schedule. It blocks until ctx is done.
func (c *DBMetricsCollector) Run(ctx context.Context, interval time.Duration) error {
	if c.storage == nil {
		c.logger.Debug("storage is nil, not starting metrics collection")
		return nil
	}

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
		c.logger.Debug("starting periodic metrics collector", "interval", interval)
	}

	c.EnqueueGatherMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("stopped metrics collector")
			return nil
		case <-tick:
			c.EnqueueGatherMetrics(ctx)
		case <-c.queue:
			if err := c.GatherMetrics(ctx); err != nil {
				c.logger.Error("failed to gather metrics", "error", err)
			}
		}
	}
}
