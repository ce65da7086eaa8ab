package storage

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Backend status values reported by EventStore.Status
const (
	StatusConnected = "connected"
	StatusDegraded  = "degraded"
	StatusMemory    = "memory"
)

const (
	backendDurable = "durable"
	backendMemory  = "memory"
)

// result is the outcome of one durable backend call.
type result[T any] struct {
	value T
	err   error
}

func attempt[T any](fn func() (T, error)) result[T] {
	value, err := fn()
	return result[T]{value: value, err: err}
}

// EventStore tries the durable backend for every operation and answers from
// memory when the durable backend faults. Events written to memory during an
// outage are not copied back; reads merge them in once the durable backend
// recovers.
type EventStore struct {
	durable  Storage
	memory   *MemoryStorage
	logger   *slog.Logger
	degraded atomic.Bool
}

// NewEventStore creates an EventStore. durable may be nil, in which case
// every operation is served from memory.
func NewEventStore(durable Storage, memory *MemoryStorage, logger *slog.Logger) *EventStore {
	if memory == nil {
		memory = NewMemoryStorage()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventStore{
		durable: durable,
		memory:  memory,
		logger:  logger,
	}
}

// Degraded reports whether the last durable call failed
func (s *EventStore) Degraded() bool {
	return s.degraded.Load()
}

// Status pings the durable backend and reports which backend is serving.
func (s *EventStore) Status(ctx context.Context) string {
	if s.durable == nil {
		return StatusMemory
	}
	if !s.healthy("ping", s.durable.Ping(ctx)) {
		return StatusDegraded
	}
	return StatusConnected
}

func (s *EventStore) StoreEvent(ctx context.Context, event *Event) (string, error) {
	if s.durable != nil {
		r := attempt(func() (string, error) { return s.durable.StoreEvent(ctx, event) })
		if s.healthy("store", r.err) {
			storedEvents.WithLabelValues(backendDurable).Inc()
			return r.value, nil
		}
	}

	id, err := s.memory.StoreEvent(ctx, event)
	if err != nil {
		return "", err
	}
	storedEvents.WithLabelValues(backendMemory).Inc()
	return id, nil
}

func (s *EventStore) GetEvent(ctx context.Context, id string) (*Event, error) {
	if s.durable != nil {
		r := attempt(func() (*Event, error) { return s.durable.GetEvent(ctx, id) })
		if IsNotFound(r.err) {
			s.markHealthy()
		} else if s.healthy("get", r.err) {
			return r.value, nil
		}
	}
	return s.memory.GetEvent(ctx, id)
}

func (s *EventStore) ListEvents(ctx context.Context, opts QueryOptions) ([]*Event, error) {
	if s.durable == nil {
		return s.memory.ListEvents(ctx, opts)
	}

	if s.memory.Len() == 0 {
		r := attempt(func() ([]*Event, error) { return s.durable.ListEvents(ctx, opts) })
		if s.healthy("list", r.err) {
			return r.value, nil
		}
		return s.memory.ListEvents(ctx, opts)
	}

	// Both backends hold events: read enough of each to cover the requested
	// page, merge, then paginate.
	window := QueryOptions{Since: opts.Since}
	if opts.Limit > 0 {
		window.Limit = max(opts.Offset, 0) + opts.Limit
	}

	r := attempt(func() ([]*Event, error) { return s.durable.ListEvents(ctx, window) })
	if !s.healthy("list", r.err) {
		return s.memory.ListEvents(ctx, opts)
	}

	fromMemory, err := s.memory.ListEvents(ctx, window)
	if err != nil {
		return nil, err
	}
	return paginate(mergeNewestFirst(r.value, fromMemory), opts.Limit, opts.Offset), nil
}

func (s *EventStore) CountEvents(ctx context.Context, opts QueryOptions) (int, error) {
	fromMemory, err := s.memory.CountEvents(ctx, opts)
	if err != nil {
		return 0, err
	}
	if s.durable == nil {
		return fromMemory, nil
	}

	r := attempt(func() (int, error) { return s.durable.CountEvents(ctx, opts) })
	if !s.healthy("count", r.err) {
		return fromMemory, nil
	}
	return r.value + fromMemory, nil
}

func (s *EventStore) GetStats(ctx context.Context, since time.Time) (map[string]int64, error) {
	stats, err := s.memory.GetStats(ctx, since)
	if err != nil {
		return nil, err
	}
	if s.durable == nil {
		return stats, nil
	}

	r := attempt(func() (map[string]int64, error) { return s.durable.GetStats(ctx, since) })
	if !s.healthy("stats", r.err) {
		return stats, nil
	}
	for action, count := range r.value {
		stats[action] += count
	}
	return stats, nil
}

func (s *EventStore) Ping(ctx context.Context) error {
	if s.durable == nil {
		return nil
	}
	return s.durable.Ping(ctx)
}

func (s *EventStore) CreateSchema(ctx context.Context) error {
	if s.durable == nil {
		return nil
	}
	return s.durable.CreateSchema(ctx)
}

func (s *EventStore) Close() error {
	if s.durable == nil {
		return nil
	}
	return s.durable.Close()
}

// healthy inspects the outcome of a durable call. A failure is logged,
// counted and marks the store degraded.
func (s *EventStore) healthy(op string, err error) bool {
	if err == nil {
		s.markHealthy()
		return true
	}

	s.logger.Error("durable storage failed, using memory", "operation", op, "error", err)
	storageFallbacks.WithLabelValues(op).Inc()
	if !s.degraded.Swap(true) {
		storageDegraded.Set(1)
		s.logger.Warn("storage degraded")
	}
	return false
}

func (s *EventStore) markHealthy() {
	if s.degraded.Swap(false) {
		storageDegraded.Set(0)
		s.logger.Info("durable storage recovered")
	}
}

// mergeNewestFirst merges two newest-first slices. Memory events sort first
// on equal timestamps.
func mergeNewestFirst(durable, memory []*Event) []*Event {
	merged := make([]*Event, 0, len(durable)+len(memory))
	i, j := 0, 0
	for i < len(durable) && j < len(memory) {
		if durable[i].Timestamp.After(memory[j].Timestamp) {
			merged = append(merged, durable[i])
			i++
		} else {
			merged = append(merged, memory[j])
			j++
		}
	}
	merged = append(merged, durable[i:]...)
	return append(merged, memory[j:]...)
}
