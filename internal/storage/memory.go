package storage

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemoryStorage keeps events in process memory. It is the fallback backend
// of EventStore and never returns an error from its operations.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []*Event
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// StoreEvent appends a copy of event and assigns its 1-based position as ID.
func (m *MemoryStorage) StoreEvent(_ context.Context, event *Event) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *event
	stored.ID = strconv.Itoa(len(m.events) + 1)
	m.events = append(m.events, &stored)

	event.ID = stored.ID
	return stored.ID, nil
}

func (m *MemoryStorage) GetEvent(_ context.Context, id string) (*Event, error) {
	pos, err := strconv.Atoi(id)
	if err != nil {
		return nil, ErrEventNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if pos < 1 || pos > len(m.events) {
		return nil, ErrEventNotFound
	}
	event := *m.events[pos-1]
	return &event, nil
}

// ListEvents returns events newest first. Events with equal timestamps are
// ordered by insertion, most recent first.
func (m *MemoryStorage) ListEvents(_ context.Context, opts QueryOptions) ([]*Event, error) {
	events := m.snapshot(opts.Since)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	return paginate(events, opts.Limit, opts.Offset), nil
}

func (m *MemoryStorage) CountEvents(_ context.Context, opts QueryOptions) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if opts.Since.IsZero() {
		return len(m.events), nil
	}

	count := 0
	for _, event := range m.events {
		if !event.Timestamp.Before(opts.Since) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStorage) GetStats(_ context.Context, since time.Time) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]int64)
	for _, event := range m.events {
		if !since.IsZero() && event.Timestamp.Before(since) {
			continue
		}
		stats[string(event.Action)]++
	}
	return stats, nil
}

// Len returns the number of stored events
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

func (m *MemoryStorage) Ping(context.Context) error {
	return nil
}

func (m *MemoryStorage) CreateSchema(context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// snapshot copies the events received at or after since, most recently
// inserted first.
func (m *MemoryStorage) snapshot(since time.Time) []*Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*Event, 0, len(m.events))
	for i := len(m.events) - 1; i >= 0; i-- {
		if !since.IsZero() && m.events[i].Timestamp.Before(since) {
			continue
		}
		event := *m.events[i]
		events = append(events, &event)
	}
	return events
}

// paginate applies offset and limit to an ordered slice. Out of range
// offsets yield an empty, non-nil slice.
func paginate(events []*Event, limit, offset int) []*Event {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(events) {
		return []*Event{}
	}
	events = events[offset:]
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events
}
