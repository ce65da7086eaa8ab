// Package stats computes the dashboard counters from a storage backend.
package stats

import (
	"context"
	"fmt"
	"time"

	"hookboard/internal/storage"
)

// Source is the subset of storage.Storage the counters read from
type Source interface {
	CountEvents(ctx context.Context, opts storage.QueryOptions) (int, error)
	GetStats(ctx context.Context, since time.Time) (map[string]int64, error)
}

type Stats struct {
	Total    int              `json:"total_webhooks"`
	Today    int              `json:"today_webhooks"`
	ByAction map[string]int64 `json:"action_counts"`
}

// StartOfDay returns midnight UTC of the day containing now.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute reads the total, today's count and the per-action counts.
func Compute(ctx context.Context, src Source, now time.Time) (*Stats, error) {
	total, err := src.CountEvents(ctx, storage.QueryOptions{})
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	today, err := src.CountEvents(ctx, storage.QueryOptions{Since: StartOfDay(now)})
	if err != nil {
		return nil, fmt.Errorf("counting today's events: %w", err)
	}

	byAction, err := src.GetStats(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("aggregating by action: %w", err)
	}
	if byAction == nil {
		byAction = make(map[string]int64)
	}

	return &Stats{Total: total, Today: today, ByAction: byAction}, nil
}
