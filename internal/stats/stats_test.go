package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookboard/internal/stats"
	"hookboard/internal/storage"
)

func TestStartOfDay(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 59, 59, 999, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), stats.StartOfDay(now))

	// 22:00 on Feb 29 in UTC-5 is already Mar 1 in UTC
	est := time.Date(2024, 2, 29, 22, 0, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), stats.StartOfDay(est))
}

func TestCompute(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	now := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)

	for _, e := range []*storage.Event{
		{Action: storage.ActionPush, Timestamp: now.Add(-24 * time.Hour)},
		{Action: storage.ActionPush, Timestamp: now.Add(-time.Hour)},
		{Action: storage.ActionMerge, Timestamp: stats.StartOfDay(now)},
		{Action: storage.Action("ISSUES"), Timestamp: now},
	} {
		_, err := store.StoreEvent(ctx, e)
		require.NoError(t, err)
	}

	got, err := stats.Compute(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 3, got.Today, "midnight itself counts as today")
	assert.Equal(t, map[string]int64{"PUSH": 2, "MERGE": 1, "ISSUES": 1}, got.ByAction)

	var sum int64
	for _, n := range got.ByAction {
		sum += n
	}
	assert.Equal(t, int64(got.Total), sum)
}

func TestComputeEmpty(t *testing.T) {
	got, err := stats.Compute(context.Background(), storage.NewMemoryStorage(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, got.Total)
	assert.Zero(t, got.Today)
	assert.NotNil(t, got.ByAction)
}

type failingSource struct{}

func (failingSource) CountEvents(context.Context, storage.QueryOptions) (int, error) {
	return 0, errors.New("boom")
}

func (failingSource) GetStats(context.Context, time.Time) (map[string]int64, error) {
	return nil, errors.New("boom")
}

func TestComputeError(t *testing.T) {
	_, err := stats.Compute(context.Background(), failingSource{}, time.Now())
	assert.Error(t, err)
}
