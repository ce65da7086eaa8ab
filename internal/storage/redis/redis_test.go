package redis_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookboard/internal/storage"
	"hookboard/internal/storage/redis"
)

// newTestStore connects to HOOKBOARD_TEST_REDIS_URL under a random key prefix
// and removes the keys afterwards.
func newTestStore(t *testing.T) *redis.Storage {
	t.Helper()

	uri := os.Getenv("HOOKBOARD_TEST_REDIS_URL")
	if uri == "" {
		t.Skip("HOOKBOARD_TEST_REDIS_URL not set")
	}

	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	require.NoError(t, client.Ping(context.Background()).Err())

	prefix := "hookboard-test-" + uuid.NewString()
	store := redis.NewFromClient(client, prefix)
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		store.Close()
	})
	return store
}

func newEvent(action storage.Action, author string, ts time.Time) *storage.Event {
	return &storage.Event{
		Action:     action,
		Author:     author,
		ToBranch:   storage.StringPtr("main"),
		Timestamp:  ts,
		Repository: "octo/hello",
		EventType:  "push",
		RawPayload: json.RawMessage(`{"ref":"refs/heads/main"}`),
	}
}

func TestStoreAndGetEvent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ts := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	id, err := store.StoreEvent(ctx, newEvent(storage.ActionPush, "octocat", ts))
	require.NoError(t, err)

	stored, err := store.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, "octocat", stored.Author)
	assert.Nil(t, stored.FromBranch)
	assert.Equal(t, "main", *stored.ToBranch)
	assert.True(t, ts.Equal(stored.Timestamp))
	assert.Equal(t, `{"ref":"refs/heads/main"}`, string(stored.RawPayload))

	_, err = store.GetEvent(ctx, "missing")
	assert.True(t, storage.IsNotFound(err))
}

func TestListCountAndStats(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fixtures := []struct {
		action storage.Action
		author string
		at     time.Time
	}{
		{storage.ActionPush, "a", base},
		{storage.ActionPullRequest, "b", base.Add(time.Minute)},
		{storage.ActionMerge, "c", base.Add(2 * time.Minute)},
		{storage.ActionPush, "d", base.Add(2 * time.Minute)},
	}
	for _, f := range fixtures {
		_, err := store.StoreEvent(ctx, newEvent(f.action, f.author, f.at))
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		opts storage.QueryOptions
		want []string
	}{
		{"all", storage.QueryOptions{}, []string{"d", "c", "b", "a"}},
		{"limit", storage.QueryOptions{Limit: 1}, []string{"d"}},
		{"offset only", storage.QueryOptions{Offset: 2}, []string{"b", "a"}},
		{"since", storage.QueryOptions{Since: base.Add(time.Minute)}, []string{"d", "c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.ListEvents(ctx, tt.opts)
			require.NoError(t, err)
			got := make([]string, 0, len(events))
			for _, e := range events {
				got = append(got, e.Author)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	count, err := store.CountEvents(ctx, storage.QueryOptions{Since: base.Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	stats, err := store.GetStats(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"PUSH": 2, "PULL_REQUEST": 1, "MERGE": 1}, stats)

	stats, err = store.GetStats(ctx, base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"PUSH": 1, "MERGE": 1}, stats)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := redis.New(context.Background(), "http://localhost:6379")
	assert.Error(t, err)
}

func TestPayloadStoredVerbatim(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	payload := "{\n  \"ref\": \"refs/heads/main\",\n  \"ref\": \"refs/heads/other\",\n  \"head_commit\": {\"message\": \"a <b> & c\"}\n}"
	event := newEvent(storage.ActionPush, "octocat", time.Now().UTC())
	event.RawPayload = json.RawMessage(payload)

	id, err := store.StoreEvent(ctx, event)
	require.NoError(t, err)

	stored, err := store.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, payload, string(stored.RawPayload))

	listed, err := store.ListEvents(ctx, storage.QueryOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, payload, string(listed[0].RawPayload))
}
