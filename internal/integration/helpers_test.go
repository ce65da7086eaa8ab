package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"hookboard/internal/server"
	"hookboard/internal/storage"
	"hookboard/internal/testutil"
)

var errInsertFailed = errors.New("insert failed")

// failingInserts wraps a durable store and fails every StoreEvent from the
// failFrom-th call onward. Reads keep working.
type failingInserts struct {
	storage.Storage
	failFrom int64
	calls    atomic.Int64
}

func (f *failingInserts) StoreEvent(ctx context.Context, e *storage.Event) (string, error) {
	if f.calls.Add(1) >= f.failFrom {
		return "", errInsertFailed
	}
	return f.Storage.StoreEvent(ctx, e)
}

// newServer starts the full router over store.
func newServer(t testing.TB, store *storage.EventStore) *httptest.Server {
	t.Helper()

	logger := testutil.DiscardLogger()
	router, err := server.NewRouter(server.Options{
		Logger:           logger,
		Store:            store,
		MetricsCollector: storage.NewDBMetricsCollector(store, logger),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type receiveResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      string `json:"id"`
	Action  string `json:"action"`
}

func deliver(t testing.TB, srv *httptest.Server, event, payload string) (int, receiveResponse) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/webhook/receiver", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if event != "" {
		req.Header.Set("X-GitHub-Event", event)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body receiveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func getJSON(t testing.TB, srv *httptest.Server, path string, v interface{}) int {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}
