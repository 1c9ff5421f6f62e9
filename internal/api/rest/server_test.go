package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/gopool/internal/metrics"
	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/shared/config"
)

type testServer struct {
	pool    *pool.Pool
	handler http.Handler
}

func newTestServer(t *testing.T, workers int) *testServer {
	t.Helper()
	logger := newMockLogger()
	p, err := pool.NewPool(pool.Config{Workers: workers}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	handler := NewHandler(NewAPI(p, logger), logger, metrics.New(p), "/metrics")
	return &testServer{pool: p, handler: handler}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestSubmitTask(t *testing.T) {
	s := newTestServer(t, 2)

	w := s.do(t, http.MethodPost, "/api/tasks", SubmitTaskRequest{
		Kind:   "sum",
		Params: map[string]any{"offset": 1, "length": 4},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode[SubmitTaskResponse](t, w)
	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, "/api/tasks/1", resp.Links.Self)

	w = s.do(t, http.MethodPost, "/api/tasks", SubmitTaskRequest{Kind: "sleep"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint64(2), decode[SubmitTaskResponse](t, w).ID)
}

func TestSubmitTask_BadRequests(t *testing.T) {
	s := newTestServer(t, 1)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"kind":`},
		{"missing kind", `{}`},
		{"unknown kind", `{"kind":"compile"}`},
		{"bad params", `{"kind":"sleep","params":{"duration":"whenever"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, http.StatusBadRequest, decode[ErrorResponse](t, w).Code)
		})
	}
	assert.Equal(t, uint64(0), s.pool.Stats().Submitted)
}

func TestWaitAndGetTask(t *testing.T) {
	s := newTestServer(t, 2)

	s.do(t, http.MethodPost, "/api/tasks", SubmitTaskRequest{
		Kind:        "sum",
		Description: "first ten",
		Params:      map[string]any{"offset": 0, "length": 10},
	})

	w := s.do(t, http.MethodGet, "/api/tasks/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/pool/wait", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(1), decode[WaitResponse](t, w).Completed)

	w = s.do(t, http.MethodGet, "/api/tasks/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	task := decode[TaskResponse](t, w)
	assert.Equal(t, uint64(1), task.ID)
	assert.Equal(t, "first ten", task.Description)
	assert.Equal(t, "COMPLETED", task.Status)
	assert.Empty(t, task.Error)
	assert.Equal(t, float64(45), task.Output["total"])
}

func TestGetTask_InvalidID(t *testing.T) {
	s := newTestServer(t, 1)

	for _, id := range []string{"abc", "0", "-1"} {
		w := s.do(t, http.MethodGet, "/api/tasks/"+id, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
}

func TestWaitSignal(t *testing.T) {
	s := newTestServer(t, 1)

	s.do(t, http.MethodPost, "/api/tasks", SubmitTaskRequest{Kind: "sleep", Params: map[string]any{"signal": true}})
	s.do(t, http.MethodPost, "/api/tasks", SubmitTaskRequest{Kind: "sleep"})

	w := s.do(t, http.MethodPost, "/api/pool/wait-signal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[WaitSignalResponse](t, w)
	assert.Equal(t, uint64(1), resp.Signal)
	require.NotNil(t, resp.Task)
	assert.Equal(t, "sleep", resp.Task.Description)

	w = s.do(t, http.MethodPost, "/api/pool/wait-signal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[WaitSignalResponse](t, w)
	assert.Equal(t, uint64(0), resp.Signal)
	assert.Nil(t, resp.Task)
}

func TestWait_ClientGone(t *testing.T) {
	s := newTestServer(t, 1)

	s.do(t, http.MethodPost, "/api/tasks", SubmitTaskRequest{Kind: "sleep", Params: map[string]any{"duration": "1s"}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodPost, "/api/pool/wait", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "wait cancelled", decode[ErrorResponse](t, w).Error)
}

func TestWait_PoolClosed(t *testing.T) {
	s := newTestServer(t, 1)
	require.NoError(t, s.pool.Close())
	s.pool.Submit(pool.TaskFunc(func(pool.TaskContext) error { return nil }))

	w := s.do(t, http.MethodPost, "/api/pool/wait", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "pool closed", decode[ErrorResponse](t, w).Error)
}

func TestStartStopAndStats(t *testing.T) {
	s := newTestServer(t, 3)

	w := s.do(t, http.MethodGet, "/api/pool/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[StatsResponse](t, w)
	assert.Equal(t, s.pool.ID().String(), stats.PoolID)
	assert.Equal(t, 3, stats.Workers)
	assert.True(t, stats.Paused)

	w = s.do(t, http.MethodPost, "/api/pool/start", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, decode[StatsResponse](t, s.do(t, http.MethodGet, "/api/pool/stats", nil)).Paused)

	w = s.do(t, http.MethodPost, "/api/pool/stop", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, decode[StatsResponse](t, s.do(t, http.MethodGet, "/api/pool/stats", nil)).Paused)
}

func TestClearCompleted(t *testing.T) {
	s := newTestServer(t, 1)

	s.do(t, http.MethodPost, "/api/tasks", SubmitTaskRequest{Kind: "sleep"})
	s.do(t, http.MethodPost, "/api/pool/wait", nil)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/tasks/1", nil).Code)

	w := s.do(t, http.MethodDelete, "/api/tasks", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/tasks/1", nil).Code)
}

func TestSetLogging(t *testing.T) {
	s := newTestServer(t, 1)

	w := s.do(t, http.MethodPut, "/api/pool/logging", map[string]any{"enabled": true})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPut, "/api/pool/logging", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListKinds(t *testing.T) {
	s := newTestServer(t, 1)

	w := s.do(t, http.MethodGet, "/api/task-kinds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Subset(t, decode[[]string](t, w), []string{"checksum", "churn", "sleep", "sum"})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 1)
	s.do(t, http.MethodGet, "/api/pool/stats", nil)

	w := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "gopool_pool_workers")
	assert.Contains(t, body, `path="GET /api/pool/stats"`)
}

func TestNewServer(t *testing.T) {
	cfg := config.RESTConfig{
		Addr:        ":18080",
		ReadTimeout: 5 * time.Second,
		IdleTimeout: time.Minute,
	}
	srv := NewServer(cfg, http.NotFoundHandler())

	assert.Equal(t, ":18080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Zero(t, srv.WriteTimeout)
	assert.Equal(t, time.Minute, srv.IdleTimeout)
}
