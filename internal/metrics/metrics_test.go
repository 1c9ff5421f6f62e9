package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/gopool/internal/pool"
)

type staticSource struct {
	stats pool.Stats
}

func (s *staticSource) Stats() pool.Stats {
	return s.stats
}

func TestPoolCollector(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	source := &staticSource{stats: pool.Stats{
		PoolID:         id,
		Workers:        4,
		Busy:           2,
		Pending:        7,
		Submitted:      12,
		Completed:      3,
		Stored:         3,
		PendingSignals: 1,
		Paused:         true,
	}}

	collector := NewPoolCollector(source)
	assert.Equal(t, 9, testutil.CollectAndCount(collector))

	expected := `
# HELP gopool_pool_pending_tasks Number of tasks waiting for dispatch
# TYPE gopool_pool_pending_tasks gauge
gopool_pool_pending_tasks{pool_id="00000000-0000-0000-0000-000000000001"} 7
# HELP gopool_pool_paused Whether dispatch is paused
# TYPE gopool_pool_paused gauge
gopool_pool_paused{pool_id="00000000-0000-0000-0000-000000000001"} 1
# HELP gopool_pool_completed_tasks_total Total number of completed tasks
# TYPE gopool_pool_completed_tasks_total counter
gopool_pool_completed_tasks_total{pool_id="00000000-0000-0000-0000-000000000001"} 3
`
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"gopool_pool_pending_tasks", "gopool_pool_paused", "gopool_pool_completed_tasks_total")
	assert.NoError(t, err)

	source.stats.Pending = 0
	source.stats.Paused = false
	expected = `
# HELP gopool_pool_pending_tasks Number of tasks waiting for dispatch
# TYPE gopool_pool_pending_tasks gauge
gopool_pool_pending_tasks{pool_id="00000000-0000-0000-0000-000000000001"} 0
`
	assert.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected), "gopool_pool_pending_tasks"))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(&staticSource{stats: pool.Stats{PoolID: uuid.New(), Workers: 2}})
	m.ObserveRequest(http.MethodGet, "GET /api/pool/stats", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "GET /api/pool/stats", http.StatusOK, 5*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /api/pool/stats", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "gopool_pool_workers{")
	assert.Contains(t, body, "gopool_http_requests_total{")
	assert.Contains(t, body, "go_goroutines")
}
