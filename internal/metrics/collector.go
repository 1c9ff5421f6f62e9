package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolCollector exports a pool snapshot on every scrape.
type PoolCollector struct {
	source StatsSource

	workers        *prometheus.Desc
	busy           *prometheus.Desc
	pending        *prometheus.Desc
	submitted      *prometheus.Desc
	completed      *prometheus.Desc
	stored         *prometheus.Desc
	pendingSignals *prometheus.Desc
	paused         *prometheus.Desc
	stopped        *prometheus.Desc
}

func NewPoolCollector(source StatsSource) *PoolCollector {
	labels := prometheus.Labels{"pool_id": source.Stats().PoolID.String()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, nil, labels)
	}

	return &PoolCollector{
		source:         source,
		workers:        desc("workers", "Number of workers in the pool"),
		busy:           desc("busy_workers", "Number of workers currently executing a task"),
		pending:        desc("pending_tasks", "Number of tasks waiting for dispatch"),
		submitted:      desc("submitted_tasks_total", "Total number of submitted tasks"),
		completed:      desc("completed_tasks_total", "Total number of completed tasks"),
		stored:         desc("stored_results", "Number of results held in the completed store"),
		pendingSignals: desc("pending_signals", "Number of raised signals not yet consumed"),
		paused:         desc("paused", "Whether dispatch is paused"),
		stopped:        desc("stopped", "Whether the pool has been closed"),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workers
	ch <- c.busy
	ch <- c.pending
	ch <- c.submitted
	ch <- c.completed
	ch <- c.stored
	ch <- c.pendingSignals
	ch <- c.paused
	ch <- c.stopped
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()

	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(s.Workers))
	ch <- prometheus.MustNewConstMetric(c.busy, prometheus.GaugeValue, float64(s.Busy))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending))
	ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue, float64(s.Submitted))
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(s.Completed))
	ch <- prometheus.MustNewConstMetric(c.stored, prometheus.GaugeValue, float64(s.Stored))
	ch <- prometheus.MustNewConstMetric(c.pendingSignals, prometheus.GaugeValue, float64(s.PendingSignals))
	ch <- prometheus.MustNewConstMetric(c.paused, prometheus.GaugeValue, boolToFloat(s.Paused))
	ch <- prometheus.MustNewConstMetric(c.stopped, prometheus.GaugeValue, boolToFloat(s.Stopped))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
