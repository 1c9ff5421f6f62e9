package service

import (
	"context"
	"time"

	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/shared/logging"
)

type StatsSource interface {
	Stats() pool.Stats
}

// StatsReporter periodically logs a pool snapshot and warns when the pool has
// been sitting in standby with queued tasks for longer than stallTimeout.
type StatsReporter struct {
	interval     time.Duration
	stallTimeout time.Duration
	source       StatsSource
	logger       logging.Logger
	now          func() time.Time

	stalledSince time.Time
	warned       bool
}

func NewStatsReporter(
	interval time.Duration,
	stallTimeout time.Duration,
	source StatsSource,
	logger logging.Logger,
) *StatsReporter {
	return &StatsReporter{
		interval:     interval,
		stallTimeout: stallTimeout,
		source:       source,
		logger:       logger,
		now:          time.Now,
	}
}

// Start reports on every tick until ctx is done. It returns immediately when
// the interval is not positive.
func (r *StatsReporter) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *StatsReporter) report() {
	s := r.source.Stats()
	r.logger.Info("Pool stats",
		"workers", s.Workers,
		"busy", s.Busy,
		"pending", s.Pending,
		"submitted", s.Submitted,
		"completed", s.Completed,
		"stored", s.Stored,
		"pending_signals", s.PendingSignals,
		"paused", s.Paused,
	)

	if s.Stopped || !s.Paused || s.Busy > 0 || s.Pending == 0 {
		r.stalledSince = time.Time{}
		r.warned = false
		return
	}

	now := r.now()
	if r.stalledSince.IsZero() {
		r.stalledSince = now
	}
	if !r.warned && r.stallTimeout > 0 && now.Sub(r.stalledSince) >= r.stallTimeout {
		r.warned = true
		r.logger.Warn("Pool paused with pending tasks",
			"pending", s.Pending,
			"pending_signals", s.PendingSignals,
			"since", r.stalledSince.UTC().Format(time.RFC3339),
		)
	}
}
