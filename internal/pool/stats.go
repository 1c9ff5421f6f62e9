package pool

import "github.com/google/uuid"

// Stats is a point-in-time snapshot of the pool state.
type Stats struct {
	PoolID         uuid.UUID
	Workers        int
	Busy           int
	Pending        int
	Submitted      uint64
	Completed      uint64
	Stored         int
	PendingSignals int
	Paused         bool
	Stopped        bool
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	stats := Stats{
		PoolID:    p.id,
		Workers:   p.workers,
		Pending:   p.pending.len(),
		Submitted: uint64(p.lastID),
		Completed: p.completed,
		Paused:    p.paused,
		Stopped:   p.stopped,
	}
	for _, busy := range p.busy {
		if busy {
			stats.Busy++
		}
	}
	p.mu.Unlock()

	stats.Stored = p.store.Len()
	stats.PendingSignals = p.signals.Len()
	return stats
}
