package pool

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nemanja-m/gopool/internal/shared/logging"
	"github.com/nemanja-m/gopool/internal/timer"
)

type Config struct {
	Workers int

	// LogTasks emits a checkpoint line before and after every task execution.
	LogTasks bool
}

// Controller is the set of pool operations exposed to the control surfaces.
type Controller interface {
	ID() uuid.UUID
	Submit(task Task) ID
	Start()
	Stop()
	Wait() error
	WaitContext(ctx context.Context) error
	WaitForSignal() (ID, error)
	WaitForSignalContext(ctx context.Context) (ID, error)
	GetResult(id ID) (*Result, bool)
	ClearCompleted()
	SetLoggingEnabled(enabled bool)
	Stats() Stats
}

// Pool runs submitted tasks on a fixed set of workers. A new pool is paused:
// tasks queue up until Start, Wait or WaitForSignal lets them through.
type Pool struct {
	id      uuid.UUID
	logger  logging.Logger
	timer   *timer.Timer
	workers int

	logTasks atomic.Bool

	// mu guards the state register below. dispatch wakes idle workers, settled
	// wakes the active waiter.
	mu            sync.Mutex
	dispatch      *sync.Cond
	settled       *sync.Cond
	pending       fifo[entry]
	lastID        ID
	completed     uint64
	paused        bool
	stopped       bool
	ignoreSignals bool
	busy          []bool

	store   *completedStore
	signals signalQueue

	// waiter admits one Wait or WaitForSignal call at a time.
	waiter *semaphore.Weighted

	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ Controller = (*Pool)(nil)

func NewPool(cfg Config, logger logging.Logger) (*Pool, error) {
	if cfg.Workers <= 0 {
		return nil, ErrInvalidWorkers
	}

	id := uuid.New()
	p := &Pool{
		id:      id,
		logger:  logger.With("pool_id", id.String()),
		timer:   timer.New(),
		workers: cfg.Workers,
		paused:  true,
		busy:    make([]bool, cfg.Workers),
		store:   newCompletedStore(),
		waiter:  semaphore.NewWeighted(1),
	}
	p.dispatch = sync.NewCond(&p.mu)
	p.settled = sync.NewCond(&p.mu)
	p.logTasks.Store(cfg.LogTasks)

	for worker := range cfg.Workers {
		p.wg.Go(func() {
			p.work(worker)
		})
	}

	p.logger.Info("Pool started", "workers", cfg.Workers)
	return p, nil
}

func (p *Pool) ID() uuid.UUID {
	return p.id
}

// Submit admits a task and returns its identity. It never blocks on execution.
// A task submitted after Close receives an identity but is never run.
func (p *Pool) Submit(task Task) ID {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastID++
	id := p.lastID

	if p.stopped {
		p.logger.Warn("Task submitted to closed pool, dropping it", "task_id", id)
		return id
	}

	p.pending.push(entry{id: id, description: describe(task), task: task})
	p.dispatch.Signal()
	return id
}

// Start resumes dispatch.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumeLocked()
}

// Stop pauses dispatch. Tasks already running finish normally. Stop has no
// effect while Wait is draining the pool.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseLocked()
}

// GetResult returns the finished task with the given identity. It reports false
// for unknown, pending, running and cleared tasks.
func (p *Pool) GetResult(id ID) (*Result, bool) {
	return p.store.Get(id)
}

// ClearCompleted empties the completed store and drops unconsumed signals.
// Pending and running tasks are not affected.
func (p *Pool) ClearCompleted() {
	p.signals.mu.Lock()
	defer p.signals.mu.Unlock()

	signals := p.signals.ids.clear()
	results := p.store.Clear()
	p.logger.Debug("Cleared completed tasks", "results", results, "signals", signals)
}

func (p *Pool) SetLoggingEnabled(enabled bool) {
	p.logTasks.Store(enabled)
}

// Close stops the pool. Pending tasks are discarded, running tasks finish and
// every worker exits before Close returns. Waiters blocked in Wait or
// WaitForSignal return ErrClosed. Close must not be called from a task.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		discarded := p.pending.clear()
		p.dispatch.Broadcast()
		p.settled.Broadcast()
		p.mu.Unlock()

		p.wg.Wait()

		if discarded > 0 {
			p.logger.Warn("Discarded pending tasks on close", "count", discarded)
		}
		p.logger.Info("Pool closed")
	})
	return nil
}

func (p *Pool) raiseSignal(id ID) {
	p.signals.mu.Lock()
	defer p.signals.mu.Unlock()

	p.signals.ids.push(id)

	p.mu.Lock()
	p.pauseLocked()
	p.mu.Unlock()

	p.logger.Debug("Task raised signal", "task_id", id)
}

func (p *Pool) staleSignal(id ID) {
	p.logger.Warn("Signal raised after task finished, ignoring it", "task_id", id)
}

func (p *Pool) resumeLocked() {
	if p.paused {
		p.paused = false
		p.dispatch.Broadcast()
	}
}

func (p *Pool) pauseLocked() {
	if p.ignoreSignals || p.paused {
		return
	}
	p.paused = true
	p.settled.Broadcast()
}

// runnableLocked reports whether an idle worker may take the next pending task.
func (p *Pool) runnableLocked() bool {
	return p.pending.len() > 0 && (!p.paused || p.ignoreSignals)
}

func (p *Pool) drainedLocked() bool {
	return p.completed == uint64(p.lastID)
}

// standbyLocked reports whether the pool is paused with no task in flight.
func (p *Pool) standbyLocked() bool {
	if !p.paused {
		return false
	}
	for _, busy := range p.busy {
		if busy {
			return false
		}
	}
	return true
}
