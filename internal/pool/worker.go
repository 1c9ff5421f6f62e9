package pool

import (
	"fmt"
	"runtime/debug"
	"time"
)

func (p *Pool) work(worker int) {
	for {
		e, ok := p.next(worker)
		if !ok {
			return
		}

		res := p.execute(worker, e)
		p.store.Save(res)

		p.mu.Lock()
		p.completed++
		p.busy[worker] = false
		p.settled.Broadcast()
		p.mu.Unlock()
	}
}

// next blocks until a task may be dispatched to worker or the pool stops.
func (p *Pool) next(worker int) (entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for !p.stopped && !p.runnableLocked() {
		p.dispatch.Wait()
	}
	if p.stopped {
		return entry{}, false
	}

	e, _ := p.pending.pop()
	p.busy[worker] = true
	return e, true
}

func (p *Pool) execute(worker int, e entry) *Result {
	logTasks := p.logTasks.Load()
	if logTasks {
		p.logger.Info(p.timer.Checkpoint(worker, fmt.Sprintf("start task %d (%s)", e.id, e.description)))
	}

	res := &Result{
		ID:          e.id,
		Description: e.description,
		Status:      StatusAwaiting,
		Task:        e.task,
		Worker:      worker,
		StartedAt:   time.Now(),
	}

	tc := &taskContext{id: e.id, raise: p.raiseSignal, stale: p.staleSignal}
	res.Err = p.run(e, tc)
	tc.done.Store(true)
	res.FinishedAt = time.Now()
	res.Status = StatusCompleted

	if res.Err != nil {
		p.logger.Warn("Task failed", "task_id", e.id, "worker", worker, "error", res.Err)
	}
	if logTasks {
		p.logger.Info(p.timer.Checkpoint(worker, fmt.Sprintf("end task %d (%s)", e.id, e.description)))
	}
	return res
}

// run executes the task body. A panic is recovered into the returned error so
// the worker survives it.
func (p *Pool) run(e entry, tc TaskContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Task panicked", "task_id", e.id, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return e.task.Execute(tc)
}
