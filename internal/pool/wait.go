package pool

import "context"

// Wait runs every submitted task to completion, ignoring signals raised in the
// meantime, then leaves the pool paused. Tasks submitted while Wait is blocked
// are drained too.
func (p *Pool) Wait() error {
	return p.WaitContext(context.Background())
}

func (p *Pool) WaitContext(ctx context.Context) error {
	if err := p.waiter.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.waiter.Release(1)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.ignoreSignals = true
	p.resumeLocked()

	err := p.awaitLocked(ctx, p.drainedLocked)

	p.ignoreSignals = false
	p.pauseLocked()
	return err
}

// WaitForSignal lets the pool run until a task raises a signal or every task
// completes. It returns the identity of one signalling task, or NoSignal when
// none is pending. Each call consumes at most one signal.
func (p *Pool) WaitForSignal() (ID, error) {
	return p.WaitForSignalContext(context.Background())
}

func (p *Pool) WaitForSignalContext(ctx context.Context) (ID, error) {
	if err := p.waiter.Acquire(ctx, 1); err != nil {
		return NoSignal, err
	}
	defer p.waiter.Release(1)

	p.signals.mu.Lock()
	p.mu.Lock()
	p.ignoreSignals = false
	if p.signals.ids.len() == 0 {
		p.resumeLocked()
	} else {
		p.pauseLocked()
	}
	p.signals.mu.Unlock()

	err := p.awaitLocked(ctx, func() bool {
		return p.drainedLocked() || p.standbyLocked()
	})
	p.mu.Unlock()

	if err != nil {
		return NoSignal, err
	}
	return p.popSignal(), nil
}

func (p *Pool) popSignal() ID {
	p.signals.mu.Lock()
	defer p.signals.mu.Unlock()

	id, ok := p.signals.ids.pop()
	if !ok {
		return NoSignal
	}
	return id
}

// awaitLocked blocks on settled until ready holds, the pool is closed or ctx is
// done. p.mu must be held.
func (p *Pool) awaitLocked(ctx context.Context, ready func() bool) error {
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.settled.Broadcast()
	})
	defer stop()

	for {
		if ready() {
			return nil
		}
		if p.stopped {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p.settled.Wait()
	}
}
