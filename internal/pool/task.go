package pool

import (
	"fmt"
	"sync/atomic"
)

// ID identifies a task within one pool. Identities start at 1 and are never reused.
type ID uint64

// NoSignal is the reserved identity returned when no signal is pending.
const NoSignal ID = 0

type Status int

const (
	StatusAwaiting Status = iota
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusAwaiting:
		return "AWAITING"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// TaskContext is handed to a task for the duration of its Execute call.
type TaskContext interface {
	// ID is the identity the pool assigned to the running task.
	ID() ID

	// RaiseSignal reports the running task to the next signal waiter and asks the
	// pool to stop dispatching. Call it at most once per execution. Calls made
	// after Execute returns are ignored.
	RaiseSignal()
}

// Task is a unit of work. Execute runs exactly once, on exactly one worker.
// Results are kept on the task value itself and read back with ResultAs.
type Task interface {
	Execute(tc TaskContext) error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(tc TaskContext) error

func (f TaskFunc) Execute(tc TaskContext) error {
	return f(tc)
}

// Describer is implemented by tasks that carry a human-readable label.
type Describer interface {
	Description() string
}

type namedTask struct {
	Task
	description string
}

// Named attaches a description to task. ResultAs sees through the wrapper.
func Named(description string, task Task) Task {
	return &namedTask{Task: task, description: description}
}

func (n *namedTask) Description() string {
	return n.description
}

func (n *namedTask) Unwrap() Task {
	return n.Task
}

func describe(task Task) string {
	if d, ok := task.(Describer); ok {
		return d.Description()
	}
	return fmt.Sprintf("%T", task)
}

// entry is an admitted task waiting in the pending queue.
type entry struct {
	id          ID
	description string
	task        Task
}

type taskContext struct {
	id    ID
	raise func(ID)
	stale func(ID)

	// done is set once Execute returns. Signals raised after that are dropped.
	done atomic.Bool
}

func (tc *taskContext) ID() ID {
	return tc.id
}

func (tc *taskContext) RaiseSignal() {
	if tc.done.Load() {
		tc.stale(tc.id)
		return
	}
	tc.raise(tc.id)
}
