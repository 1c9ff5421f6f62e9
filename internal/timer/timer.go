// Package timer produces the human-readable progress lines printed around task
// execution: who checked in, what happened, the wall clock, and the elapsed time
// since the previous checkpoint and since the timer was created.
package timer

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

const timeLayout = "02.01.2006-15:04:05"

// Timer remembers its creation time and the time of the latest checkpoint.
// It is safe for concurrent use.
type Timer struct {
	mu    sync.Mutex
	now   func() time.Time
	start time.Time
	last  time.Time
}

func New() *Timer {
	return NewWithClock(time.Now)
}

// NewWithClock creates a timer reading time from now.
func NewWithClock(now func() time.Time) *Timer {
	t := now()
	return &Timer{now: now, start: t, last: t}
}

// Checkpoint formats a progress line for message and moves the checkpoint mark.
// A negative worker renders as "main".
func (t *Timer) Checkpoint(worker int, message string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if message == "" {
		message = "<none>"
	}
	who := "main"
	if worker >= 0 {
		who = strconv.Itoa(worker)
	}

	line := fmt.Sprintf("worker %5s ::: %30s ::: time %s ::: since last %s ::: total %s",
		who,
		message,
		now.Format(timeLayout),
		FormatDuration(now.Sub(t.last)),
		FormatDuration(now.Sub(t.start)),
	)
	t.last = now
	return line
}

// FormatDuration renders d as hh:mm:ss.mmm. Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
