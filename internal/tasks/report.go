package tasks

import "github.com/nemanja-m/gopool/internal/pool"

// Reporter is implemented by tasks that expose their outcome as plain values.
type Reporter interface {
	Report() map[string]any
}

// Report returns the outcome of a finished task, looking through pool.Named.
// Tasks that do not implement Reporter report nothing.
func Report(task pool.Task) map[string]any {
	for task != nil {
		if r, ok := task.(Reporter); ok {
			return r.Report()
		}
		u, ok := task.(interface{ Unwrap() pool.Task })
		if !ok {
			break
		}
		task = u.Unwrap()
	}
	return nil
}
