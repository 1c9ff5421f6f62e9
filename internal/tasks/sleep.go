package tasks

import (
	"fmt"
	"time"

	"github.com/nemanja-m/gopool/internal/pool"
)

// SleepTask blocks for Duration and optionally raises a signal afterwards.
type SleepTask struct {
	Duration time.Duration `mapstructure:"duration"`
	Signal   bool          `mapstructure:"signal"`
}

func newSleepTask(params Params) (pool.Task, error) {
	task := &SleepTask{}
	if err := decodeParams(params, task); err != nil {
		return nil, err
	}
	if task.Duration < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", ErrInvalidParams)
	}
	return task, nil
}

func (s *SleepTask) Execute(tc pool.TaskContext) error {
	time.Sleep(s.Duration)
	if s.Signal {
		tc.RaiseSignal()
	}
	return nil
}

func (s *SleepTask) Report() map[string]any {
	return map[string]any{
		"duration": s.Duration.String(),
		"signal":   s.Signal,
	}
}
