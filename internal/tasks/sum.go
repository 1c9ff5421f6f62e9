package tasks

import (
	"fmt"

	"github.com/nemanja-m/gopool/internal/pool"
)

// SumTask adds up the integers in [Offset, Offset+Length).
type SumTask struct {
	Offset int64 `mapstructure:"offset"`
	Length int64 `mapstructure:"length"`

	Total int64 `mapstructure:"-"`
}

func NewSumTask(offset, length int64) *SumTask {
	return &SumTask{Offset: offset, Length: length}
}

func newSumTask(params Params) (pool.Task, error) {
	task := &SumTask{}
	if err := decodeParams(params, task); err != nil {
		return nil, err
	}
	if task.Length < 0 {
		return nil, fmt.Errorf("%w: length must not be negative", ErrInvalidParams)
	}
	return task, nil
}

func (s *SumTask) Execute(tc pool.TaskContext) error {
	var total int64
	for v := s.Offset; v < s.Offset+s.Length; v++ {
		total += v
	}
	s.Total = total
	return nil
}

func (s *SumTask) Report() map[string]any {
	return map[string]any{
		"offset": s.Offset,
		"length": s.Length,
		"total":  s.Total,
	}
}
