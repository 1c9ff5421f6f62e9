package tasks

import (
	"fmt"
	"math/rand/v2"

	"github.com/nemanja-m/gopool/internal/pool"
)

const (
	defaultChurnIterations = 1_000_000
	defaultChurnBlockSize  = 1024
)

// ChurnTask allocates and copies a block of memory Iterations times. When
// SignalEvery is positive it raises a signal with probability 1/SignalEvery,
// standing in for a rare successful outcome.
type ChurnTask struct {
	Iterations  int `mapstructure:"iterations"`
	BlockSize   int `mapstructure:"block_size"`
	SignalEvery int `mapstructure:"signal_every"`

	Checksum uint64 `mapstructure:"-"`
	Lucky    bool   `mapstructure:"-"`
}

func newChurnTask(params Params) (pool.Task, error) {
	task := &ChurnTask{
		Iterations: defaultChurnIterations,
		BlockSize:  defaultChurnBlockSize,
	}
	if err := decodeParams(params, task); err != nil {
		return nil, err
	}
	if task.Iterations < 0 || task.BlockSize <= 0 || task.SignalEvery < 0 {
		return nil, fmt.Errorf("%w: iterations and signal_every must not be negative, block_size must be positive", ErrInvalidParams)
	}
	return task, nil
}

func (c *ChurnTask) Execute(tc pool.TaskContext) error {
	src := make([]byte, c.BlockSize)
	for i := range src {
		src[i] = byte(i)
	}

	var sum uint64
	for i := range c.Iterations {
		dst := make([]byte, c.BlockSize)
		copy(dst, src)
		sum += uint64(dst[i%c.BlockSize])
	}
	c.Checksum = sum

	if c.SignalEvery > 0 && rand.IntN(c.SignalEvery) == 0 {
		c.Lucky = true
		tc.RaiseSignal()
	}
	return nil
}

func (c *ChurnTask) Report() map[string]any {
	return map[string]any{
		"iterations": c.Iterations,
		"checksum":   c.Checksum,
		"lucky":      c.Lucky,
	}
}
