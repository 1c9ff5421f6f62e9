package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/shared/logging"
	"github.com/nemanja-m/gopool/internal/tasks"
	"github.com/nemanja-m/gopool/pkg/partition"
)

func main() {
	var (
		mode        = flag.String("mode", "churn", "demo to run: churn or sum")
		workers     = flag.Int("workers", 10, "number of pool workers")
		numTasks    = flag.Int("tasks", 20, "number of churn tasks to submit")
		signals     = flag.Int("signals", 3, "number of signals to wait for in churn mode")
		iterations  = flag.Int("iterations", 1_000_000, "allocations per churn task")
		signalEvery = flag.Int("signal-every", 5, "a churn task signals with probability 1/signal-every")
		total       = flag.Int64("total", 10_000_000, "size of the range to sum in sum mode")
		chunk       = flag.Int64("chunk", 1_000_000, "chunk size in sum mode")
		logTasks    = flag.Bool("log-tasks", true, "log a checkpoint line around every task")
		logLevel    = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		slog.Error("Invalid log level", "error", err)
		os.Exit(1)
	}
	logger := logging.NewWriterLogger(os.Stdout, level, "text")

	p, err := pool.NewPool(pool.Config{Workers: *workers, LogTasks: *logTasks}, logger)
	if err != nil {
		logger.Fatal("Failed to create pool", "error", err)
	}
	defer p.Close()

	switch *mode {
	case "churn":
		err = runChurn(p, logger, *numTasks, *signals, *iterations, *signalEvery)
	case "sum":
		err = runSum(p, logger, *total, *chunk, *workers)
	default:
		err = fmt.Errorf("unknown mode: %q", *mode)
	}
	if err != nil {
		logger.Error("Run failed", "mode", *mode, "error", err)
		p.Close()
		os.Exit(1)
	}
}

// runChurn submits memory churn tasks and waits for a number of rare successes.
func runChurn(p *pool.Pool, logger logging.Logger, numTasks, signals, iterations, signalEvery int) error {
	p.Start()
	for i := range numTasks {
		task, err := tasks.Build("churn", fmt.Sprintf("ChurnTask_%d", i+1), tasks.Params{
			"iterations":   iterations,
			"signal_every": signalEvery,
		})
		if err != nil {
			return err
		}
		p.Submit(task)
	}

	for range signals {
		id, err := p.WaitForSignal()
		if err != nil {
			return err
		}
		if id == pool.NoSignal {
			logger.Info("All tasks finished without further signals")
			break
		}

		churn, err := pool.ResultAs[*tasks.ChurnTask](p, id)
		if err != nil {
			return err
		}
		logger.Info("Signal received", "task_id", id, "checksum", churn.Checksum)
	}
	return nil
}

// runSum adds up [0, total) in parallel and checks the result against the
// closed form.
func runSum(p *pool.Pool, logger logging.Logger, total, chunk int64, workers int) error {
	parts := partition.Split(total, chunk, workers)
	ids := make([]pool.ID, 0, len(parts))
	for _, part := range parts {
		desc := fmt.Sprintf("sum [%d, %d)", part.Offset, part.End())
		ids = append(ids, p.Submit(pool.Named(desc, tasks.NewSumTask(part.Offset, part.Length))))
	}

	if err := p.Wait(); err != nil {
		return err
	}

	var sum int64
	for _, id := range ids {
		task, err := pool.ResultAs[*tasks.SumTask](p, id)
		if err != nil {
			return err
		}
		sum += task.Total
	}

	want := total * (total - 1) / 2
	if sum != want {
		return fmt.Errorf("sum mismatch: got %d, want %d", sum, want)
	}
	logger.Info("Sum computed", "total", total, "parts", len(parts), "sum", sum)
	return nil
}
