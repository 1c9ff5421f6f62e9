package rest

import (
	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/tasks"
)

func ToTaskResponse(res *pool.Result) TaskResponse {
	resp := TaskResponse{
		ID:          uint64(res.ID),
		Description: res.Description,
		Status:      res.Status.String(),
		Worker:      res.Worker,
		StartedAt:   res.StartedAt.UTC(),
		FinishedAt:  res.FinishedAt.UTC(),
		DurationMS:  res.Duration().Milliseconds(),
		Output:      tasks.Report(res.Task),
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return resp
}

func ToStatsResponse(stats pool.Stats) StatsResponse {
	return StatsResponse{
		PoolID:         stats.PoolID.String(),
		Workers:        stats.Workers,
		Busy:           stats.Busy,
		Pending:        stats.Pending,
		Submitted:      stats.Submitted,
		Completed:      stats.Completed,
		Stored:         stats.Stored,
		PendingSignals: stats.PendingSignals,
		Paused:         stats.Paused,
		Stopped:        stats.Stopped,
	}
}
