package rest

import (
	"time"
)

type SubmitTaskRequest struct {
	Kind        string         `json:"kind"`
	Description string         `json:"description,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
}

type SubmitTaskResponse struct {
	ID    uint64 `json:"id"`
	Links Links  `json:"links"`
}

type Links struct {
	Self string `json:"self"`
}

type TaskResponse struct {
	ID          uint64         `json:"id"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
	Worker      int            `json:"worker"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	DurationMS  int64          `json:"duration_ms"`
	Output      map[string]any `json:"output,omitempty"`
}

type WaitResponse struct {
	Completed uint64 `json:"completed"`
}

type WaitSignalResponse struct {
	// Signal is 0 when no task raised a signal.
	Signal uint64        `json:"signal"`
	Task   *TaskResponse `json:"task,omitempty"`
}

type SetLoggingRequest struct {
	Enabled *bool `json:"enabled"`
}

type StatsResponse struct {
	PoolID         string `json:"pool_id"`
	Workers        int    `json:"workers"`
	Busy           int    `json:"busy"`
	Pending        int    `json:"pending"`
	Submitted      uint64 `json:"submitted"`
	Completed      uint64 `json:"completed"`
	Stored         int    `json:"stored"`
	PendingSignals int    `json:"pending_signals"`
	Paused         bool   `json:"paused"`
	Stopped        bool   `json:"stopped"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
