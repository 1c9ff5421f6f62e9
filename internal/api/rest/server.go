package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nemanja-m/gopool/internal/metrics"
	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/shared/config"
	"github.com/nemanja-m/gopool/internal/shared/logging"
	"github.com/nemanja-m/gopool/internal/tasks"
)

type API struct {
	pool   pool.Controller
	logger logging.Logger
}

func NewAPI(p pool.Controller, logger logging.Logger) *API {
	return &API{
		pool:   p,
		logger: logger,
	}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tasks", a.submitTask)
	mux.HandleFunc("GET /api/tasks/{id}", a.getTask)
	mux.HandleFunc("DELETE /api/tasks", a.clearCompleted)
	mux.HandleFunc("GET /api/task-kinds", a.listKinds)
	mux.HandleFunc("POST /api/pool/start", a.start)
	mux.HandleFunc("POST /api/pool/stop", a.stop)
	mux.HandleFunc("POST /api/pool/wait", a.wait)
	mux.HandleFunc("POST /api/pool/wait-signal", a.waitSignal)
	mux.HandleFunc("PUT /api/pool/logging", a.setLogging)
	mux.HandleFunc("GET /api/pool/stats", a.stats)
}

// submitTask handles POST /api/tasks
func (a *API) submitTask(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Kind == "" {
		a.respondError(w, http.StatusBadRequest, "validation failed", "task kind is required")
		return
	}

	task, err := tasks.Build(req.Kind, req.Description, req.Params)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	id := a.pool.Submit(task)
	a.respondJSON(w, http.StatusCreated, SubmitTaskResponse{
		ID: uint64(id),
		Links: Links{
			Self: fmt.Sprintf("/api/tasks/%d", id),
		},
	})
}

// getTask handles GET /api/tasks/{id}
func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		a.respondError(w, http.StatusBadRequest, "invalid task ID", r.PathValue("id"))
		return
	}

	res, ok := a.pool.GetResult(pool.ID(id))
	if !ok {
		a.respondError(w, http.StatusNotFound, "task not completed", "task is unknown, still pending or was cleared")
		return
	}

	a.respondJSON(w, http.StatusOK, ToTaskResponse(res))
}

// clearCompleted handles DELETE /api/tasks
func (a *API) clearCompleted(w http.ResponseWriter, r *http.Request) {
	a.pool.ClearCompleted()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listKinds(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, tasks.List())
}

func (a *API) start(w http.ResponseWriter, r *http.Request) {
	a.pool.Start()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) stop(w http.ResponseWriter, r *http.Request) {
	a.pool.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// wait handles POST /api/pool/wait. It blocks until every submitted task completes.
func (a *API) wait(w http.ResponseWriter, r *http.Request) {
	if err := a.pool.WaitContext(r.Context()); err != nil {
		a.respondWaitError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, WaitResponse{Completed: a.pool.Stats().Completed})
}

// waitSignal handles POST /api/pool/wait-signal
func (a *API) waitSignal(w http.ResponseWriter, r *http.Request) {
	id, err := a.pool.WaitForSignalContext(r.Context())
	if err != nil {
		a.respondWaitError(w, err)
		return
	}

	resp := WaitSignalResponse{Signal: uint64(id)}
	if id != pool.NoSignal {
		if res, ok := a.pool.GetResult(id); ok {
			task := ToTaskResponse(res)
			resp.Task = &task
		}
	}
	a.respondJSON(w, http.StatusOK, resp)
}

// setLogging handles PUT /api/pool/logging
func (a *API) setLogging(w http.ResponseWriter, r *http.Request) {
	var req SetLoggingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Enabled == nil {
		a.respondError(w, http.StatusBadRequest, "validation failed", "enabled is required")
		return
	}

	a.pool.SetLoggingEnabled(*req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, ToStatsResponse(a.pool.Stats()))
}

func (a *API) respondWaitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pool.ErrClosed):
		a.respondError(w, http.StatusServiceUnavailable, "pool closed", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.logger.Debug("Wait abandoned by client", "error", err)
		a.respondError(w, http.StatusServiceUnavailable, "wait cancelled", err.Error())
	default:
		a.respondError(w, http.StatusInternalServerError, "wait failed", err.Error())
	}
}

func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Warn("Failed to encode response", "error", err)
	}
}

func (a *API) respondError(w http.ResponseWriter, statusCode int, error string, message string) {
	resp := ErrorResponse{
		Error:   error,
		Message: message,
		Code:    statusCode,
	}
	a.respondJSON(w, statusCode, resp)
}

// NewHandler builds the routed handler with the middleware chain. The metrics
// endpoint is mounted at metricsPath when m is not nil.
func NewHandler(api *API, logger logging.Logger, m *metrics.Metrics, metricsPath string) http.Handler {
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	middlewares := []func(http.Handler) http.Handler{
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	}
	if m != nil {
		mux.Handle("GET "+metricsPath, m.Handler())
		middlewares = append(middlewares, MetricsMiddleware(m))
	}

	return ChainMiddleware(mux, middlewares...)
}

func NewServer(cfg config.RESTConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
