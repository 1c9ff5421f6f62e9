package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/shared/logging"
	"github.com/nemanja-m/gopool/internal/tasks"
)

type PoolService struct {
	pool   pool.Controller
	logger logging.Logger
}

var _ PoolControlServer = (*PoolService)(nil)

func NewPoolService(p pool.Controller, logger logging.Logger) *PoolService {
	return &PoolService{
		pool:   p,
		logger: logger,
	}
}

func (s *PoolService) Start(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.pool.Start()
	return &emptypb.Empty{}, nil
}

func (s *PoolService) Stop(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.pool.Stop()
	return &emptypb.Empty{}, nil
}

func (s *PoolService) ClearCompleted(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.pool.ClearCompleted()
	return &emptypb.Empty{}, nil
}

// Submit expects a struct with a "kind" string, an optional "description"
// string and an optional "params" struct.
func (s *PoolService) Submit(ctx context.Context, req *structpb.Struct) (*wrapperspb.UInt64Value, error) {
	fields := req.GetFields()

	kind := fields["kind"].GetStringValue()
	if kind == "" {
		return nil, status.Error(codes.InvalidArgument, "task kind is required")
	}
	description := fields["description"].GetStringValue()
	params := fields["params"].GetStructValue().AsMap()

	task, err := tasks.Build(kind, description, params)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id := s.pool.Submit(task)
	s.logger.Debug("Task submitted", "task_id", id, "kind", kind)
	return wrapperspb.UInt64(uint64(id)), nil
}

func (s *PoolService) Wait(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.pool.WaitContext(ctx); err != nil {
		return nil, waitError(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *PoolService) WaitForSignal(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.UInt64Value, error) {
	id, err := s.pool.WaitForSignalContext(ctx)
	if err != nil {
		return nil, waitError(err)
	}
	return wrapperspb.UInt64(uint64(id)), nil
}

func (s *PoolService) GetResult(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	res, ok := s.pool.GetResult(pool.ID(req.GetValue()))
	if !ok {
		return nil, status.Errorf(codes.NotFound, "task %d has no result", req.GetValue())
	}

	out, err := structpb.NewStruct(resultFields(res))
	if err != nil {
		s.logger.Error("Failed to encode task result", "task_id", res.ID, "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *PoolService) Stats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats := s.pool.Stats()
	return structpb.NewStruct(map[string]any{
		"pool_id":         stats.PoolID.String(),
		"workers":         stats.Workers,
		"busy":            stats.Busy,
		"pending":         stats.Pending,
		"submitted":       stats.Submitted,
		"completed":       stats.Completed,
		"stored":          stats.Stored,
		"pending_signals": stats.PendingSignals,
		"paused":          stats.Paused,
		"stopped":         stats.Stopped,
	})
}

func (s *PoolService) SetLogging(ctx context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	s.pool.SetLoggingEnabled(req.GetValue())
	return &emptypb.Empty{}, nil
}

func resultFields(res *pool.Result) map[string]any {
	fields := map[string]any{
		"id":          uint64(res.ID),
		"description": res.Description,
		"status":      res.Status.String(),
		"worker":      res.Worker,
		"started_at":  res.StartedAt.UTC().Format(time.RFC3339Nano),
		"finished_at": res.FinishedAt.UTC().Format(time.RFC3339Nano),
		"duration_ms": res.Duration().Milliseconds(),
	}
	if res.Err != nil {
		fields["error"] = res.Err.Error()
	}
	if output := tasks.Report(res.Task); output != nil {
		fields["output"] = output
	}
	return fields
}

func waitError(err error) error {
	if errors.Is(err, pool.ErrClosed) {
		return status.Error(codes.Unavailable, err.Error())
	}
	if st := status.FromContextError(err); st.Code() != codes.Unknown {
		return st.Err()
	}
	return status.Error(codes.Internal, err.Error())
}
