package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/shared/config"
)

// Client talks to a PoolControl service.
type Client struct {
	conn *grpc.ClientConn
	addr string
}

func NewClient(cfg config.ClientConfig, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(
			keepalive.ClientParameters{
				Time:                cfg.KeepaliveTime,
				Timeout:             cfg.KeepaliveTimeout,
				PermitWithoutStream: true,
			},
		),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pool: %w", err)
	}

	return &Client{
		conn: conn,
		addr: cfg.Addr,
	}, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, fullMethod(method), in, out)
}

func (c *Client) Start(ctx context.Context) error {
	return c.invoke(ctx, "Start", &emptypb.Empty{}, &emptypb.Empty{})
}

func (c *Client) Stop(ctx context.Context) error {
	return c.invoke(ctx, "Stop", &emptypb.Empty{}, &emptypb.Empty{})
}

func (c *Client) ClearCompleted(ctx context.Context) error {
	return c.invoke(ctx, "ClearCompleted", &emptypb.Empty{}, &emptypb.Empty{})
}

func (c *Client) Submit(ctx context.Context, kind, description string, params map[string]any) (pool.ID, error) {
	fields := map[string]any{
		"kind":        kind,
		"description": description,
	}
	if len(params) > 0 {
		fields["params"] = params
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return pool.NoSignal, fmt.Errorf("invalid params: %w", err)
	}

	resp := &wrapperspb.UInt64Value{}
	if err := c.invoke(ctx, "Submit", req, resp); err != nil {
		return pool.NoSignal, err
	}
	return pool.ID(resp.GetValue()), nil
}

func (c *Client) Wait(ctx context.Context) error {
	return c.invoke(ctx, "Wait", &emptypb.Empty{}, &emptypb.Empty{})
}

func (c *Client) WaitForSignal(ctx context.Context) (pool.ID, error) {
	resp := &wrapperspb.UInt64Value{}
	if err := c.invoke(ctx, "WaitForSignal", &emptypb.Empty{}, resp); err != nil {
		return pool.NoSignal, err
	}
	return pool.ID(resp.GetValue()), nil
}

func (c *Client) GetResult(ctx context.Context, id pool.ID) (map[string]any, error) {
	resp := &structpb.Struct{}
	if err := c.invoke(ctx, "GetResult", wrapperspb.UInt64(uint64(id)), resp); err != nil {
		return nil, err
	}
	return resp.AsMap(), nil
}

func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	resp := &structpb.Struct{}
	if err := c.invoke(ctx, "Stats", &emptypb.Empty{}, resp); err != nil {
		return nil, err
	}
	return resp.AsMap(), nil
}

func (c *Client) SetLogging(ctx context.Context, enabled bool) error {
	return c.invoke(ctx, "SetLogging", wrapperspb.Bool(enabled), &emptypb.Empty{})
}

func (c *Client) Addr() string {
	return c.addr
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
