package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "gopool.v1.PoolControl"

// PoolControlServer is the server API for the gopool.v1.PoolControl service.
// Messages are protobuf well-known types, so no generated code is needed.
type PoolControlServer interface {
	Start(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Stop(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	ClearCompleted(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Submit(context.Context, *structpb.Struct) (*wrapperspb.UInt64Value, error)
	Wait(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	WaitForSignal(context.Context, *emptypb.Empty) (*wrapperspb.UInt64Value, error)
	GetResult(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetLogging(context.Context, *wrapperspb.BoolValue) (*emptypb.Empty, error)
}

func RegisterPoolControlServer(s grpc.ServiceRegistrar, srv PoolControlServer) {
	s.RegisterService(&poolControlServiceDesc, srv)
}

var poolControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PoolControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Start", newEmpty, PoolControlServer.Start),
		unaryMethod("Stop", newEmpty, PoolControlServer.Stop),
		unaryMethod("ClearCompleted", newEmpty, PoolControlServer.ClearCompleted),
		unaryMethod("Submit", newStruct, PoolControlServer.Submit),
		unaryMethod("Wait", newEmpty, PoolControlServer.Wait),
		unaryMethod("WaitForSignal", newEmpty, PoolControlServer.WaitForSignal),
		unaryMethod("GetResult", newUInt64, PoolControlServer.GetResult),
		unaryMethod("Stats", newEmpty, PoolControlServer.Stats),
		unaryMethod("SetLogging", newBool, PoolControlServer.SetLogging),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gopool/v1/pool_control.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }
func newStruct() *structpb.Struct { return new(structpb.Struct) }
func newUInt64() *wrapperspb.UInt64Value { return new(wrapperspb.UInt64Value) }
func newBool() *wrapperspb.BoolValue { return new(wrapperspb.BoolValue) }

func unaryMethod[Req, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(PoolControlServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PoolControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PoolControlServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
