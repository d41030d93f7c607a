package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct messages.
const ServiceName = "ordercore.v1.OrderService"

// OrderServiceServer is the server side of ordercore.v1.OrderService.
type OrderServiceServer interface {
	PlaceOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReduceOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExecuteOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RequestCancel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(OrderServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		h := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrderServiceServer), ctx, req.(*structpb.Struct))
		}
		if interceptor == nil {
			return h(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, h)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceOrder", Handler: handler("PlaceOrder", OrderServiceServer.PlaceOrder)},
		{MethodName: "CancelOrder", Handler: handler("CancelOrder", OrderServiceServer.CancelOrder)},
		{MethodName: "ReduceOrder", Handler: handler("ReduceOrder", OrderServiceServer.ReduceOrder)},
		{MethodName: "ExecuteOrder", Handler: handler("ExecuteOrder", OrderServiceServer.ExecuteOrder)},
		{MethodName: "RequestCancel", Handler: handler("RequestCancel", OrderServiceServer.RequestCancel)},
		{MethodName: "GetOrder", Handler: handler("GetOrder", OrderServiceServer.GetOrder)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ordercore/v1/order_service.proto",
}

// Client calls ordercore.v1.OrderService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PlaceOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "PlaceOrder", in, opts...)
}

func (c *Client) CancelOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CancelOrder", in, opts...)
}

func (c *Client) ReduceOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ReduceOrder", in, opts...)
}

func (c *Client) ExecuteOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ExecuteOrder", in, opts...)
}

func (c *Client) RequestCancel(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "RequestCancel", in, opts...)
}

func (c *Client) GetOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetOrder", in, opts...)
}
