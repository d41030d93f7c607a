package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"ordercore/domain/command"
	"ordercore/domain/orderbook"
	"ordercore/service"
)

// Orders is the part of service.OrderService exposed over gRPC.
type Orders interface {
	PlaceOrder(cmd command.Place) (service.View, error)
	CancelOrder(cmd command.Cancel) (service.View, error)
	ReduceOrder(cmd command.Reduce) (service.View, error)
	ExecuteOrder(cmd command.Execute) (service.View, error)
	RequestCancel(id uint64, size int64) (service.View, error)
	Order(id uint64) (service.View, error)
}

// Server adapts Orders to ordercore.v1.OrderService.
type Server struct {
	svc Orders
}

func NewServer(svc Orders) *Server {
	return &Server{svc: svc}
}

// -------------------- Commands --------------------

func (s *Server) PlaceOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cmd, err := toPlace(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return reply(s.svc.PlaceOrder(cmd))
}

func (s *Server) CancelOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return reply(s.svc.CancelOrder(toCancel(req)))
}

func (s *Server) ReduceOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return reply(s.svc.ReduceOrder(toReduce(req)))
}

func (s *Server) ExecuteOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cmd, err := toExecute(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return reply(s.svc.ExecuteOrder(cmd))
}

// RequestCancel marks a cancel as in flight before the gateway sends
// the CancelOrder that completes it.
func (s *Server) RequestCancel(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fields(req)
	return reply(s.svc.RequestCancel(uint64(num(f, "order_id")), num(f, "size")))
}

// -------------------- Queries --------------------

func (s *Server) GetOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return reply(s.svc.Order(uint64(num(fields(req), "order_id"))))
}

// -------------------- Errors --------------------

func reply(v service.View, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return fromView(v), nil
}

// toStatus maps service errors to gRPC status codes.
func toStatus(err error) error {
	if re, ok := service.IsReject(err); ok {
		switch re.Reason {
		case orderbook.RejectReasonDuplicateID:
			return status.Error(codes.AlreadyExists, err.Error())
		case orderbook.RejectReasonRiskLimit:
			return status.Error(codes.ResourceExhausted, err.Error())
		default:
			return status.Error(codes.InvalidArgument, err.Error())
		}
	}
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrTerminated):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
