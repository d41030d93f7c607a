package grpcserver

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type Options struct {
	// Rate is the sustained requests per second; zero disables limiting.
	Rate   float64
	Burst  int
	Logger *slog.Logger
}

// RateLimit rejects calls with ResourceExhausted once l is drained.
func RateLimit(l *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		if !l.Allow() {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for %s", info.FullMethod)
		}
		return h(ctx, req)
	}
}

// Logging records every call at debug level and failures at warn.
func Logging(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := h(ctx, req)
		code := status.Code(err)
		if err != nil && code == codes.Internal {
			log.Warn("grpc call failed", "method", info.FullMethod, "code", code.String(), "err", err)
		} else {
			log.Debug("grpc call", "method", info.FullMethod, "code", code.String(), "took", time.Since(start))
		}
		return resp, err
	}
}

// New builds a grpc.Server serving srv and the standard health service.
func New(srv OrderServiceServer, opts Options) (*grpc.Server, *health.Server) {
	var chain []grpc.UnaryServerInterceptor
	if opts.Logger != nil {
		chain = append(chain, Logging(opts.Logger))
	}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		chain = append(chain, RateLimit(rate.NewLimiter(rate.Limit(opts.Rate), burst)))
	}

	g := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	g.RegisterService(&ServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(g, hs)
	return g, hs
}
