package rpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServerOptions configure the gRPC transport
type ServerOptions struct {
	// MaxRecvMsgSize caps a single received message in bytes
	MaxRecvMsgSize int
	// Limiter bounds concurrently running inference streams; nil disables it
	Limiter *semaphore.Weighted
	Logger  *zap.Logger
}

// Server serves the inference service next to the standard health service
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer registers svc and the health service on a new grpc.Server.
// Both report SERVING until Stop or GracefulStop is called.
func NewServer(svc FasttextServingServer, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	interceptors := []grpc.StreamServerInterceptor{LoggingStreamInterceptor(logger)}
	if opts.Limiter != nil {
		interceptors = append(interceptors, LimitStreamInterceptor(opts.Limiter))
	}

	serverOpts := []grpc.ServerOption{grpc.ChainStreamInterceptor(interceptors...)}
	if opts.MaxRecvMsgSize > 0 {
		serverOpts = append(serverOpts, grpc.MaxRecvMsgSize(opts.MaxRecvMsgSize))
	}

	grpcServer := grpc.NewServer(serverOpts...)
	grpcServer.RegisterService(&ServiceDesc, svc)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
	}
}

// Serve accepts connections on lis until the server stops
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop reports NOT_SERVING and waits for running streams, or
// stops hard once ctx is done
func (s *Server) GracefulStop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
}

// LimitStreamInterceptor makes inference streams wait for a semaphore slot.
// Other services, such as health checks, are not limited.
func LimitStreamInterceptor(sem *semaphore.Weighted) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if info.FullMethod != PredictMethod && info.FullMethod != SentenceVectorMethod {
			return handler(srv, ss)
		}
		if err := sem.Acquire(ss.Context(), 1); err != nil {
			return status.FromContextError(err).Err()
		}
		defer sem.Release(1)
		return handler(srv, ss)
	}
}

// LoggingStreamInterceptor logs every finished stream
func LoggingStreamInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		switch code {
		case codes.OK:
			logger.Info("Stream served", fields...)
		case codes.Canceled, codes.DeadlineExceeded, codes.InvalidArgument, codes.ResourceExhausted:
			logger.Warn("Stream rejected", append(fields, zap.Error(err))...)
		default:
			logger.Error("Stream failed", append(fields, zap.Error(err))...)
		}
		return err
	}
}
