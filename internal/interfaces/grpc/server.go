// Package grpc exposes the gateway's gRPC surface: the standard health
// service, whose status mirrors the inference backend, and optional server
// reflection.
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

const defaultGracefulTimeout = 10 * time.Second

// Health checkers poll often and hold connections open between polls.
var (
	serverKeepalive = keepalive.ServerParameters{
		MaxConnectionIdle: 10 * time.Minute,
		Time:              2 * time.Minute,
		Timeout:           20 * time.Second,
	}
	clientKeepalivePolicy = keepalive.EnforcementPolicy{
		MinTime:             10 * time.Second,
		PermitWithoutStream: true,
	}
)

const (
	stateIdle int32 = iota
	stateServing
	stateStopped
)

// Option configures the gRPC Server.
type Option func(*Server)

// WithLogger sets the logger for the gRPC server.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHost binds the listener to host instead of all interfaces.
func WithHost(host string) Option {
	return func(s *Server) { s.host = host }
}

// WithGracefulTimeout bounds how long Stop waits for open streams.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.grace = d
		}
	}
}

// Server is the gateway's gRPC endpoint.
type Server struct {
	srv    *grpc.Server
	lis    net.Listener
	health *health.Server
	log    logging.Logger
	host   string
	grace  time.Duration
	state  atomic.Int32
}

// NewServer binds a TCP listener on cfg.Port and registers the health
// service (and reflection when cfg.Reflection is set). Every service starts
// NOT_SERVING until a HealthMonitor reports the backend.
func NewServer(cfg *config.GRPCConfig, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("grpc config must not be nil")
	}

	s := &Server{log: logging.NewNopLogger(), grace: defaultGracefulTimeout}
	for _, opt := range opts {
		opt(s)
	}

	addr := net.JoinHostPort(s.host, fmt.Sprint(cfg.Port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}
	s.lis = lis

	s.srv = grpc.NewServer(
		grpc.KeepaliveParams(serverKeepalive),
		grpc.KeepaliveEnforcementPolicy(clientKeepalivePolicy),
		grpc.ChainUnaryInterceptor(unaryInterceptor(s.log)),
		grpc.ChainStreamInterceptor(streamInterceptor(s.log)),
	)

	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.srv, s.health)
	for _, svc := range []string{"", BackendServiceName} {
		s.health.SetServingStatus(svc, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	if cfg.Reflection {
		reflection.Register(s.srv)
		s.log.Debug("grpc reflection enabled")
	}
	return s, nil
}

// Health returns the health server so a HealthMonitor can drive it.
func (s *Server) Health() *health.Server {
	return s.health
}

// Start serves until Stop. It returns nil after a graceful stop, and also
// when Stop already ran.
func (s *Server) Start() error {
	if !s.state.CompareAndSwap(stateIdle, stateServing) {
		if s.state.Load() == stateStopped {
			return nil
		}
		return fmt.Errorf("grpc: server already started")
	}

	s.log.Info("grpc server listening", logging.String("addr", s.lis.Addr().String()))
	if err := s.srv.Serve(s.lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// Stop marks every service NOT_SERVING and drains open RPCs. If ctx or the
// graceful period expires first the remaining connections are cut.
func (s *Server) Stop(ctx context.Context) error {
	prev := s.state.Swap(stateStopped)
	switch prev {
	case stateStopped:
		return nil
	case stateIdle:
		return s.lis.Close()
	}

	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, s.grace)
	defer cancel()

	drained := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(drained)
	}()

	select {
	case <-drained:
		s.log.Info("grpc server stopped")
	case <-ctx.Done():
		s.log.Warn("grpc drain timed out, closing connections", logging.Duration("grace", s.grace))
		s.srv.Stop()
	}
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// quietMethod reports methods whose calls are not logged: health polling and
// reflection are chatty and carry no request data.
func quietMethod(method string) bool {
	return strings.HasPrefix(method, "/grpc.health.v1.Health/") ||
		strings.HasPrefix(method, "/grpc.reflection.")
}

// recoverRPC turns a panic into codes.Internal.
func recoverRPC(log logging.Logger, method string, err *error) {
	if r := recover(); r != nil {
		log.Error("grpc handler panic",
			logging.String("method", method),
			logging.Any("panic", r),
			logging.String("stack", string(debug.Stack())))
		*err = status.Error(codes.Internal, "internal error")
	}
}

func logRPC(log logging.Logger, method string, start time.Time, err error) {
	if quietMethod(method) {
		return
	}
	code := status.Code(err)
	fields := []logging.Field{
		logging.String("method", method),
		logging.String("code", code.String()),
		logging.Duration("duration", time.Since(start)),
	}
	if code == codes.Internal || code == codes.Unknown {
		log.Error("grpc call", append(fields, logging.Err(err))...)
		return
	}
	log.Info("grpc call", fields...)
}

func unaryInterceptor(log logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() { logRPC(log, info.FullMethod, start, err) }()
		defer recoverRPC(log, info.FullMethod, &err)
		return handler(ctx, req)
	}
}

func streamInterceptor(log logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		start := time.Now()
		defer func() { logRPC(log, info.FullMethod, start, err) }()
		defer recoverRPC(log, info.FullMethod, &err)
		return handler(srv, ss)
	}
}

//Personal.AI order the ending
