package grpc

import (
	"fmt"
	"log/slog"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/auth"
)

// ServerOptions configures the optional parts of the gRPC server.
type ServerOptions struct {
	// JWT enables bearer auth on every method except health.
	JWT *auth.JWTService
	// Creds enables TLS.
	Creds credentials.TransportCredentials
}

// Server wraps a gRPC server with the engine service and health registered.
type Server struct {
	gs     *grpclib.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler EngineServiceServer, logger *slog.Logger, opts ServerOptions) *Server {
	var serverOpts []grpclib.ServerOption
	if opts.JWT != nil {
		serverOpts = append(serverOpts, grpclib.ChainUnaryInterceptor(
			auth.UnaryAuthInterceptor(opts.JWT,
				"/grpc.health.v1.Health/Check",
				"/grpc.health.v1.Health/Watch",
			),
			auth.UnaryRoleInterceptor(WriteMethods, auth.WriteRoles...),
		))
	}
	if opts.Creds != nil {
		serverOpts = append(serverOpts, grpclib.Creds(opts.Creds))
	}

	gs := grpclib.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	RegisterEngineServiceServer(gs, handler)

	return &Server{gs: gs, health: healthSrv, logger: logger}
}

// Serve accepts connections on addr until the server stops.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener accepts connections on lis.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop marks the service not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}
