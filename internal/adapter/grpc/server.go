package grpc

import (
	"net"

	"github.com/Dhee091/Housing-Management-sub000/internal/adapter/grpc/middleware"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported through the health service.
const ServiceName = "rental.listing.v1.ListingService"

// Server is the operational gRPC endpoint: health checks and reflection.
type Server struct {
	server *grpc.Server
	health *health.Server
	logger *logger.Logger
}

func NewServer(appLogger *logger.Logger) *Server {
	log := appLogger.Named("GRPCServer")
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(middleware.LoggingInterceptor(log)),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, hs)
	reflection.Register(server)

	return &Server{server: server, health: hs, logger: log}
}

// Serve marks the service as serving and blocks until the listener closes.
func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("GRPCServer: serving", zap.String("addr", lis.Addr().String()))
	return s.server.Serve(lis)
}

// Stop reports NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
	s.logger.Info("GRPCServer: stopped")
}
