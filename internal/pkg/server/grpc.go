package server

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kiosk404/oracle/pkg/logger"
)

// GRPCAPIServer wraps a grpc.Server with its listen address.
type GRPCAPIServer struct {
	*grpc.Server
	address string
	health  *health.Server
}

// NewGRPCAPIServer registers the standard health service on srv.
func NewGRPCAPIServer(srv *grpc.Server, address string) *GRPCAPIServer {
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &GRPCAPIServer{Server: srv, address: address, health: hs}
}

// SetServingStatus updates the health status reported for service.
func (s *GRPCAPIServer) SetServingStatus(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, status)
}

func (s *GRPCAPIServer) Run() {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		logger.Fatal("[Server] failed to listen: %s", err.Error())
	}

	logger.Info("[Server] start grpc server at %s", s.address)

	go func() {
		if err := s.Serve(listen); err != nil {
			logger.Fatal("[Server] failed to start grpc server: %s", err.Error())
		}
	}()
}

func (s *GRPCAPIServer) Stop() {
	s.health.Shutdown()
	s.GracefulStop()
	logger.Info("[Server] GRPC server on %s stopped", s.address)
}
