// Package grpc reports the service health over the standard gRPC health protocol.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall "" status.
const ServiceName = "gocommerce.admin.v1.CatalogManager"

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthProbe keeps the gRPC health status in line with the store's reachability.
type HealthProbe struct {
	server  *health.Server
	backend Pinger
	timeout time.Duration
	logger  *slog.Logger
}

func NewHealthProbe(backend Pinger, timeout time.Duration, logger *slog.Logger) *HealthProbe {
	return &HealthProbe{
		server:  health.NewServer(),
		backend: backend,
		timeout: timeout,
		logger:  logger.With("component", "grpc_health"),
	}
}

// Register attaches the health service to s.
func (p *HealthProbe) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, p.server)
}

// Check pings the backend once and publishes the resulting status.
func (p *HealthProbe) Check(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := p.backend.Ping(ctx); err != nil {
		p.logger.WarnContext(ctx, "store ping failed", "error", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	p.set(status)
	return status
}

// Run checks every interval until ctx is done, then marks the service as not serving.
func (p *HealthProbe) Run(ctx context.Context, interval time.Duration) error {
	p.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Shutdown()
			return nil
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (p *HealthProbe) Shutdown() {
	p.server.Shutdown()
}

func (p *HealthProbe) set(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	p.server.SetServingStatus("", status)
	p.server.SetServingStatus(ServiceName, status)
}
