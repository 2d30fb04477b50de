package gameserver

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the service name reported alongside the overall ("") status.
const HealthServiceName = "skirmish.Game"

// HealthService serves the standard gRPC health protocol. A background probe
// refreshes the serving status from Service.Health.
type HealthService struct {
	addr     string
	svc      *Service
	interval time.Duration
	logger   *zap.Logger

	health *health.Server
	grpc   *grpc.Server
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHealthService creates a HealthService listening on addr.
//
// Precondition: interval > 0.
func NewHealthService(addr string, svc *Service, interval time.Duration, logger *zap.Logger) *HealthService {
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	ctx, cancel := context.WithCancel(context.Background())
	return &HealthService{
		addr:     addr,
		svc:      svc,
		interval: interval,
		logger:   logger,
		health:   hs,
		grpc:     gs,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Probe sets the serving status from one Service.Health call.
func (h *HealthService) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if !h.svc.Health(ctx).Healthy() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(HealthServiceName, status)
	return status
}

// Server returns the underlying health server.
func (h *HealthService) Server() healthpb.HealthServer { return h.health }

// Start listens and serves until Stop.
func (h *HealthService) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.addr, err)
	}
	h.logger.Info("gRPC health server listening", zap.String("addr", lis.Addr().String()))

	h.Probe(h.ctx)
	go h.probeLoop(h.ctx)

	return h.grpc.Serve(lis)
}

func (h *HealthService) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

// Stop marks every service NOT_SERVING and stops the server gracefully,
// forcing it closed if ctx expires first.
func (h *HealthService) Stop(ctx context.Context) error {
	h.cancel()
	h.health.Shutdown()

	done := make(chan struct{})
	go func() {
		h.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		h.grpc.Stop()
		return ctx.Err()
	}
}
