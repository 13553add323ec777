package service

import (
	"context"
	"sort"
	"time"

	"supermarket-inventory/internal/logger"

	"go.opentelemetry.io/otel"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// CheckFunc probes one dependency; nil means healthy.
type CheckFunc func(ctx context.Context) error

type HealthService struct {
	checks  map[string]CheckFunc
	timeout time.Duration
}

type HealthStatus struct {
	Status     string
	Components map[string]string
}

var HealthServiceTracer = otel.Tracer("HealthService")

func NewHealthService(checks map[string]CheckFunc) *HealthService {
	return &HealthService{
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// Check runs every probe with a per-probe timeout. Overall status is DOWN
// when any component is down.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	ctx, span := HealthServiceTracer.Start(ctx, "HealthService.Check")
	defer span.End()
	logger.Debug(ctx, "Service")

	status := HealthStatus{Status: StatusUp, Components: make(map[string]string, len(s.checks))}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.checks[name](probeCtx)
		cancel()

		if err != nil {
			status.Components[name] = StatusDown
			status.Status = StatusDown
			continue
		}
		status.Components[name] = StatusUp
	}

	return status
}
