package healthcheck

import (
	"context"
	"errors"
	"time"

	"nestiq.ai/listing-gateway/app/infrastructure/cache"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// SharedTier describes connectivity to the shared cache backend.
type SharedTier struct {
	Connected bool   `json:"connected"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Report is the health document served by the healthz and admin endpoints.
type Report struct {
	Status Status                 `json:"status"`
	Local  cache.MemoryCacheStats `json:"local"`
	Shared SharedTier             `json:"shared"`
}

type Service struct {
	cache *cache.TieredCache
}

func NewService(tieredCache *cache.TieredCache) *Service {
	return &Service{
		cache: tieredCache,
	}
}

// Check reports engine health. A dead shared tier only degrades the report,
// the local tier keeps serving; unhealthy is reserved for a closed engine.
func (s *Service) Check(ctx context.Context) Report {
	stats := s.cache.Stats()
	report := Report{
		Status: StatusHealthy,
		Local:  stats.Local,
	}
	start := time.Now()
	err := s.cache.HealthCheck(ctx)
	latency := time.Since(start).Milliseconds()
	switch {
	case err == nil:
		report.Shared = SharedTier{
			Connected: true,
			LatencyMs: latency,
		}
	case errors.Is(err, cache.ErrClosed):
		report.Status = StatusUnhealthy
		report.Shared = SharedTier{
			Error: err.Error(),
		}
	default:
		report.Status = StatusDegraded
		report.Shared = SharedTier{
			LatencyMs: latency,
			Error:     err.Error(),
		}
	}
	return report
}
