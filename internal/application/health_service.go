package application

import (
	"context"

	"github.com/alorle/m3u8-editor/internal/metrics"
	"github.com/alorle/m3u8-editor/internal/port/driven"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

// GuideStatusReporter reports the state of the programme guide.
type GuideStatusReporter interface {
	Status() GuideStatus
}

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	db    driven.PlaylistRepository
	guide GuideStatusReporter
}

// NewHealthService creates a new health check service.
func NewHealthService(db driven.PlaylistRepository, guide GuideStatusReporter) *HealthService {
	return &HealthService{
		db:    db,
		guide: guide,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok", "error" or "unavailable"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string          // "ok" if the database is healthy, "degraded" otherwise
	DB     ComponentHealth // database health
	Guide  ComponentHealth // programme guide; optional, never degrades the service
}

// Check performs health checks on all dependencies.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "ok",
		DB:     ComponentHealth{Status: "ok"},
		Guide:  ComponentHealth{Status: "ok"},
	}

	if err := s.db.Ping(ctx); err != nil {
		status.DB = ComponentHealth{
			Status: "error",
			Error:  err.Error(),
		}
		status.Status = "degraded"
		metrics.RecordHealthCheckFailure()
	}

	if s.guide == nil || !s.guide.Status().Loaded {
		status.Guide = ComponentHealth{
			Status: "unavailable",
			Error:  schedule.ErrGuideNotLoaded.Error(),
		}
	}

	return status
}
