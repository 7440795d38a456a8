package service

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/port"
)

var scheduleTracer = otel.Tracer("service/schedules")

const schedulesPath = "/schedules"

// ScheduleService synchronizes worship schedules.
type ScheduleService struct {
	api     port.API
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewScheduleService creates a new schedule synchronizer.
func NewScheduleService(api port.API, metrics *observability.Metrics, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{api: api, metrics: metrics, logger: logger}
}

// List fetches every schedule.
func (s *ScheduleService) List(ctx context.Context) ([]domain.Schedule, error) {
	ctx, span := scheduleTracer.Start(ctx, "ScheduleService.List")
	defer span.End()

	var out []domain.Schedule
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: schedulesPath}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a schedule and returns the refreshed list.
func (s *ScheduleService) Create(ctx context.Context, sc domain.Schedule) ([]domain.Schedule, error) {
	ctx, span := scheduleTracer.Start(ctx, "ScheduleService.Create")
	defer span.End()

	if err := validate(s.metrics, "schedules", sc); err != nil {
		return nil, err
	}
	sc.ID = 0
	if err := s.api.Call(ctx, port.Call{Method: http.MethodPost, Path: schedulesPath, Body: sc}, nil); err != nil {
		return nil, err
	}
	return s.List(ctx)
}

// Remove deletes a schedule and returns the refreshed list.
func (s *ScheduleService) Remove(ctx context.Context, id int64) ([]domain.Schedule, error) {
	ctx, span := scheduleTracer.Start(ctx, "ScheduleService.Remove")
	defer span.End()

	if err := s.api.Call(ctx, port.Call{Method: http.MethodDelete, Path: idPath(schedulesPath, id)}, nil); err != nil {
		return nil, err
	}
	return s.List(ctx)
}
