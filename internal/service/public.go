package service

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/port"
)

var publicTracer = otel.Tracer("service/public")

const publicPath = "/public"

// PublicService reads the unauthenticated pages of the church site.
type PublicService struct {
	api port.API
}

// NewPublicService creates a new public site reader.
func NewPublicService(api port.API) *PublicService {
	return &PublicService{api: api}
}

func (s *PublicService) get(ctx context.Context, path string, out any) error {
	return s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: publicPath + path, Public: true}, out)
}

// Stats returns member and event totals.
func (s *PublicService) Stats(ctx context.Context) (*domain.PublicStats, error) {
	ctx, span := publicTracer.Start(ctx, "PublicService.Stats")
	defer span.End()

	var out domain.PublicStats
	if err := s.get(ctx, "/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Events lists published events.
func (s *PublicService) Events(ctx context.Context) ([]domain.Event, error) {
	ctx, span := publicTracer.Start(ctx, "PublicService.Events")
	defer span.End()

	var out []domain.Event
	if err := s.get(ctx, "/events", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestEvents lists the most recent events for the landing page.
func (s *PublicService) LatestEvents(ctx context.Context) ([]domain.Event, error) {
	ctx, span := publicTracer.Start(ctx, "PublicService.LatestEvents")
	defer span.End()

	var out []domain.Event
	if err := s.get(ctx, "/events/latest", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Event fetches one published event.
func (s *PublicService) Event(ctx context.Context, id int64) (*domain.Event, error) {
	ctx, span := publicTracer.Start(ctx, "PublicService.Event")
	defer span.End()
	span.SetAttributes(attribute.Int64("event.id", id))

	var out domain.Event
	if err := s.get(ctx, idPath("/events", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Schedules lists worship schedules.
func (s *PublicService) Schedules(ctx context.Context) ([]domain.Schedule, error) {
	ctx, span := publicTracer.Start(ctx, "PublicService.Schedules")
	defer span.End()

	var out []domain.Schedule
	if err := s.get(ctx, "/schedules", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChurchInfo returns the church identity.
func (s *PublicService) ChurchInfo(ctx context.Context) (*domain.ChurchConfig, error) {
	ctx, span := publicTracer.Start(ctx, "PublicService.ChurchInfo")
	defer span.End()

	var out domain.ChurchConfig
	if err := s.get(ctx, "/church-info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
