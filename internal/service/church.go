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

var churchTracer = otel.Tracer("service/church")

const churchConfigPath = "/church-config"

// ChurchService reads and saves the church identity.
type ChurchService struct {
	api     port.API
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewChurchService creates a new church config synchronizer.
func NewChurchService(api port.API, metrics *observability.Metrics, logger *zap.Logger) *ChurchService {
	return &ChurchService{api: api, metrics: metrics, logger: logger}
}

// Get fetches the configuration. The backend answers with defaults when
// nothing was saved yet.
func (s *ChurchService) Get(ctx context.Context) (*domain.ChurchConfig, error) {
	ctx, span := churchTracer.Start(ctx, "ChurchService.Get")
	defer span.End()

	var cfg domain.ChurchConfig
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: churchConfigPath}, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save stores the configuration (single row, upserted by the backend) and
// returns it as read back.
func (s *ChurchService) Save(ctx context.Context, cfg domain.ChurchConfig) (*domain.ChurchConfig, error) {
	ctx, span := churchTracer.Start(ctx, "ChurchService.Save")
	defer span.End()

	if err := validate(s.metrics, "church-config", cfg); err != nil {
		return nil, err
	}
	if err := s.api.Call(ctx, port.Call{Method: http.MethodPost, Path: churchConfigPath, Body: cfg}, nil); err != nil {
		return nil, err
	}
	s.logger.Info("church config saved", zap.String("church", cfg.ChurchName))
	return s.Get(ctx)
}
