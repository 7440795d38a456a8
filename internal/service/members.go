package service

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/port"
	"github.com/apedo/eglise-console/internal/validation"
)

var memberTracer = otel.Tracer("service/members")

const membersPath = "/members"

// MemberService synchronizes the member registry.
type MemberService struct {
	api     port.API
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewMemberService creates a new member synchronizer.
func NewMemberService(api port.API, metrics *observability.Metrics, logger *zap.Logger) *MemberService {
	return &MemberService{api: api, metrics: metrics, logger: logger, now: time.Now}
}

// List fetches every member.
func (s *MemberService) List(ctx context.Context) ([]domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.List")
	defer span.End()

	var members []domain.Member
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: membersPath}, &members); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("members.count", len(members)))
	return members, nil
}

// Get fetches one member.
func (s *MemberService) Get(ctx context.Context, id int64) (*domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("member.id", id))

	var m domain.Member
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: idPath(membersPath, id)}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create registers a member and returns the refreshed registry. A missing
// matricule is generated.
func (s *MemberService) Create(ctx context.Context, d domain.MemberDraft) ([]domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.Create")
	defer span.End()

	if err := validate(s.metrics, "members", d); err != nil {
		return nil, err
	}
	if d.Matricule == "" {
		d.Matricule = domain.GenerateMatricule(s.now())
	}

	if err := s.api.Call(ctx, port.Call{Method: http.MethodPost, Path: membersPath, Body: d.Member()}, nil); err != nil {
		return nil, err
	}
	s.logger.Info("member created", zap.String("matricule", d.Matricule))
	return s.List(ctx)
}

// Update replaces a member record and returns the refreshed registry.
func (s *MemberService) Update(ctx context.Context, id int64, d domain.MemberDraft) ([]domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("member.id", id))

	if err := validate(s.metrics, "members", d); err != nil {
		return nil, err
	}

	m := d.Member()
	m.ID = id
	if err := s.api.Call(ctx, port.Call{Method: http.MethodPut, Path: idPath(membersPath, id), Body: m}, nil); err != nil {
		return nil, err
	}
	return s.List(ctx)
}

// Remove deletes a member and returns the refreshed registry.
func (s *MemberService) Remove(ctx context.Context, id int64) ([]domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.Remove")
	defer span.End()
	span.SetAttributes(attribute.Int64("member.id", id))

	if err := s.api.Call(ctx, port.Call{Method: http.MethodDelete, Path: idPath(membersPath, id)}, nil); err != nil {
		return nil, err
	}
	s.logger.Info("member removed", zap.Int64("member_id", id))
	return s.List(ctx)
}

// BulkRemove deletes several members in one call. The body is a bare JSON
// array of ids.
func (s *MemberService) BulkRemove(ctx context.Context, ids []int64) ([]domain.Member, error) {
	ctx, span := memberTracer.Start(ctx, "MemberService.BulkRemove")
	defer span.End()
	span.SetAttributes(attribute.Int("members.count", len(ids)))

	if len(ids) == 0 {
		s.metrics.IncrValidationFailure("members")
		return nil, validation.Fail("ids", "required", "select at least one member")
	}

	if err := s.api.Call(ctx, port.Call{Method: http.MethodPost, Path: membersPath + "/bulk-delete", Body: ids}, nil); err != nil {
		return nil, err
	}
	s.logger.Info("members removed", zap.Int("count", len(ids)))
	return s.List(ctx)
}
