package service

import (
	"context"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/port"
	"github.com/apedo/eglise-console/internal/validation"
)

var userTracer = otel.Tracer("service/users")

const usersPath = "/users"

// UserService covers the settings flows: profile, password, super members
// and the data backup.
type UserService struct {
	api      port.API
	sessions *SessionService
	metrics  *observability.Metrics
	logger   *zap.Logger

	// Plaintext passwords of super members created in this session, by id.
	// Never persisted and wiped whenever the session is cleared.
	mu        sync.Mutex
	passwords map[int64]string
}

// NewUserService creates a new user synchronizer and ties the password
// vault's lifetime to the session.
func NewUserService(api port.API, sessions *SessionService, metrics *observability.Metrics, logger *zap.Logger) *UserService {
	s := &UserService{
		api:       api,
		sessions:  sessions,
		metrics:   metrics,
		logger:    logger,
		passwords: make(map[int64]string),
	}
	sessions.OnClear(s.forgetPasswords)
	return s
}

// ============================================================
// Profile & password
// ============================================================

// Me fetches the stored account of the logged-in user.
func (s *UserService) Me(ctx context.Context) (*domain.SuperMember, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Me")
	defer span.End()

	sess, ok := s.sessions.Current(ctx)
	if !ok {
		return nil, &domain.ErrAuthenticationRequired{}
	}

	var u domain.SuperMember
	err := s.api.Call(ctx, port.Call{
		Method: http.MethodGet,
		Path:   usersPath + "/me",
		Query:  map[string]string{"email": sess.Email},
	}, &u)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	return &u, nil
}

// UpdateProfile renames the current user and merges the answer (including a
// re-issued token when the email changed) into the session.
func (s *UserService) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) (*domain.Session, error) {
	ctx, span := userTracer.Start(ctx, "UserService.UpdateProfile")
	defer span.End()

	sess, ok := s.sessions.Current(ctx)
	if !ok {
		return nil, &domain.ErrAuthenticationRequired{}
	}
	if err := validate(s.metrics, "users", p); err != nil {
		return nil, err
	}
	p.CurrentEmail = sess.Email

	var resp domain.ProfileResponse
	if err := s.api.Call(ctx, port.Call{Method: http.MethodPut, Path: usersPath + "/profile", Body: p}, &resp); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateIdentity(ctx, resp); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated",
		zap.Bool("email_changed", resp.Email != "" && resp.Email != sess.Email),
		zap.Bool("token_reissued", resp.Token != ""),
	)
	updated, ok := s.sessions.Current(ctx)
	if !ok {
		// The re-issued token was unusable and the session has been dropped.
		return nil, &domain.ErrAuthenticationRequired{}
	}
	return updated, nil
}

// ChangePassword checks the confirmation locally, then asks the backend.
func (s *UserService) ChangePassword(ctx context.Context, pc domain.PasswordChange) error {
	ctx, span := userTracer.Start(ctx, "UserService.ChangePassword")
	defer span.End()

	sess, ok := s.sessions.Current(ctx)
	if !ok {
		return &domain.ErrAuthenticationRequired{}
	}
	if err := validate(s.metrics, "users", pc); err != nil {
		return err
	}

	body := struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}{sess.Email, pc.CurrentPassword, pc.NewPassword}

	return s.api.Call(ctx, port.Call{Method: http.MethodPost, Path: usersPath + "/change-password", Body: body}, nil)
}

// ============================================================
// Super members
// ============================================================

// ListSuperMembers fetches restricted accounts. Passwords known from this
// session are filled in; others stay empty.
func (s *UserService) ListSuperMembers(ctx context.Context) ([]domain.SuperMember, error) {
	ctx, span := userTracer.Start(ctx, "UserService.ListSuperMembers")
	defer span.End()

	var out []domain.SuperMember
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: usersPath + "/super-members"}, &out); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range out {
		out[i].Password = s.passwords[out[i].ID]
	}
	return out, nil
}

// CreateSuperMember provisions a restricted account and remembers its
// password for the rest of the session only.
func (s *UserService) CreateSuperMember(ctx context.Context, d domain.SuperMemberDraft) ([]domain.SuperMember, error) {
	ctx, span := userTracer.Start(ctx, "UserService.CreateSuperMember")
	defer span.End()

	if !s.sessions.IsAdmin(ctx) {
		if _, ok := s.sessions.Current(ctx); !ok {
			return nil, &domain.ErrAuthenticationRequired{}
		}
		return nil, &domain.ErrAuthorizationDenied{Status: http.StatusForbidden, Message: "admin role required"}
	}
	if err := validate(s.metrics, "users", d); err != nil {
		return nil, err
	}

	var created domain.SuperMember
	if err := s.api.Call(ctx, port.Call{Method: http.MethodPost, Path: usersPath + "/create-super-member", Body: d}, &created); err != nil {
		return nil, err
	}
	if created.ID != 0 {
		s.mu.Lock()
		s.passwords[created.ID] = d.Password
		s.mu.Unlock()
	}
	span.SetAttributes(attribute.Int64("user.id", created.ID))
	s.logger.Info("super member created", zap.Int64("user_id", created.ID))

	return s.ListSuperMembers(ctx)
}

// RemoveSuperMember deletes a restricted account.
func (s *UserService) RemoveSuperMember(ctx context.Context, id int64) ([]domain.SuperMember, error) {
	ctx, span := userTracer.Start(ctx, "UserService.RemoveSuperMember")
	defer span.End()

	if id <= 0 {
		return nil, validation.Fail("id", "gt", "id must be greater than 0")
	}
	if err := s.api.Call(ctx, port.Call{Method: http.MethodDelete, Path: idPath(usersPath, id)}, nil); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.passwords, id)
	s.mu.Unlock()

	return s.ListSuperMembers(ctx)
}

func (s *UserService) forgetPasswords() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.passwords)
}

// ============================================================
// Backup
// ============================================================

// ExportData downloads the full backup document.
func (s *UserService) ExportData(ctx context.Context) (*domain.DataExport, error) {
	ctx, span := userTracer.Start(ctx, "UserService.ExportData")
	defer span.End()

	var out domain.DataExport
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: usersPath + "/export-data"}, &out); err != nil {
		return nil, err
	}
	s.logger.Info("data exported",
		zap.Int("members", len(out.Members)),
		zap.Int("transactions", len(out.Transactions)),
		zap.Int("events", len(out.Events)),
	)
	return &out, nil
}
