package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/port"
)

var authTracer = otel.Tracer("service/auth")

// AuthService runs the login and logout flows on top of the session store.
type AuthService struct {
	api      port.API
	sessions *SessionService
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(api port.API, sessions *SessionService, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{api: api, sessions: sessions, metrics: metrics, logger: logger}
}

// ============================================================
// Login — POST /auth/login
// ============================================================

// Login exchanges credentials for a session and persists it. Nothing is
// stored when the backend refuses.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.email", creds.Email))

	if err := validate(s.metrics, "auth", creds); err != nil {
		return nil, err
	}

	var resp domain.LoginResponse
	err := s.api.Call(ctx, port.Call{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   creds,
		Public: true,
	}, &resp)
	if err != nil {
		var rejected *domain.ErrServerRejected
		if errors.As(err, &rejected) && rejected.Message == http.StatusText(rejected.Status) {
			rejected.Message = "invalid credentials"
		}
		s.logger.Warn("login failed", zap.String("email", creds.Email), zap.Error(err))
		return nil, err
	}
	if resp.Token == "" {
		return nil, &domain.ErrTransport{Op: "POST /auth/login", Err: errors.New("malformed response: missing token")}
	}

	sess := &domain.Session{
		ID:       resp.ID,
		Email:    resp.Email,
		FullName: resp.FullName,
		Role:     resp.Role,
		Token:    resp.Token,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Info("logged in",
		zap.String("email", sess.Email),
		zap.String("role", sess.Role),
	)
	return sess, nil
}

// ============================================================
// Logout
// ============================================================

// Logout removes the session. Calling it without a session is a no-op.
func (s *AuthService) Logout(ctx context.Context) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}
