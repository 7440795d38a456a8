package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/port"
)

var sessionTracer = otel.Tracer("service/session")

// sessionKey is where the authenticated identity lives in the local store.
const sessionKey = "session"

// SessionService owns the single authenticated identity. It is built once at
// startup and handed to every consumer; there is no package-level session.
type SessionService struct {
	kv     port.KV
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	onClear []func()
}

// NewSessionService creates a session store over kv.
func NewSessionService(kv port.KV, logger *zap.Logger) *SessionService {
	return &SessionService{kv: kv, logger: logger, now: time.Now}
}

// WithClock overrides the clock used for token expiry. Tests only.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// OnClear registers fn to run whenever the session is removed, whether by
// logout or by the gateway after a 401/403.
func (s *SessionService) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Current returns the stored session. A missing, undecodable, tokenless or
// expired record yields false; the last two are also removed.
func (s *SessionService) Current(ctx context.Context) (*domain.Session, bool) {
	raw, err := s.kv.Get(ctx, sessionKey)
	if err != nil {
		if !errors.Is(err, port.ErrKeyNotFound) {
			s.logger.Warn("session read failed", zap.Error(err))
		}
		return nil, false
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.logger.Warn("discarding unreadable session", zap.Error(err))
		s.clear(ctx)
		return nil, false
	}
	if sess.Token == "" {
		s.clear(ctx)
		return nil, false
	}
	if s.expired(sess.Token) {
		s.logger.Info("session token expired", zap.String("email", sess.Email))
		s.clear(ctx)
		return nil, false
	}
	return &sess, true
}

// Save persists sess as the current identity.
func (s *SessionService) Save(ctx context.Context, sess *domain.Session) error {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Save")
	defer span.End()

	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, sessionKey, raw)
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionKey); err != nil {
		return err
	}
	s.fireClear()
	return nil
}

// IsAdmin reports whether the current session carries an admin role.
func (s *SessionService) IsAdmin(ctx context.Context) bool {
	sess, ok := s.Current(ctx)
	return ok && sess.IsAdmin()
}

// UpdateIdentity merges a profile answer into the stored session. A non-empty
// token replaces the current one.
func (s *SessionService) UpdateIdentity(ctx context.Context, p domain.ProfileResponse) error {
	sess, ok := s.Current(ctx)
	if !ok {
		return &domain.ErrAuthenticationRequired{}
	}
	if p.FullName != "" {
		sess.FullName = p.FullName
	}
	if p.Email != "" {
		sess.Email = p.Email
	}
	if p.Token != "" {
		sess.Token = p.Token
	}
	return s.Save(ctx, sess)
}

// ============================================================
// port.SessionSource
// ============================================================

// Token returns the bearer token of the current session.
func (s *SessionService) Token(ctx context.Context) (string, bool) {
	sess, ok := s.Current(ctx)
	if !ok {
		return "", false
	}
	return sess.Token, true
}

// Invalidate drops the session after the backend refused it.
func (s *SessionService) Invalidate(ctx context.Context) {
	s.logger.Warn("session refused by backend, logging out")
	s.clear(ctx)
}

func (s *SessionService) clear(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		s.logger.Error("session clear failed", zap.Error(err))
	}
}

func (s *SessionService) fireClear() {
	s.mu.Lock()
	hooks := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// expired reports whether token is a JWT whose exp lies in the past.
// Opaque tokens never expire client-side; the backend decides.
func (s *SessionService) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}
