package service

import (
	"context"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/port"
)

var notificationTracer = otel.Tracer("service/notifications")

const notificationsPath = "/notifications"

// NotificationService reads and acknowledges the notifications addressed to
// the logged-in user. It implements port.NotificationSource for the poller.
type NotificationService struct {
	api      port.API
	sessions *SessionService
	logger   *zap.Logger
}

// NewNotificationService creates a new notification synchronizer.
func NewNotificationService(api port.API, sessions *SessionService, logger *zap.Logger) *NotificationService {
	return &NotificationService{api: api, sessions: sessions, logger: logger}
}

// List fetches the current user's notifications.
func (s *NotificationService) List(ctx context.Context) ([]domain.Notification, error) {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.List")
	defer span.End()

	email, err := s.email(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Notification
	err = s.api.Call(ctx, port.Call{
		Method: http.MethodGet,
		Path:   notificationsPath,
		Query:  map[string]string{"email": email},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount asks the backend for the unread total.
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.UnreadCount")
	defer span.End()

	email, err := s.email(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	err = s.api.Call(ctx, port.Call{
		Method: http.MethodGet,
		Path:   notificationsPath + "/unread-count",
		Query:  map[string]string{"email": email},
	}, &n)
	return n, err
}

// MarkRead acknowledges one notification.
func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.MarkRead")
	defer span.End()

	return s.api.Call(ctx, port.Call{
		Method: http.MethodPut,
		Path:   notificationsPath + "/" + strconv.FormatInt(id, 10) + "/read",
	}, nil)
}

// MarkAllRead acknowledges every notification of the current user.
// It is idempotent on the backend.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.MarkAllRead")
	defer span.End()

	email, err := s.email(ctx)
	if err != nil {
		return err
	}
	return s.api.Call(ctx, port.Call{
		Method: http.MethodPut,
		Path:   notificationsPath + "/read-all",
		Query:  map[string]string{"email": email},
	}, nil)
}

func (s *NotificationService) email(ctx context.Context) (string, error) {
	sess, ok := s.sessions.Current(ctx)
	if !ok {
		return "", &domain.ErrAuthenticationRequired{}
	}
	return sess.Email, nil
}
