package service

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/port"
)

const preferencesKey = "notification-prefs"

// PreferenceService keeps notification preferences in the local store.
// They are never sent to the backend.
type PreferenceService struct {
	kv     port.KV
	logger *zap.Logger
}

// NewPreferenceService creates a new preference store.
func NewPreferenceService(kv port.KV, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{kv: kv, logger: logger}
}

// Get returns the stored preferences, or the defaults when none are stored
// or the record is unreadable.
func (s *PreferenceService) Get(ctx context.Context) domain.NotificationPreferences {
	raw, err := s.kv.Get(ctx, preferencesKey)
	if err != nil {
		if !errors.Is(err, port.ErrKeyNotFound) {
			s.logger.Warn("preferences read failed", zap.Error(err))
		}
		return domain.DefaultNotificationPreferences()
	}

	prefs := domain.DefaultNotificationPreferences()
	if err := json.Unmarshal(raw, &prefs); err != nil {
		s.logger.Warn("discarding unreadable preferences", zap.Error(err))
		return domain.DefaultNotificationPreferences()
	}
	return prefs
}

// Set stores prefs.
func (s *PreferenceService) Set(ctx context.Context, prefs domain.NotificationPreferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, preferencesKey, raw)
}

// Toggle flips one category ("newMembers", "transactions" or "events") and
// returns the new preferences.
func (s *PreferenceService) Toggle(ctx context.Context, key string) (domain.NotificationPreferences, error) {
	prefs := s.Get(ctx)
	switch key {
	case "newMembers":
		prefs.NewMembers = !prefs.NewMembers
	case "transactions":
		prefs.Transactions = !prefs.Transactions
	case "events":
		prefs.Events = !prefs.Events
	default:
		return prefs, &domain.ErrValidation{Fields: []domain.FieldError{{
			Field:   "key",
			Rule:    "oneof",
			Message: "key must be one of: newMembers transactions events",
		}}}
	}
	return prefs, s.Set(ctx, prefs)
}
