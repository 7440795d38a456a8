package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/service"
)

func TestUsers_SuperMemberPasswordIsSessionScoped(t *testing.T) {
	ctx := context.Background()
	sessions := loggedIn(t, domain.RoleAdmin)
	api := newMockAPI().
		on(http.MethodPost, "/users/create-super-member", domain.SuperMember{ID: 5, Email: "sm@eglise.org"}, nil).
		on(http.MethodGet, "/users/super-members", []domain.SuperMember{{ID: 5, Email: "sm@eglise.org"}, {ID: 6}}, nil)
	svc := service.NewUserService(api, sessions, observability.NewMetrics(), zap.NewNop())

	list, err := svc.CreateSuperMember(ctx, domain.SuperMemberDraft{FullName: "Secrétaire", Email: "sm@eglise.org", Password: "pa55word"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list[0].Password != "pa55word" {
		t.Errorf("creator must see the password in session, got %q", list[0].Password)
	}
	if list[1].Password != "" {
		t.Errorf("unknown passwords stay empty, got %q", list[1].Password)
	}

	// A new login after logout must not reveal it.
	_ = sessions.Clear(ctx)
	_ = sessions.Save(ctx, &domain.Session{Email: "admin@eglise.org", Role: domain.RoleAdmin, Token: "def"})

	list, err = svc.ListSuperMembers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list[0].Password != "" {
		t.Errorf("password must be forgotten after logout, got %q", list[0].Password)
	}
}

func TestUsers_CreateSuperMemberNeedsAdmin(t *testing.T) {
	api := newMockAPI()
	svc := service.NewUserService(api, loggedIn(t, "SUPER_MEMBER"), observability.NewMetrics(), zap.NewNop())

	_, err := svc.CreateSuperMember(context.Background(), domain.SuperMemberDraft{FullName: "X Y", Email: "x@y.z", Password: "secret"})

	var denied *domain.ErrAuthorizationDenied
	if !errors.As(err, &denied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}
	if len(api.seen()) != 0 {
		t.Error("non-admin request must not be sent")
	}
}

func TestUsers_UpdateProfileMergesToken(t *testing.T) {
	ctx := context.Background()
	sessions := loggedIn(t, domain.RoleAdmin)
	api := newMockAPI().on(http.MethodPut, "/users/profile", domain.ProfileResponse{
		ID: 1, Email: "pasteur@eglise.org", FullName: "Pasteur", Role: "ADMIN", Token: "new-token",
	}, nil)
	svc := service.NewUserService(api, sessions, observability.NewMetrics(), zap.NewNop())

	sess, err := svc.UpdateProfile(ctx, domain.ProfileUpdate{FullName: "Pasteur", Email: "pasteur@eglise.org"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != "new-token" || sess.Email != "pasteur@eglise.org" {
		t.Errorf("session not updated: %+v", sess)
	}

	sent := api.seen()[0].Body.(domain.ProfileUpdate)
	if sent.CurrentEmail != "admin@eglise.org" {
		t.Errorf("currentEmail must be the session email, got %q", sent.CurrentEmail)
	}
}

func TestUsers_UpdateProfileWithExpiredTokenEndsSession(t *testing.T) {
	ctx := context.Background()
	sessions := loggedIn(t, domain.RoleAdmin)
	api := newMockAPI().on(http.MethodPut, "/users/profile", domain.ProfileResponse{
		ID: 1, Email: "admin@eglise.org", FullName: "Pasteur", Token: signed(t, time.Now().Add(-time.Hour)),
	}, nil)
	svc := service.NewUserService(api, sessions, observability.NewMetrics(), zap.NewNop())

	sess, err := svc.UpdateProfile(ctx, domain.ProfileUpdate{FullName: "Pasteur", Email: "admin@eglise.org"})

	var authRequired *domain.ErrAuthenticationRequired
	if !errors.As(err, &authRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got sess=%+v err=%v", sess, err)
	}
	if _, ok := sessions.Current(ctx); ok {
		t.Error("expired session must be cleared")
	}
}

func TestUsers_ChangePasswordConfirmation(t *testing.T) {
	api := newMockAPI().on(http.MethodPost, "/users/change-password", nil, nil)
	svc := service.NewUserService(api, loggedIn(t, domain.RoleAdmin), observability.NewMetrics(), zap.NewNop())

	err := svc.ChangePassword(context.Background(), domain.PasswordChange{
		CurrentPassword: "old", NewPassword: "secret1", ConfirmPassword: "secret2",
	})
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(api.seen()) != 0 {
		t.Fatal("mismatched confirmation must not be sent")
	}

	err = svc.ChangePassword(context.Background(), domain.PasswordChange{
		CurrentPassword: "old", NewPassword: "secret1", ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUsers_ExportData(t *testing.T) {
	api := newMockAPI().on(http.MethodGet, "/users/export-data", map[string]any{
		"members":          []map[string]any{{"id": 1, "firstName": "Jean"}},
		"transactions":     []domain.Transaction{{ID: 1}},
		"events":           []domain.Event{},
		"churchConfig":     []domain.ChurchConfig{{ChurchName: "Temple Emmanuel"}},
		"worshipSchedules": []domain.Schedule{},
		"exportDate":       "2024-06-14T10:00:00",
		"version":          "1.0",
	}, nil)
	svc := service.NewUserService(api, loggedIn(t, domain.RoleAdmin), observability.NewMetrics(), zap.NewNop())

	out, err := svc.ExportData(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Members) != 1 || out.Members[0].FirstName != "Jean" || out.Version != "1.0" {
		t.Errorf("unexpected export %+v", out)
	}
}
