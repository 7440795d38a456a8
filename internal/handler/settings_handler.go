package handler

import (
	"net/http"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Settings Handlers
// ============================================================

func getChurchHandler(svc *service.ChurchService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /church")
		defer span.End()

		cfg, err := svc.Get(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

func saveChurchHandler(svc *service.ChurchService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /church")
		defer span.End()

		var cfg domain.ChurchConfig
		if err := decodeJSON(w, r, &cfg); err != nil {
			writeBodyError(w, err)
			return
		}
		saved, err := svc.Save(ctx, cfg)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func meHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /users/me")
		defer span.End()

		me, err := svc.Me(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, me)
	}
}

func updateProfileHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /users/profile")
		defer span.End()

		var p domain.ProfileUpdate
		if err := decodeJSON(w, r, &p); err != nil {
			writeBodyError(w, err)
			return
		}
		sess, err := svc.UpdateProfile(ctx, p)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// passwordRequest carries the confirmation field, which never leaves the console.
type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func changePasswordHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /users/password")
		defer span.End()

		var req passwordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBodyError(w, err)
			return
		}
		err := svc.ChangePassword(ctx, domain.PasswordChange{
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
			ConfirmPassword: req.ConfirmPassword,
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func exportDataHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /users/export")
		defer span.End()

		export, err := svc.ExportData(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="eglise-backup.json"`)
		writeJSON(w, http.StatusOK, export)
	}
}

func listSuperMembersHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /users/super-members")
		defer span.End()

		users, err := svc.ListSuperMembers(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func createSuperMemberHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /users/super-members")
		defer span.End()

		var draft domain.SuperMemberDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeBodyError(w, err)
			return
		}
		users, err := svc.CreateSuperMember(ctx, draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, users)
	}
}

func deleteSuperMemberHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /users/super-members/{userId}")
		defer span.End()

		id, ok := pathID(r, "userId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		users, err := svc.RemoveSuperMember(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func getPreferencesHandler(svc *service.PreferenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Get(r.Context()))
	}
}

func setPreferencesHandler(svc *service.PreferenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var prefs domain.NotificationPreferences
		if err := decodeJSON(w, r, &prefs); err != nil {
			writeBodyError(w, err)
			return
		}
		if err := svc.Set(r.Context(), prefs); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}

func togglePreferenceHandler(svc *service.PreferenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := svc.Toggle(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}
