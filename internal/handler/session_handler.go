package handler

import (
	"net/http"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Session Handlers
// ============================================================

// sessionResponse is the session as the views see it; the token stays server side.
type sessionResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"isAdmin"`
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:       s.ID,
		Email:    s.Email,
		FullName: s.FullName,
		Role:     s.Role,
		IsAdmin:  s.IsAdmin(),
	}
}

func loginHandler(svc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /session")
		defer span.End()

		var creds domain.Credentials
		if err := decodeJSON(w, r, &creds); err != nil {
			writeBodyError(w, err)
			return
		}
		sess, err := svc.Login(ctx, creds)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(sess))
	}
}

func currentSessionHandler(sessions *service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /session")
		defer span.End()

		sess, ok := sessions.Current(ctx)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

func logoutHandler(svc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /session")
		defer span.End()

		if err := svc.Logout(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
