package handler

import (
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apedo/eglise-console/internal/service"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RequireSession rejects requests while no usable session is stored, so the
// operator is sent back to the login view before any backend call is made.
func RequireSession(sessions *service.SessionService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := sessions.Current(r.Context()); !ok {
				logger.Debug("session: none stored",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows only admin sessions through.
func RequireAdmin(sessions *service.SessionService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.IsAdmin(r.Context()) {
				logger.Warn("session: admin role required", zap.String("path", r.URL.Path))
				writeError(w, http.StatusForbidden, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS lets browser views served from the listed origins call the console.
// With no origins the console stays same-origin and sends no CORS headers.
// A wildcard entry is ignored: the console acts with the stored session.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o != "*" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}

// GuardWrites protects mutations made with the stored session. A write must
// come from the console's own origin or a listed one, and must carry a JSON
// or multipart body so a plain text or urlencoded form post is refused.
func GuardWrites(origins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o != "*" {
			allowed[strings.TrimRight(o, "/")] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if origin := r.Header.Get("Origin"); origin != "" && !allowed[origin] && !sameOrigin(origin, r.Host) {
				logger.Warn("write refused: foreign origin",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("origin", origin),
				)
				writeError(w, http.StatusForbidden, "origin not allowed")
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || (mediaType != "application/json" && mediaType != "multipart/form-data") {
				logger.Warn("write refused: unsupported content type",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("content_type", r.Header.Get("Content-Type")),
				)
				writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json or multipart/form-data")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sameOrigin(origin, host string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Host != "" && strings.EqualFold(u.Host, host)
}

// LoginRateLimit throttles login attempts per client IP. A non-positive limit
// disables it.
func LoginRateLimit(perMinute int, logger *zap.Logger) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("login: rate limited", zap.String("remote_addr", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		}),
	)
}
