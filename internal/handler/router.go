package handler

import (
	"net/http"
	"time"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/poller"
	"github.com/apedo/eglise-console/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// BreakerReporter exposes the backend circuit breaker state for /healthz.
type BreakerReporter interface {
	BreakerState() string
}

// Services bundles everything the view API drives. A nil *Services serves the
// operational endpoints only.
type Services struct {
	Sessions      *service.SessionService
	Auth          *service.AuthService
	Members       *service.MemberService
	Transactions  *service.TransactionService
	Events        *service.EventService
	Schedules     *service.ScheduleService
	Users         *service.UserService
	Church        *service.ChurchService
	Public        *service.PublicService
	Preferences   *service.PreferenceService
	Views         *service.ViewService
	Notifications *poller.Poller
	Backend       BreakerReporter

	// View API settings.
	AllowedOrigins         []string
	LoginAttemptsPerMinute int
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	var backend BreakerReporter
	var origins []string
	if svc != nil {
		backend = svc.Backend
		origins = svc.AllowedOrigins
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(CORS(origins))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(backend))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	if svc == nil {
		return r
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(GuardWrites(origins, logger))

		// =============================================
		// Session
		// =============================================
		r.With(LoginRateLimit(svc.LoginAttemptsPerMinute, logger)).Post("/session", loginHandler(svc.Auth, logger))
		r.Get("/session", currentSessionHandler(svc.Sessions))
		r.Delete("/session", logoutHandler(svc.Auth, logger))

		// =============================================
		// Public site (no session)
		// =============================================
		r.Route("/public", func(r chi.Router) {
			r.Get("/stats", publicStatsHandler(svc.Public, logger))
			r.Get("/events", publicEventsHandler(svc.Public, logger))
			r.Get("/events/latest", publicLatestEventsHandler(svc.Public, logger))
			r.Get("/events/{eventId}", publicEventHandler(svc.Public, logger))
			r.Get("/schedules", publicSchedulesHandler(svc.Public, logger))
			r.Get("/church-info", publicChurchInfoHandler(svc.Public, logger))
		})

		r.Get("/metrics/console", consoleMetricsHandler(metrics))

		// =============================================
		// Protected views
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(svc.Sessions, logger))

			r.Get("/dashboard", dashboardHandler(svc.Views, logger))
			r.Get("/finance", financeHandler(svc.Views, logger))

			// Members
			r.Get("/members", listMembersHandler(svc.Members, logger))
			r.Post("/members", createMemberHandler(svc.Members, logger))
			r.Post("/members/bulk-delete", bulkDeleteMembersHandler(svc.Members, logger))
			r.Get("/members/{memberId}", getMemberHandler(svc.Members, logger))
			r.Put("/members/{memberId}", updateMemberHandler(svc.Members, logger))
			r.Delete("/members/{memberId}", deleteMemberHandler(svc.Members, logger))

			// Treasury
			r.Get("/transactions", listTransactionsHandler(svc.Transactions, logger))
			r.Post("/transactions/income", recordIncomeHandler(svc.Transactions, logger))
			r.Post("/transactions/expense", recordExpenseHandler(svc.Transactions, logger))
			r.Get("/transactions/stats", treasuryStatsHandler(svc.Transactions, logger))
			r.Get("/transactions/monthly-stats", monthlyStatsHandler(svc.Transactions, logger))

			// Events
			r.Get("/events", listEventsHandler(svc.Events, logger))
			r.Post("/events", createEventHandler(svc.Events, logger))
			r.Get("/events/{eventId}", getEventHandler(svc.Events, logger))
			r.Put("/events/{eventId}", updateEventHandler(svc.Events, logger))
			r.Delete("/events/{eventId}", deleteEventHandler(svc.Events, logger))

			// Schedules
			r.Get("/schedules", listSchedulesHandler(svc.Schedules, logger))
			r.Post("/schedules", createScheduleHandler(svc.Schedules, logger))
			r.Delete("/schedules/{scheduleId}", deleteScheduleHandler(svc.Schedules, logger))

			// Notifications
			r.Get("/notifications", notificationsHandler(svc.Notifications))
			r.Post("/notifications/refresh", refreshNotificationsHandler(svc.Notifications, logger))
			r.Put("/notifications/read-all", markAllReadHandler(svc.Notifications, logger))
			r.Put("/notifications/{notificationId}/read", markReadHandler(svc.Notifications, logger))

			// Settings
			r.Get("/church", getChurchHandler(svc.Church, logger))
			r.Put("/church", saveChurchHandler(svc.Church, logger))
			r.Get("/users/me", meHandler(svc.Users, logger))
			r.Put("/users/profile", updateProfileHandler(svc.Users, logger))
			r.Post("/users/password", changePasswordHandler(svc.Users, logger))
			r.Get("/users/export", exportDataHandler(svc.Users, logger))
			r.Get("/preferences", getPreferencesHandler(svc.Preferences))
			r.Put("/preferences", setPreferencesHandler(svc.Preferences, logger))
			r.Post("/preferences/{key}/toggle", togglePreferenceHandler(svc.Preferences, logger))

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(svc.Sessions, logger))
				r.Get("/users/super-members", listSuperMembersHandler(svc.Users, logger))
				r.Post("/users/super-members", createSuperMemberHandler(svc.Users, logger))
				r.Delete("/users/super-members/{userId}", deleteSuperMemberHandler(svc.Users, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational Handlers
// ============================================================

func healthzHandler(backend BreakerReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "eglise-console", Status: "healthy", LastChecked: now},
		}
		overall := "healthy"
		if backend != nil {
			status := "healthy"
			if backend.BreakerState() != "closed" {
				status = "degraded"
				overall = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "backend", Status: status, LastChecked: now,
			})
		}
		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func consoleMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
