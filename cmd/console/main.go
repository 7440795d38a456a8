package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/apedo/eglise-console/internal/config"
	"github.com/apedo/eglise-console/internal/handler"
	"github.com/apedo/eglise-console/internal/infra/gateway"
	"github.com/apedo/eglise-console/internal/infra/kv"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/infra/resilience"
	"github.com/apedo/eglise-console/internal/poller"
	"github.com/apedo/eglise-console/internal/port"
	"github.com/apedo/eglise-console/internal/service"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// store is the local key-value store plus its teardown.
type store interface {
	port.KV
	io.Closer
}

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("bind_addr", cfg.BindAddr),
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.String("session_dir", cfg.SessionDir),
		zap.Duration("notification_interval", cfg.NotificationInterval),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "eglise-console")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Local store ---
	var kvStore store
	if cfg.SessionDir != "" {
		kvStore, err = kv.OpenBadger(cfg.SessionDir, logger)
		if err != nil {
			logger.Fatal("failed to open session store", zap.Error(err))
		}
		logger.Info("session store on disk", zap.String("dir", cfg.SessionDir))
	} else {
		kvStore = kv.NewMemory()
		logger.Warn("session store in memory: sessions do not survive a restart")
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			logger.Error("session store close failed", zap.Error(err))
		}
	}()

	sessions := service.NewSessionService(kvStore, logger)

	// --- Gateway ---
	cb := resilience.NewCircuitBreaker("backend", resilience.BreakerSettings{
		OnChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	api := gateway.New(sessions, gateway.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Breaker:    cb,
		Bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		Metrics:    metrics,
		Logger:     logger,
		OnUnauthorized: func(status int) {
			logger.Info("session revoked by backend, login required", zap.Int("status", status))
		},
	})

	// --- Services ---
	members := service.NewMemberService(api, metrics, logger)
	transactions := service.NewTransactionService(api, metrics, logger)
	events := service.NewEventService(api, metrics, logger)
	notifications := service.NewNotificationService(api, sessions, logger)

	svc := &handler.Services{
		Sessions:     sessions,
		Auth:         service.NewAuthService(api, sessions, metrics, logger),
		Members:      members,
		Transactions: transactions,
		Events:       events,
		Schedules:    service.NewScheduleService(api, metrics, logger),
		Users:        service.NewUserService(api, sessions, metrics, logger),
		Church:       service.NewChurchService(api, metrics, logger),
		Public:       service.NewPublicService(api),
		Preferences:  service.NewPreferenceService(kvStore, logger),
		Views:        service.NewViewService(members, events, transactions, logger),
		Backend:      api,

		AllowedOrigins:         cfg.AllowedOrigins,
		LoginAttemptsPerMinute: cfg.LoginAttemptsPerMinute,
	}

	// --- Notification poller ---
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	svc.Notifications = poller.New(notifications, sessions, cfg.NotificationInterval, metrics, logger)
	pollHandle, err := svc.Notifications.Start(ctx)
	if err != nil {
		logger.Fatal("failed to start notification poller", zap.Error(err))
	}

	// --- Router ---
	router := handler.NewRouter(svc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.BindAddr, strconv.Itoa(cfg.Port)),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	pollHandle.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
