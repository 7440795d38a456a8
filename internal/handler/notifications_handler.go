package handler

import (
	"net/http"

	"github.com/apedo/eglise-console/internal/poller"

	"go.uber.org/zap"
)

// ============================================================
// Notifications Handlers
// ============================================================

// notificationsHandler serves the poller's last snapshot without touching the backend.
func notificationsHandler(p *poller.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, p.Snapshot())
	}
}

func refreshNotificationsHandler(p *poller.Poller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /notifications/refresh")
		defer span.End()

		if err := p.Refresh(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, p.Snapshot())
	}
}

func markReadHandler(p *poller.Poller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /notifications/{notificationId}/read")
		defer span.End()

		id, ok := pathID(r, "notificationId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid notification id")
			return
		}
		snap, err := p.MarkRead(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func markAllReadHandler(p *poller.Poller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /notifications/read-all")
		defer span.End()

		snap, err := p.MarkAllRead(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
