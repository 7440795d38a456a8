package handler

import (
	"net/http"

	"github.com/apedo/eglise-console/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Public Site Handlers
// ============================================================

func publicStatsHandler(svc *service.PublicService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /public/stats")
		defer span.End()

		stats, err := svc.Stats(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func publicEventsHandler(svc *service.PublicService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /public/events")
		defer span.End()

		events, err := svc.Events(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func publicLatestEventsHandler(svc *service.PublicService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /public/events/latest")
		defer span.End()

		events, err := svc.LatestEvents(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func publicEventHandler(svc *service.PublicService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /public/events/{eventId}")
		defer span.End()

		id, ok := pathID(r, "eventId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid event id")
			return
		}
		event, err := svc.Event(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

func publicSchedulesHandler(svc *service.PublicService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /public/schedules")
		defer span.End()

		schedules, err := svc.Schedules(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, schedules)
	}
}

func publicChurchInfoHandler(svc *service.PublicService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /public/church-info")
		defer span.End()

		info, err := svc.ChurchInfo(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}
