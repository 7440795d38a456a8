package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/service"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ============================================================
// Events & Schedules Handlers
// ============================================================

// maxUploadMemory bounds the multipart form held in memory; larger parts spill
// to temporary files.
const maxUploadMemory = 32 << 20

// maxUploadBody caps a whole event upload, photos included.
const maxUploadBody = 64 << 20

// photoUpload is an attachment in the JSON form of an event request.
// Data is base64 in JSON.
type photoUpload struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type eventRequest struct {
	Event  domain.EventDraft `json:"event"`
	Photos []photoUpload     `json:"photos"`
}

// readEventRequest accepts either a JSON body or a multipart form with an
// "event" JSON field and "photos" file parts.
func readEventRequest(w http.ResponseWriter, r *http.Request) (domain.EventDraft, []domain.Photo, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		return readEventMultipart(r)
	}

	var req eventRequest
	if err := decodeJSONLimit(w, r, &req, maxUploadBody); err != nil {
		return domain.EventDraft{}, nil, err
	}
	photos := make([]domain.Photo, 0, len(req.Photos))
	for _, p := range req.Photos {
		photos = append(photos, domain.Photo{Name: p.Name, ContentType: p.ContentType, Data: p.Data})
	}
	return req.Event, photos, nil
}

func readEventMultipart(r *http.Request) (domain.EventDraft, []domain.Photo, error) {
	var draft domain.EventDraft
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return draft, nil, fmt.Errorf("parse multipart: %w", err)
	}
	if err := json.Unmarshal([]byte(r.FormValue("event")), &draft); err != nil {
		return draft, nil, fmt.Errorf("decode event field: %w", err)
	}

	var photos []domain.Photo
	for _, fh := range r.MultipartForm.File["photos"] {
		f, err := fh.Open()
		if err != nil {
			return draft, nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return draft, nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		photos = append(photos, domain.Photo{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return draft, photos, nil
}

func listEventsHandler(svc *service.EventService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /events")
		defer span.End()

		events, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func getEventHandler(svc *service.EventService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /events/{eventId}")
		defer span.End()

		id, ok := pathID(r, "eventId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid event id")
			return
		}
		event, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

func createEventHandler(svc *service.EventService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /events")
		defer span.End()

		draft, photos, err := readEventRequest(w, r)
		if err != nil {
			logger.Debug("event request unreadable", zap.Error(err))
			writeBodyError(w, err)
			return
		}
		events, err := svc.Create(ctx, draft, photos)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, events)
	}
}

func updateEventHandler(svc *service.EventService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /events/{eventId}")
		defer span.End()

		id, ok := pathID(r, "eventId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid event id")
			return
		}
		draft, photos, err := readEventRequest(w, r)
		if err != nil {
			logger.Debug("event request unreadable", zap.Error(err))
			writeBodyError(w, err)
			return
		}
		events, err := svc.Update(ctx, id, draft, photos)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func deleteEventHandler(svc *service.EventService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /events/{eventId}")
		defer span.End()

		id, ok := pathID(r, "eventId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid event id")
			return
		}
		events, err := svc.Remove(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func listSchedulesHandler(svc *service.ScheduleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /schedules")
		defer span.End()

		schedules, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, schedules)
	}
}

func createScheduleHandler(svc *service.ScheduleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /schedules")
		defer span.End()

		var sc domain.Schedule
		if err := decodeJSON(w, r, &sc); err != nil {
			writeBodyError(w, err)
			return
		}
		schedules, err := svc.Create(ctx, sc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, schedules)
	}
}

func deleteScheduleHandler(svc *service.ScheduleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /schedules/{scheduleId}")
		defer span.End()

		id, ok := pathID(r, "scheduleId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid schedule id")
			return
		}
		schedules, err := svc.Remove(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, schedules)
	}
}
