package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/port"
)

var eventTracer = otel.Tracer("service/events")

const eventsPath = "/events"

// EventService synchronizes events and their photo galleries.
type EventService struct {
	api     port.API
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewEventService creates a new event synchronizer.
func NewEventService(api port.API, metrics *observability.Metrics, logger *zap.Logger) *EventService {
	return &EventService{api: api, metrics: metrics, logger: logger}
}

// List fetches every event.
func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	ctx, span := eventTracer.Start(ctx, "EventService.List")
	defer span.End()

	var events []domain.Event
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: eventsPath}, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Get fetches one event with its gallery.
func (s *EventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	ctx, span := eventTracer.Start(ctx, "EventService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("event.id", id))

	var e domain.Event
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: idPath(eventsPath, id)}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create publishes an event with its photos encoded as data URLs and returns
// the refreshed list. An oversized upload surfaces as ErrPayloadTooLarge.
func (s *EventService) Create(ctx context.Context, d domain.EventDraft, photos []domain.Photo) ([]domain.Event, error) {
	ctx, span := eventTracer.Start(ctx, "EventService.Create")
	defer span.End()
	span.SetAttributes(attribute.Int("event.photos", len(photos)))

	if err := validate(s.metrics, "events", d); err != nil {
		return nil, err
	}

	e := eventFromDraft(d)
	e.Images = EncodePhotos(photos)
	e.PhotoCount = len(e.Images)

	if err := s.api.Call(ctx, port.Call{Method: http.MethodPost, Path: eventsPath, Body: e}, nil); err != nil {
		return nil, err
	}
	s.logger.Info("event created", zap.String("title", e.Title), zap.Int("photos", e.PhotoCount))
	return s.List(ctx)
}

// Update rewrites an event. The backend replaces the whole gallery, so the
// stored images are resent with any new photos appended. The photo count set
// at creation is kept.
func (s *EventService) Update(ctx context.Context, id int64, d domain.EventDraft, photos []domain.Photo) ([]domain.Event, error) {
	ctx, span := eventTracer.Start(ctx, "EventService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("event.id", id))

	if err := validate(s.metrics, "events", d); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	e := eventFromDraft(d)
	e.ID = id
	e.Images = append(append([]string{}, current.Images...), EncodePhotos(photos)...)
	e.PhotoCount = current.PhotoCount

	if err := s.api.Call(ctx, port.Call{Method: http.MethodPut, Path: idPath(eventsPath, id), Body: e}, nil); err != nil {
		return nil, err
	}
	return s.List(ctx)
}

// Remove deletes an event and returns the refreshed list.
func (s *EventService) Remove(ctx context.Context, id int64) ([]domain.Event, error) {
	ctx, span := eventTracer.Start(ctx, "EventService.Remove")
	defer span.End()
	span.SetAttributes(attribute.Int64("event.id", id))

	if err := s.api.Call(ctx, port.Call{Method: http.MethodDelete, Path: idPath(eventsPath, id)}, nil); err != nil {
		return nil, err
	}
	return s.List(ctx)
}

// EncodePhotos turns raw attachments into data URLs.
func EncodePhotos(photos []domain.Photo) []string {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		ct := p.ContentType
		if ct == "" {
			ct = http.DetectContentType(p.Data)
		}
		// DetectContentType may append parameters; data URLs take the bare type.
		ct, _, _ = strings.Cut(ct, ";")
		out = append(out, "data:"+ct+";base64,"+base64.StdEncoding.EncodeToString(p.Data))
	}
	return out
}

func eventFromDraft(d domain.EventDraft) domain.Event {
	return domain.Event{
		Title:           d.Title,
		Date:            d.Date,
		Time:            wireTime(d.Time),
		Type:            d.Type,
		Location:        d.Location,
		Description:     d.Description,
		Organizer:       d.Organizer,
		MaxParticipants: d.MaxParticipants,
		Budget:          d.Budget,
	}
}

// wireTime turns the form's HH:MM into the backend's HH:MM:SS.
func wireTime(t string) string {
	if len(t) == len("15:04") {
		return t + ":00"
	}
	return t
}
