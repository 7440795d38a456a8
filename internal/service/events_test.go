package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/service"
)

func eventDraft() domain.EventDraft {
	return domain.EventDraft{
		Title:       "Culte de Pâques",
		Date:        "2024-03-31",
		Time:        "10:00",
		Type:        "Culte",
		Location:    "Temple",
		Description: "Célébration de la résurrection",
	}
}

func TestEvents_CreateEncodesPhotos(t *testing.T) {
	api := newMockAPI().
		on(http.MethodPost, "/events", nil, nil).
		on(http.MethodGet, "/events", []domain.Event{{ID: 1}}, nil)
	svc := service.NewEventService(api, observability.NewMetrics(), zap.NewNop())

	photos := []domain.Photo{
		{Name: "a.png", ContentType: "image/png", Data: []byte("png")},
		{Name: "b.jpg", ContentType: "image/jpeg", Data: []byte("jpg")},
	}
	if _, err := svc.Create(context.Background(), eventDraft(), photos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := api.seen()[0].Body.(domain.Event)
	if sent.Time != "10:00:00" {
		t.Errorf("expected HH:MM:SS time, got %q", sent.Time)
	}
	if sent.PhotoCount != 2 || len(sent.Images) != 2 {
		t.Fatalf("expected 2 photos, got %d/%d", sent.PhotoCount, len(sent.Images))
	}
	if sent.Images[0] != "data:image/png;base64,cG5n" {
		t.Errorf("unexpected data URL %q", sent.Images[0])
	}
}

func TestEvents_PayloadTooLarge(t *testing.T) {
	api := newMockAPI().on(http.MethodPost, "/events", nil, &domain.ErrPayloadTooLarge{})
	svc := service.NewEventService(api, observability.NewMetrics(), zap.NewNop())

	_, err := svc.Create(context.Background(), eventDraft(), []domain.Photo{{Data: make([]byte, 1024)}})

	var tooLarge *domain.ErrPayloadTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestEvents_UpdateKeepsGallery(t *testing.T) {
	api := newMockAPI().
		on(http.MethodGet, "/events/3", domain.Event{ID: 3, Images: []string{"data:image/png;base64,AA=="}, PhotoCount: 1}, nil).
		on(http.MethodPut, "/events/3", nil, nil).
		on(http.MethodGet, "/events", []domain.Event{{ID: 3}}, nil)
	svc := service.NewEventService(api, observability.NewMetrics(), zap.NewNop())

	_, err := svc.Update(context.Background(), 3, eventDraft(), []domain.Photo{{ContentType: "image/png", Data: []byte("x")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := api.methods(); !equalStrings(got, []string{"GET /events/3", "PUT /events/3", "GET /events"}) {
		t.Fatalf("unexpected call sequence %v", got)
	}
	sent := api.seen()[1].Body.(domain.Event)
	if len(sent.Images) != 2 || sent.Images[0] != "data:image/png;base64,AA==" {
		t.Errorf("stored images must be kept, got %v", sent.Images)
	}
	if sent.PhotoCount != 1 {
		t.Errorf("photo count is set at creation only, got %d", sent.PhotoCount)
	}
}

func TestEvents_ShortDescriptionRejected(t *testing.T) {
	api := newMockAPI()
	svc := service.NewEventService(api, observability.NewMetrics(), zap.NewNop())

	d := eventDraft()
	d.Description = "Court"
	_, err := svc.Create(context.Background(), d, nil)

	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(api.seen()) != 0 {
		t.Error("invalid draft must not be sent")
	}
}

func TestEncodePhotos_DetectsType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	got := service.EncodePhotos([]domain.Photo{{Data: png}})
	if len(got) != 1 || got[0][:len("data:image/png;base64,")] != "data:image/png;base64," {
		t.Errorf("expected detected png type, got %v", got)
	}
}
