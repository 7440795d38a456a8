package poller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/poller"
)

// --- Mocks ---

type fakeSource struct {
	mu    sync.Mutex
	items []domain.Notification
	err   error
	lists int
}

func (f *fakeSource) List(context.Context) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Notification(nil), f.items...), nil
}

func (f *fakeSource) MarkRead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
		}
	}
	return nil
}

func (f *fakeSource) MarkAllRead(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].Read = true
	}
	return nil
}

func (f *fakeSource) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

type fakeSession struct{ token string }

func (f *fakeSession) Token(context.Context) (string, bool) { return f.token, f.token != "" }
func (f *fakeSession) Invalidate(context.Context)           { f.token = "" }

func newSource() *fakeSource {
	return &fakeSource{items: []domain.Notification{
		{ID: 1, Type: domain.NotificationMember, Title: "Nouveau membre"},
		{ID: 2, Type: domain.NotificationFinance, Title: "Nouvelle recette"},
		{ID: 3, Type: domain.NotificationEvent, Title: "Événement", Read: true},
	}}
}

// --- Tests ---

func TestStart_FetchesImmediately(t *testing.T) {
	src := newSource()
	p := poller.New(src, &fakeSession{token: "abc"}, time.Hour, observability.NewMetrics(), zap.NewNop())

	h, err := p.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.Stop()

	snap := p.Snapshot()
	if len(snap.Items) != 3 || snap.Unread != 2 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.LastRefresh.IsZero() {
		t.Error("expected refresh time")
	}
}

func TestStop_Idempotent(t *testing.T) {
	p := poller.New(newSource(), &fakeSession{token: "abc"}, time.Hour, observability.NewMetrics(), zap.NewNop())
	h, err := p.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	h.Stop()
	h.Stop()
}

func TestRefresh_NoSessionIsNoop(t *testing.T) {
	src := newSource()
	m := observability.NewMetrics()
	p := poller.New(src, &fakeSession{}, time.Hour, m, zap.NewNop())

	if err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("no session must not be an error: %v", err)
	}
	if src.listCount() != 0 {
		t.Error("no fetch without a session")
	}
	if got := m.Snapshot().Polls["skipped"]; got != 1 {
		t.Errorf("expected skipped tick, got %v", got)
	}
}

func TestRefresh_FailureKeepsPreviousList(t *testing.T) {
	src := newSource()
	p := poller.New(src, &fakeSession{token: "abc"}, time.Hour, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()

	if err := p.Refresh(ctx); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	src.mu.Lock()
	src.err = &domain.ErrTransport{Op: "GET /notifications", Err: errors.New("refused")}
	src.mu.Unlock()

	if err := p.Refresh(ctx); err == nil {
		t.Fatal("expected error")
	}
	snap := p.Snapshot()
	if len(snap.Items) != 3 || snap.LastError == "" {
		t.Errorf("previous list must survive with the error recorded, got %+v", snap)
	}

	// Next tick recovers.
	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	_ = p.Refresh(ctx)
	if p.Snapshot().LastError != "" {
		t.Error("successful tick must clear the error")
	}
}

func TestMarkAllRead_Twice(t *testing.T) {
	p := poller.New(newSource(), &fakeSession{token: "abc"}, time.Hour, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()
	_ = p.Refresh(ctx)

	for i := 0; i < 2; i++ {
		snap, err := p.MarkAllRead(ctx)
		if err != nil {
			t.Fatalf("mark all read #%d: %v", i+1, err)
		}
		if snap.Unread != 0 {
			t.Errorf("mark all read #%d: expected 0 unread, got %d", i+1, snap.Unread)
		}
	}
}

func TestMarkRead_Refetches(t *testing.T) {
	src := newSource()
	p := poller.New(src, &fakeSession{token: "abc"}, time.Hour, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()
	_ = p.Refresh(ctx)
	before := src.listCount()

	snap, err := p.MarkRead(ctx, 1)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if snap.Unread != 1 {
		t.Errorf("expected 1 unread, got %d", snap.Unread)
	}
	if src.listCount() != before+1 {
		t.Error("mark read must refetch immediately")
	}
}

func TestStart_TicksOnInterval(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a real tick")
	}
	src := newSource()
	p := poller.New(src, &fakeSession{token: "abc"}, time.Second, observability.NewMetrics(), zap.NewNop())

	h, err := p.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for src.listCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if src.listCount() < 2 {
		t.Errorf("expected a scheduled tick, got %d fetches", src.listCount())
	}
}

func TestStart_ContextCancelStops(t *testing.T) {
	src := newSource()
	p := poller.New(src, &fakeSession{token: "abc"}, time.Hour, observability.NewMetrics(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	h, err := p.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
	h.Stop()
}
