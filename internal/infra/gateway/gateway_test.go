package gateway_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/gateway"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/port"
)

// ============================================================
// Mocks
// ============================================================

type fakeSession struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeSession) Token(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeSession) Invalidate(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.invalidated++
}

func newGateway(t *testing.T, h http.HandlerFunc, session *fakeSession) (*gateway.Gateway, *observability.Metrics, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	m := observability.NewMetrics()
	gw := gateway.New(session, gateway.Options{
		BaseURL: srv.URL + "/api",
		Metrics: m,
		Logger:  zap.NewNop(),
	})
	return gw, m, &hits
}

// ============================================================
// Tests
// ============================================================

func TestCall_AttachesBearerAndDecodes(t *testing.T) {
	var gotAuth, gotPath, gotQuery, gotReqID string
	gw, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("email")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"type":"MEMBER","title":"Nouveau membre","read":false}]`)
	}, &fakeSession{token: "abc"})

	var out []domain.Notification
	err := gw.Call(context.Background(), port.Call{
		Method: http.MethodGet,
		Path:   "/notifications",
		Query:  map[string]string{"email": "admin@eglise.org"},
	}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotPath != "/api/notifications" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotQuery != "admin@eglise.org" {
		t.Errorf("unexpected email query %q", gotQuery)
	}
	if gotReqID == "" {
		t.Error("expected X-Request-ID header")
	}
	if len(out) != 1 || out[0].Title != "Nouveau membre" {
		t.Errorf("unexpected decode %+v", out)
	}
}

func TestCall_NoSessionShortCircuits(t *testing.T) {
	gw, m, hits := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, &fakeSession{})

	err := gw.Call(context.Background(), port.Call{Method: http.MethodGet, Path: "/members"}, nil)

	var authErr *domain.ErrAuthenticationRequired
	if !errors.As(err, &authErr) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("no request may reach the network without a session")
	}
	if got := m.Snapshot().BackendCalls[observability.OutcomeNoSession]; got != 1 {
		t.Errorf("expected no_session outcome recorded, got %v", got)
	}
}

func TestCall_PublicSkipsBearer(t *testing.T) {
	var gotAuth string
	gw, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"totalMembers":12,"totalEvents":3}`)
	}, &fakeSession{token: "abc"})

	var stats domain.PublicStats
	if err := gw.Call(context.Background(), port.Call{Method: http.MethodGet, Path: "/public/stats", Public: true}, &stats); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("public calls must not carry a token, got %q", gotAuth)
	}
	if stats.TotalMembers != 12 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCall_UnauthorizedClearsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		session := &fakeSession{token: "abc"}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		var hookStatus int
		m := observability.NewMetrics()
		gw := gateway.New(session, gateway.Options{
			BaseURL:        srv.URL,
			Metrics:        m,
			OnUnauthorized: func(s int) { hookStatus = s },
		})

		err := gw.Call(context.Background(), port.Call{Method: http.MethodGet, Path: "/members"}, nil)
		srv.Close()

		var denied *domain.ErrAuthorizationDenied
		if !errors.As(err, &denied) {
			t.Fatalf("status %d: expected ErrAuthorizationDenied, got %v", status, err)
		}
		if denied.Status != status {
			t.Errorf("expected status %d, got %d", status, denied.Status)
		}
		if session.invalidated != 1 {
			t.Errorf("status %d: expected session invalidated once, got %d", status, session.invalidated)
		}
		if _, ok := session.Token(context.Background()); ok {
			t.Errorf("status %d: session must be gone", status)
		}
		if hookStatus != status {
			t.Errorf("expected hook with %d, got %d", status, hookStatus)
		}
		if m.Snapshot().ForcedLogouts != 1 {
			t.Errorf("expected forced logout counted")
		}
	}
}

func TestCall_PublicUnauthorizedIsServerRejection(t *testing.T) {
	session := &fakeSession{token: "abc"}
	gw, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Identifiants invalides"}`)
	}, session)

	err := gw.Call(context.Background(), port.Call{Method: http.MethodPost, Path: "/auth/login", Public: true, Body: domain.Credentials{}}, nil)

	var rejected *domain.ErrServerRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrServerRejected, got %v", err)
	}
	if rejected.Message != "Identifiants invalides" {
		t.Errorf("expected server message, got %q", rejected.Message)
	}
	if session.invalidated != 0 {
		t.Error("a public 401 must not clear the session")
	}
}

func TestCall_PayloadTooLarge(t *testing.T) {
	gw, m, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}, &fakeSession{token: "abc"})

	err := gw.Call(context.Background(), port.Call{Method: http.MethodPost, Path: "/events", Body: map[string]string{"title": "x"}}, nil)

	var tooLarge *domain.ErrPayloadTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if m.Snapshot().BackendCalls[observability.OutcomeTooLarge] != 1 {
		t.Error("expected too_large outcome")
	}
}

func TestCall_TextBodyBecomesMessage(t *testing.T) {
	gw, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, "Matricule déjà utilisé\n")
	}, &fakeSession{token: "abc"})

	err := gw.Call(context.Background(), port.Call{Method: http.MethodPost, Path: "/members"}, nil)

	var rejected *domain.ErrServerRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrServerRejected, got %v", err)
	}
	if rejected.Status != http.StatusConflict || rejected.Message != "Matricule déjà utilisé" {
		t.Errorf("unexpected rejection %+v", rejected)
	}
}

func TestCall_UnreadableJSONUsesSyntheticMessage(t *testing.T) {
	gw, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":`)
	}, &fakeSession{token: "abc"})

	err := gw.Call(context.Background(), port.Call{Method: http.MethodGet, Path: "/members"}, nil)

	var rejected *domain.ErrServerRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrServerRejected, got %v", err)
	}
	if rejected.Message != "response read error" {
		t.Errorf("expected synthetic message, got %q", rejected.Message)
	}
}

func TestCall_SuccessWithTextBodyWhenNoAnswerExpected(t *testing.T) {
	gw, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "Membre supprimé")
	}, &fakeSession{token: "abc"})

	if err := gw.Call(context.Background(), port.Call{Method: http.MethodDelete, Path: "/members/4"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCall_SuccessWithEmptyBodyLeavesOut(t *testing.T) {
	gw, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, &fakeSession{token: "abc"})

	var out []map[string]any
	if err := gw.Call(context.Background(), port.Call{Method: http.MethodGet, Path: "/members"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("out must stay untouched, got %v", out)
	}
}

func TestCall_SuccessWithUnreadableBodyIsTransportFailure(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"truncated json", "application/json", `[{"id":1,"firstName":"Jean"`},
		{"html page", "text/html; charset=utf-8", "<html><body>Bad gateway</body></html>"},
		{"plain text", "text/plain", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, m, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = io.WriteString(w, tt.body)
			}, &fakeSession{token: "abc"})

			var out []map[string]any
			err := gw.Call(context.Background(), port.Call{Method: http.MethodGet, Path: "/members"}, &out)

			var transport *domain.ErrTransport
			if !errors.As(err, &transport) {
				t.Fatalf("expected ErrTransport, got %v", err)
			}
			if out != nil {
				t.Errorf("out must stay untouched, got %v", out)
			}
			if got := m.Snapshot().BackendCalls[observability.OutcomeTransport]; got != 1 {
				t.Errorf("expected one transport outcome, got %v", got)
			}
		})
	}
}

func TestCall_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	gw := gateway.New(&fakeSession{token: "abc"}, gateway.Options{BaseURL: url})

	err := gw.Call(context.Background(), port.Call{Method: http.MethodGet, Path: "/members"}, nil)

	var transport *domain.ErrTransport
	if !errors.As(err, &transport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if transport.Op != "GET /members" {
		t.Errorf("unexpected op %q", transport.Op)
	}
}

func TestCall_NoRetries(t *testing.T) {
	gw, _, hits := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, &fakeSession{token: "abc"})

	_ = gw.Call(context.Background(), port.Call{Method: http.MethodGet, Path: "/members"}, nil)

	if got := atomic.LoadInt32(hits); got != 1 {
		t.Errorf("expected exactly one attempt, got %d", got)
	}
}

func TestCall_SendsJSONBody(t *testing.T) {
	var gotType, gotBody string
	gw, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}, &fakeSession{token: "abc"})

	err := gw.Call(context.Background(), port.Call{Method: http.MethodPost, Path: "/members/bulk-delete", Body: []int64{3, 5}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotType != "application/json" {
		t.Errorf("unexpected content type %q", gotType)
	}
	if gotBody != "[3,5]" {
		t.Errorf("bulk delete body must be a bare array, got %q", gotBody)
	}
}
