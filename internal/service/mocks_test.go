package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/kv"
	"github.com/apedo/eglise-console/internal/port"
	"github.com/apedo/eglise-console/internal/service"
)

// --- Mocks ---

type reply struct {
	body any
	err  error
}

// mockAPI answers calls from a route table keyed by "METHOD path" and keeps
// every call it saw.
type mockAPI struct {
	mu     sync.Mutex
	routes map[string]reply
	calls  []port.Call
}

func newMockAPI() *mockAPI {
	return &mockAPI{routes: make(map[string]reply)}
}

func (m *mockAPI) on(method, path string, body any, err error) *mockAPI {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[method+" "+path] = reply{body: body, err: err}
	return m
}

func (m *mockAPI) Call(_ context.Context, call port.Call, out any) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	r, ok := m.routes[call.Method+" "+call.Path]
	m.mu.Unlock()

	if !ok {
		return &domain.ErrServerRejected{Status: 404, Message: "no route " + call.Path}
	}
	if r.err != nil {
		return r.err
	}
	if out == nil || r.body == nil {
		return nil
	}
	raw, err := json.Marshal(r.body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (m *mockAPI) seen() []port.Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]port.Call(nil), m.calls...)
}

func (m *mockAPI) methods() []string {
	var out []string
	for _, c := range m.seen() {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

// --- Helpers ---

func newSessions(t *testing.T) *service.SessionService {
	t.Helper()
	return service.NewSessionService(kv.NewMemory(), zap.NewNop())
}

func loggedIn(t *testing.T, role string) *service.SessionService {
	t.Helper()
	s := newSessions(t)
	err := s.Save(context.Background(), &domain.Session{
		ID:       1,
		Email:    "admin@eglise.org",
		FullName: "Pasteur Admin",
		Role:     role,
		Token:    "abc",
	})
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	return s
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
