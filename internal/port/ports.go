// Package port defines the interfaces (ports) between the console's services
// and its infrastructure. Services depend on these, never on concrete adapters.
package port

import (
	"context"
	"errors"

	"github.com/apedo/eglise-console/internal/domain"
)

// ErrKeyNotFound is returned by KV.Get for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// KV is the local key-value store that survives restarts (the browser's
// local storage in the original console).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SessionSource gives the gateway access to the current bearer token and lets
// it drop the session when the backend refuses it.
type SessionSource interface {
	Token(ctx context.Context) (string, bool)
	Invalidate(ctx context.Context)
}

// Call describes one backend request relative to the API root.
type Call struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
	// Public calls carry no bearer token and never trigger a forced logout.
	Public bool
}

// API executes backend calls and decodes the JSON answer into out (may be nil).
type API interface {
	Call(ctx context.Context, call Call, out any) error
}

// NotificationSource is what the poller needs from the notification synchronizer.
type NotificationSource interface {
	List(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
}
