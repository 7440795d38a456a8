// Package poller keeps the notification list of the logged-in user fresh by
// refetching it on a fixed interval.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/port"
)

var tracer = otel.Tracer("poller")

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 30 * time.Second

// Poller owns the latest notification snapshot.
type Poller struct {
	source   port.NotificationSource
	session  port.SessionSource
	interval time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time

	// refresh serializes fetches so a mark-read refetch and a tick never race.
	refresh sync.Mutex

	mu   sync.RWMutex
	snap domain.NotificationSnapshot
}

// New creates a poller. A non-positive interval means DefaultInterval.
func New(source port.NotificationSource, session port.SessionSource, interval time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		session:  session,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		snap:     domain.NotificationSnapshot{Items: []domain.Notification{}},
	}
}

// Handle controls a running poller.
type Handle struct {
	cron   *cron.Cron
	cancel context.CancelFunc
	once   sync.Once
}

// Stop cancels any in-flight fetch and waits for the schedule to wind down.
// Calling it more than once is safe.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.cron.Stop().Done()
	})
}

// Start fetches once immediately, then on every interval until ctx is done
// or the handle is stopped. Overlapping ticks are skipped.
func (p *Poller) Start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{p.logger.Sugar()}),
		cron.SkipIfStillRunning(cronLogger{p.logger.Sugar()}),
	))
	every := fmt.Sprintf("@every %s", p.interval)
	if _, err := c.AddFunc(every, func() { p.tick(ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule notification poll: %w", err)
	}

	p.tick(ctx)
	c.Start()

	h := &Handle{cron: c, cancel: cancel}
	go func() {
		<-ctx.Done()
		h.Stop()
	}()

	p.logger.Info("notification poller started", zap.Duration("interval", p.interval))
	return h, nil
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.Refresh(ctx); err != nil {
		p.logger.Warn("notification poll failed", zap.Error(err))
	}
}

// Refresh replaces the snapshot with a fresh fetch. Without a session it
// empties the list and returns nil. On failure the previous list is kept and
// the error recorded.
func (p *Poller) Refresh(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Poller.Refresh")
	defer span.End()

	p.refresh.Lock()
	defer p.refresh.Unlock()

	if _, ok := p.session.Token(ctx); !ok {
		p.metrics.RecordPoll("skipped", 0)
		p.mu.Lock()
		p.snap = domain.NotificationSnapshot{Items: []domain.Notification{}, LastRefresh: p.snap.LastRefresh}
		p.mu.Unlock()
		return nil
	}

	items, err := p.source.List(ctx)
	if err != nil {
		p.metrics.RecordPoll("error", 0)
		p.mu.Lock()
		p.snap.LastError = err.Error()
		p.mu.Unlock()
		return err
	}
	if items == nil {
		items = []domain.Notification{}
	}

	unread := countUnread(items)
	p.metrics.RecordPoll("ok", unread)
	span.SetAttributes(attribute.Int("notifications.unread", unread))

	p.mu.Lock()
	p.snap = domain.NotificationSnapshot{
		Items:       items,
		Unread:      unread,
		LastRefresh: p.now(),
	}
	p.mu.Unlock()
	return nil
}

// Snapshot returns the latest state.
func (p *Poller) Snapshot() domain.NotificationSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := p.snap
	s.Items = append([]domain.Notification(nil), p.snap.Items...)
	return s
}

// MarkRead acknowledges one notification and refetches right away.
func (p *Poller) MarkRead(ctx context.Context, id int64) (domain.NotificationSnapshot, error) {
	if err := p.source.MarkRead(ctx, id); err != nil {
		return p.Snapshot(), err
	}
	if err := p.Refresh(ctx); err != nil {
		return p.Snapshot(), err
	}
	return p.Snapshot(), nil
}

// MarkAllRead acknowledges everything and refetches right away.
func (p *Poller) MarkAllRead(ctx context.Context) (domain.NotificationSnapshot, error) {
	if err := p.source.MarkAllRead(ctx); err != nil {
		return p.Snapshot(), err
	}
	if err := p.Refresh(ctx); err != nil {
		return p.Snapshot(), err
	}
	return p.Snapshot(), nil
}

func countUnread(items []domain.Notification) int {
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}

// cronLogger adapts zap to cron's logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
