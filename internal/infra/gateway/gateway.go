// Package gateway is the single path through which the console talks to the
// backend API. It attaches the session's bearer token, classifies every
// answer into the domain error taxonomy and drops the session when the
// backend refuses it.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/infra/resilience"
	"github.com/apedo/eglise-console/internal/port"
)

var tracer = otel.Tracer("gateway")

// readErrorMessage is the message surfaced when an answer cannot be read.
const readErrorMessage = "response read error"

// Options configures a Gateway. Zero values get defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker
	Bulkhead   *resilience.Bulkhead
	Metrics    *observability.Metrics
	Logger     *zap.Logger

	// OnUnauthorized runs after the session was dropped on a 401/403, so the
	// caller can send the operator back to the login view.
	OnUnauthorized func(status int)
}

// Gateway implements port.API over HTTP.
type Gateway struct {
	baseURL        string
	httpClient     *http.Client
	cb             *gobreaker.CircuitBreaker
	bulkhead       *resilience.Bulkhead
	metrics        *observability.Metrics
	logger         *zap.Logger
	session        port.SessionSource
	onUnauthorized func(status int)
}

// New creates a Gateway bound to a session source.
func New(session port.SessionSource, opts Options) *Gateway {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewCircuitBreaker("backend", resilience.BreakerSettings{})
	}
	if opts.Bulkhead == nil {
		opts.Bulkhead = resilience.NewBulkhead(8)
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Gateway{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     opts.HTTPClient,
		cb:             opts.Breaker,
		bulkhead:       opts.Bulkhead,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		session:        session,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// BreakerState reports the transport breaker state ("closed", "open", "half-open").
func (g *Gateway) BreakerState() string {
	return g.cb.State().String()
}

// rawResponse is what survives the transport: status, content type and body.
type rawResponse struct {
	status      int
	contentType string
	body        []byte
	readErr     error
}

// Call executes one backend request and decodes a JSON success body into out.
// out may be nil when the caller does not need the answer.
func (g *Gateway) Call(ctx context.Context, call port.Call, out any) error {
	resource := resourceOf(call.Path)
	op := call.Method + " " + call.Path

	ctx, span := tracer.Start(ctx, "Gateway.Call")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", call.Method),
		attribute.String("backend.resource", resource),
		attribute.Bool("backend.public", call.Public),
	)

	start := time.Now()
	outcome, err := g.call(ctx, call, op, out)
	g.metrics.ObserveBackendCall(resource, outcome, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	return err
}

func (g *Gateway) call(ctx context.Context, call port.Call, op string, out any) (string, error) {
	var token string
	if !call.Public {
		t, ok := g.session.Token(ctx)
		if !ok {
			return observability.OutcomeNoSession, &domain.ErrAuthenticationRequired{}
		}
		token = t
	}

	req, err := g.newRequest(ctx, call, token)
	if err != nil {
		return observability.OutcomeTransport, &domain.ErrTransport{Op: op, Err: err}
	}

	if err := g.bulkhead.Acquire(ctx); err != nil {
		return observability.OutcomeTransport, &domain.ErrTransport{Op: op, Err: err}
	}
	defer g.bulkhead.Release()

	// Only transport failures reach the breaker; HTTP answers of any status
	// mean the backend is up.
	result, err := g.cb.Execute(func() (any, error) {
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		return &rawResponse{
			status:      resp.StatusCode,
			contentType: resp.Header.Get("Content-Type"),
			body:        body,
			readErr:     readErr,
		}, nil
	})
	if err != nil {
		g.logger.Error("backend unreachable",
			zap.String("op", op),
			zap.Error(err),
		)
		return observability.OutcomeTransport, &domain.ErrTransport{Op: op, Err: err}
	}

	return g.classify(ctx, call, op, result.(*rawResponse), out)
}

func (g *Gateway) newRequest(ctx context.Context, call port.Call, token string) (*http.Request, error) {
	u := g.baseURL + call.Path
	if len(call.Query) > 0 {
		q := url.Values{}
		for k, v := range call.Query {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// classify maps an HTTP answer onto the domain errors.
func (g *Gateway) classify(ctx context.Context, call port.Call, op string, raw *rawResponse, out any) (string, error) {
	data, message := parsePayload(raw)

	if raw.status >= 200 && raw.status < 300 {
		g.logger.Debug("backend call", zap.String("op", op), zap.Int("status", raw.status))
		if out == nil {
			return observability.OutcomeSuccess, nil
		}
		if data == nil {
			// An empty answer decodes to nothing; any other non-JSON body is a broken answer.
			if raw.readErr == nil && len(bytes.TrimSpace(raw.body)) == 0 {
				return observability.OutcomeSuccess, nil
			}
			g.logger.Warn("backend answered with an unreadable body",
				zap.String("op", op),
				zap.String("content_type", raw.contentType),
			)
			return observability.OutcomeTransport, &domain.ErrTransport{Op: op, Err: errors.New("malformed response")}
		}
		if err := json.Unmarshal(data, out); err != nil {
			return observability.OutcomeTransport, &domain.ErrTransport{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
		}
		return observability.OutcomeSuccess, nil
	}

	g.logger.Warn("backend rejected call",
		zap.String("op", op),
		zap.Int("status", raw.status),
		zap.String("message", message),
	)

	switch {
	case (raw.status == http.StatusUnauthorized || raw.status == http.StatusForbidden) && !call.Public:
		g.session.Invalidate(ctx)
		g.metrics.IncrForcedLogout()
		if g.onUnauthorized != nil {
			g.onUnauthorized(raw.status)
		}
		return observability.OutcomeDenied, &domain.ErrAuthorizationDenied{Status: raw.status, Message: message}
	case raw.status == http.StatusRequestEntityTooLarge:
		return observability.OutcomeTooLarge, &domain.ErrPayloadTooLarge{Message: message}
	default:
		if message == "" {
			message = http.StatusText(raw.status)
		}
		return observability.OutcomeRejected, &domain.ErrServerRejected{Status: raw.status, Message: message}
	}
}

// parsePayload returns the JSON document (nil when the answer carried none)
// and the human-readable message the answer holds.
func parsePayload(raw *rawResponse) ([]byte, string) {
	if raw.readErr != nil {
		return nil, readErrorMessage
	}
	if len(bytes.TrimSpace(raw.body)) == 0 {
		return nil, ""
	}
	if !strings.Contains(raw.contentType, "application/json") {
		return nil, strings.TrimSpace(string(raw.body))
	}
	if !json.Valid(raw.body) {
		return nil, readErrorMessage
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	// Arrays and scalars carry no message.
	_ = json.Unmarshal(raw.body, &envelope)
	if envelope.Message != "" {
		return raw.body, envelope.Message
	}
	return raw.body, envelope.Error
}

// resourceOf is the metric label for a path: its first segment.
func resourceOf(path string) string {
	p := strings.TrimPrefix(path, "/")
	if p == "" {
		return "root"
	}
	seg, _, _ := strings.Cut(p, "/")
	return seg
}
