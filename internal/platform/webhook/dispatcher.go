// Package webhook delivers action notices to per-event HTTP endpoints with
// HMAC-SHA256 signing. Delivery is fire-and-forget: outcomes are logged and
// kept in an in-memory delivery log, never reported back to the caller, and
// never retried.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/telemetry"
)

// Endpoint is one configured delivery target. Endpoints are wired from
// configuration at startup, one per event; there is no registration API.
type Endpoint struct {
	Event  string `json:"event"`
	URL    string `json:"url"`
	Secret string `json:"-"`
}

// DeliveryAttempt records one POST to an endpoint.
type DeliveryAttempt struct {
	ID           uuid.UUID     `json:"id"`
	Event        string        `json:"event"`
	URL          string        `json:"url"`
	Success      bool          `json:"success"`
	StatusCode   int           `json:"status_code,omitempty"`
	Error        string        `json:"error,omitempty"`
	ResponseBody string        `json:"response_body,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
	CreatedAt    time.Time     `json:"created_at"`
}

// SignPayload returns the hex HMAC-SHA256 of payload under secret.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the hex-encoded signature matches the
// HMAC-SHA256 of payload under secret. Receivers use this to authenticate
// notices.
func VerifySignature(payload []byte, secret, signature string) bool {
	expected := SignPayload(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Dispatcher posts JSON payloads to the endpoint registered for an event.
type Dispatcher struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint

	client   *http.Client
	logger   zerolog.Logger
	metrics  *telemetry.Provider
	timeout  time.Duration
	syncMode bool

	wg  sync.WaitGroup
	log *DeliveryLog
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHTTPClient overrides the delivery HTTP client.
func WithHTTPClient(c *http.Client) DispatcherOption {
	return func(d *Dispatcher) { d.client = c }
}

// WithTimeout bounds a single delivery attempt.
func WithTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = t }
}

// WithSyncDelivery makes Dispatch deliver inline instead of on a goroutine.
// Tests use this to observe attempts without sleeping.
func WithSyncDelivery() DispatcherOption {
	return func(d *Dispatcher) { d.syncMode = true }
}

// WithMetrics attaches the telemetry provider.
func WithMetrics(p *telemetry.Provider) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = p }
}

// WithDeliveryLogSize caps how many attempts the in-memory log keeps.
func WithDeliveryLogSize(n int) DispatcherOption {
	return func(d *Dispatcher) { d.log = NewDeliveryLog(n) }
}

// NewDispatcher creates a Dispatcher with a 10 second delivery timeout and a
// log of the last 500 attempts.
func NewDispatcher(logger zerolog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		endpoints: make(map[string]Endpoint),
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
		timeout:   10 * time.Second,
		log:       NewDeliveryLog(500),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterEndpoint binds an event to a URL and signing secret. Registering
// an empty URL removes the binding, so unset config keys just disable the
// event.
func (d *Dispatcher) RegisterEndpoint(event, url, secret string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if url == "" {
		delete(d.endpoints, event)
		return
	}
	d.endpoints[event] = Endpoint{Event: event, URL: url, Secret: secret}
}

// Endpoints lists the configured endpoints, secrets omitted.
func (d *Dispatcher) Endpoints() []Endpoint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Endpoint, 0, len(d.endpoints))
	for _, ep := range d.endpoints {
		out = append(out, ep)
	}
	return out
}

// Dispatch posts the payload to the event's endpoint. It never blocks on the
// network (unless built with WithSyncDelivery), never returns an outcome and
// never retries; failures end up in the log and the delivery record. Events
// without an endpoint are dropped quietly.
func (d *Dispatcher) Dispatch(event string, payload interface{}) {
	d.mu.RLock()
	ep, ok := d.endpoints[event]
	d.mu.RUnlock()
	if !ok {
		d.logger.Debug().Str("event", event).Msg("no webhook endpoint registered, notice dropped")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error().Err(err).Str("event", event).Msg("webhook payload marshal failed")
		return
	}

	if d.syncMode {
		d.deliver(ep, body)
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(ep, body)
	}()
}

// Wait blocks until every in-flight delivery has finished. Shutdown calls it
// so the process does not exit mid-POST.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Deliveries exposes the delivery log.
func (d *Dispatcher) Deliveries() *DeliveryLog {
	return d.log
}

func (d *Dispatcher) deliver(ep Endpoint, body []byte) {
	attempt := DeliveryAttempt{
		ID:        uuid.New(),
		Event:     ep.Event,
		URL:       ep.URL,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		attempt.Error = err.Error()
		d.finish(attempt)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", ep.Event)
	req.Header.Set("X-Webhook-ID", attempt.ID.String())
	req.Header.Set("X-Webhook-Timestamp", attempt.CreatedAt.Format(time.RFC3339))
	if ep.Secret != "" {
		req.Header.Set("X-Webhook-Signature", "sha256="+SignPayload(body, ep.Secret))
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	attempt.Duration = time.Since(start)
	if err != nil {
		attempt.Error = err.Error()
		d.finish(attempt)
		return
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	attempt.StatusCode = resp.StatusCode
	attempt.ResponseBody = string(respBody)
	attempt.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	d.finish(attempt)
}

func (d *Dispatcher) finish(attempt DeliveryAttempt) {
	d.log.Record(attempt)

	result := "ok"
	evt := d.logger.Info()
	if !attempt.Success {
		result = "error"
		evt = d.logger.Warn()
	}
	if d.metrics != nil {
		d.metrics.IncWith("clinicdesk_webhook_deliveries_total", "result", result)
	}
	evt.
		Str("event", attempt.Event).
		Str("url", attempt.URL).
		Int("status", attempt.StatusCode).
		Str("error", attempt.Error).
		Dur("duration", attempt.Duration).
		Msg("webhook delivery")
}
