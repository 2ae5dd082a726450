// Package telemetry provides in-process metrics for the dashboard: atomic
// counters and gauges, an HTTP request-duration histogram, and Prometheus
// text exposition. There is no external collector; /metrics is the contract.
package telemetry

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Config controls the provider. Enabled defaults to on; a nil pointer means
// "not set", matching how the surrounding config layer distinguishes an
// explicit false from an absent key.
type Config struct {
	ServiceName string
	Enabled     *bool
}

func (c Config) metricsOn() bool {
	return c.Enabled == nil || *c.Enabled
}

// BoolPtr returns a pointer to b, for literal Config values.
func BoolPtr(b bool) *bool { return &b }

// labelSep joins metric name, label name and label value into one store key.
const labelSep = "|"

// atomicStore holds named int64 cells updated without holding the map lock
// on the hot path. Both counters and gauges sit on top of it.
type atomicStore struct {
	mu    sync.RWMutex
	cells map[string]*int64
}

func newAtomicStore() *atomicStore {
	return &atomicStore{cells: make(map[string]*int64)}
}

func (s *atomicStore) cell(key string) *int64 {
	s.mu.RLock()
	p, ok := s.cells[key]
	s.mu.RUnlock()
	if ok {
		return p
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok = s.cells[key]; ok {
		return p
	}
	p = new(int64)
	s.cells[key] = p
	return p
}

func (s *atomicStore) add(key string, delta int64) { atomic.AddInt64(s.cell(key), delta) }
func (s *atomicStore) set(key string, v int64)     { atomic.StoreInt64(s.cell(key), v) }

func (s *atomicStore) get(key string) int64 {
	s.mu.RLock()
	p, ok := s.cells[key]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

func (s *atomicStore) snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]int64, len(s.cells))
	for k, p := range s.cells {
		cp[k] = atomic.LoadInt64(p)
	}
	return cp
}

// durationBuckets are the request-duration histogram boundaries in seconds.
var durationBuckets = []float64{0.005, 0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0}

type histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []int64
	sum    float64
	total  int64
}

func newHistogram(bounds []float64) *histogram {
	return &histogram{bounds: bounds, counts: make([]int64, len(bounds)+1)}
}

func (h *histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := sort.SearchFloat64s(h.bounds, v)
	h.counts[i]++
	h.sum += v
	h.total++
}

// cumulative returns the running per-bucket totals the exposition format
// wants, the overall count and the sum.
func (h *histogram) cumulative() (buckets []int64, count int64, sum float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	buckets = make([]int64, len(h.bounds))
	var running int64
	for i := range h.bounds {
		running += h.counts[i]
		buckets[i] = running
	}
	return buckets, h.total, h.sum
}

// Provider is the process-wide metrics registry.
type Provider struct {
	cfg      Config
	counters *atomicStore
	gauges   *atomicStore
	duration *histogram
	started  time.Time
}

// NewProvider creates a Provider. One per process is the intended shape.
func NewProvider(cfg Config) *Provider {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "clinicdesk"
	}
	return &Provider{
		cfg:      cfg,
		counters: newAtomicStore(),
		gauges:   newAtomicStore(),
		duration: newHistogram(durationBuckets),
		started:  time.Now(),
	}
}

// Inc bumps an unlabeled counter.
func (p *Provider) Inc(name string) { p.counters.add(name, 1) }

// IncWith bumps a counter carrying a single label.
func (p *Provider) IncWith(name, label, value string) {
	p.counters.add(name+labelSep+label+labelSep+value, 1)
}

// Add bumps an unlabeled counter by delta.
func (p *Provider) Add(name string, delta int64) { p.counters.add(name, delta) }

// SetGauge sets a gauge to an absolute value.
func (p *Provider) SetGauge(name string, v int64) { p.gauges.set(name, v) }

// AddGauge moves a gauge by delta.
func (p *Provider) AddGauge(name string, delta int64) { p.gauges.add(name, delta) }

// Counter reads an unlabeled counter. Mostly for tests.
func (p *Provider) Counter(name string) int64 { return p.counters.get(name) }

// CounterWith reads a labeled counter. Mostly for tests.
func (p *Provider) CounterWith(name, label, value string) int64 {
	return p.counters.get(name + labelSep + label + labelSep + value)
}

// Gauge reads a gauge.
func (p *Provider) Gauge(name string) int64 { return p.gauges.get(name) }

// RequestMetrics returns Echo middleware recording request durations, the
// active-request gauge and a per-status request counter.
func (p *Provider) RequestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.cfg.metricsOn() {
				return next(c)
			}

			p.gauges.add("clinicdesk_http_active_requests", 1)
			start := time.Now()

			err := next(c)

			p.gauges.add("clinicdesk_http_active_requests", -1)
			p.duration.Observe(time.Since(start).Seconds())
			p.IncWith("clinicdesk_http_requests_total", "status", fmt.Sprintf("%d", c.Response().Status))
			return err
		}
	}
}

// helpTexts documents the metrics this process is known to emit; counters
// created at runtime without an entry are still exposed, just without HELP.
var helpTexts = map[string]string{
	"clinicdesk_http_requests_total":           "HTTP requests by response status.",
	"clinicdesk_http_active_requests":          "HTTP requests currently in flight.",
	"clinicdesk_refresh_cycles_total":          "Dashboard fetch cycles by result.",
	"clinicdesk_appointments_fetched_total":    "Appointments returned across all fetch cycles.",
	"clinicdesk_unparseable_appointments":      "Appointments in the last cycle whose raw date did not normalize.",
	"clinicdesk_actions_applied_total":         "Operator actions applied by action.",
	"clinicdesk_action_persist_failures_total": "Status updates rejected by the store.",
	"clinicdesk_webhook_deliveries_total":      "Webhook delivery attempts by result.",
}

// PrometheusHandler serves the registry in Prometheus text format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		writeGroups(&b, p.counters.snapshot(), "counter")
		writeGroups(&b, p.gauges.snapshot(), "gauge")

		buckets, count, sum := p.duration.cumulative()
		name := "clinicdesk_http_request_duration_seconds"
		fmt.Fprintf(&b, "# HELP %s Duration of HTTP requests in seconds.\n", name)
		fmt.Fprintf(&b, "# TYPE %s histogram\n", name)
		for i, bound := range durationBuckets {
			fmt.Fprintf(&b, "%s_bucket{le=%q} %d\n", name, formatBound(bound), buckets[i])
		}
		fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", name, count)
		fmt.Fprintf(&b, "%s_sum %g\n", name, sum)
		fmt.Fprintf(&b, "%s_count %d\n", name, count)

		return c.String(http.StatusOK, b.String())
	}
}

// writeGroups renders a snapshot grouped by metric name, labeled series
// after bare ones, in deterministic order.
func writeGroups(b *strings.Builder, snap map[string]int64, typ string) {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lastName := ""
	for _, k := range keys {
		parts := strings.SplitN(k, labelSep, 3)
		name := parts[0]
		if name != lastName {
			if help, ok := helpTexts[name]; ok {
				fmt.Fprintf(b, "# HELP %s %s\n", name, help)
			}
			fmt.Fprintf(b, "# TYPE %s %s\n", name, typ)
			lastName = name
		}
		if len(parts) == 3 {
			fmt.Fprintf(b, "%s{%s=%q} %d\n", name, parts[1], parts[2], snap[k])
		} else {
			fmt.Fprintf(b, "%s %d\n", name, snap[k])
		}
	}
	if len(keys) > 0 {
		b.WriteByte('\n')
	}
}

func formatBound(bound float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", bound), "0"), ".")
}

// Uptime reports how long the provider has been alive; the health endpoint
// includes it.
func (p *Provider) Uptime() time.Duration {
	return time.Since(p.started)
}
