// Package alert provides an operator alert feed with severity levels,
// bounded in-memory storage, acknowledgement, and Echo HTTP handlers.
// Fetch and persistence failures surface here so an operator notices them
// without tailing logs.
package alert

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// ---------------------------------------------------------------------------
// Severity
// ---------------------------------------------------------------------------

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// ---------------------------------------------------------------------------
// Alert
// ---------------------------------------------------------------------------

// Alert represents a single operator-facing event.
type Alert struct {
	ID             string            `json:"id"`
	Severity       string            `json:"severity"`
	Code           string            `json:"code"`
	Message        string            `json:"message"`
	Details        map[string]string `json:"details,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
}

// ---------------------------------------------------------------------------
// Manager
// ---------------------------------------------------------------------------

// Manager records alerts newest first, capped at a fixed size. Raising an
// alert also writes a structured log entry at the matching level.
type Manager struct {
	mu     sync.RWMutex
	alerts []*Alert
	limit  int
	logger zerolog.Logger
}

// NewManager constructs a Manager retaining at most limit alerts.
func NewManager(logger zerolog.Logger, limit int) *Manager {
	if limit <= 0 {
		limit = 200
	}
	return &Manager{limit: limit, logger: logger}
}

// Raise records an alert and logs it. Unknown severities are kept verbatim
// but logged at error level so nothing gets buried.
func (m *Manager) Raise(severity, code, message string, details map[string]string) {
	a := &Alert{
		ID:        uuid.New().String(),
		Severity:  severity,
		Code:      code,
		Message:   message,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.alerts = append([]*Alert{a}, m.alerts...)
	if len(m.alerts) > m.limit {
		m.alerts = m.alerts[:m.limit]
	}
	m.mu.Unlock()

	var evt *zerolog.Event
	switch severity {
	case SeverityInfo:
		evt = m.logger.Info()
	case SeverityWarning:
		evt = m.logger.Warn()
	default:
		evt = m.logger.Error()
	}
	evt = evt.Str("alert_id", a.ID).Str("code", code)
	for k, v := range details {
		evt = evt.Str(k, v)
	}
	evt.Msg(message)
}

// List returns a page of alerts, newest first, and the total count after
// filtering. An empty severity matches everything.
func (m *Manager) List(severity string, limit, offset int) ([]*Alert, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []*Alert
	for _, a := range m.alerts {
		if severity == "" || a.Severity == severity {
			filtered = append(filtered, a)
		}
	}

	total := len(filtered)
	if offset >= total {
		return nil, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total
}

// Get retrieves an alert by ID.
func (m *Manager) Get(id string) (*Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("alert %q not found", id)
}

// Acknowledge marks an alert as seen by an operator.
func (m *Manager) Acknowledge(id string) (*Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.ID == id {
			if a.AcknowledgedAt == nil {
				now := time.Now().UTC()
				a.AcknowledgedAt = &now
			}
			return a, nil
		}
	}
	return nil, fmt.Errorf("alert %q not found", id)
}

// Stats returns counts of retained alerts grouped by severity, plus how
// many are still unacknowledged.
func (m *Manager) Stats() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]int{"unacknowledged": 0}
	for _, a := range m.alerts {
		stats[a.Severity]++
		if a.AcknowledgedAt == nil {
			stats["unacknowledged"]++
		}
	}
	return stats
}

// ---------------------------------------------------------------------------
// HTTP Handler
// ---------------------------------------------------------------------------

// Handler exposes the alert feed over HTTP via Echo.
type Handler struct {
	manager *Manager
}

// NewHandler creates a new Handler.
func NewHandler(mgr *Manager) *Handler {
	return &Handler{manager: mgr}
}

// RegisterRoutes registers all alert routes on the given Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/alerts", h.HandleList)
	g.GET("/alerts/stats", h.HandleStats)
	g.POST("/alerts/:id/ack", h.HandleAcknowledge)
}

// HandleList handles GET /alerts?severity=...
func (h *Handler) HandleList(c echo.Context) error {
	params := pagination.FromContext(c)
	severity := c.QueryParam("severity")

	alerts, total := h.manager.List(severity, params.Limit, params.Offset)
	return c.JSON(http.StatusOK, pagination.NewResponse(alerts, total, params.Limit, params.Offset))
}

// HandleStats handles GET /alerts/stats.
func (h *Handler) HandleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats())
}

// HandleAcknowledge handles POST /alerts/:id/ack.
func (h *Handler) HandleAcknowledge(c echo.Context) error {
	a, err := h.manager.Acknowledge(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, a)
}
