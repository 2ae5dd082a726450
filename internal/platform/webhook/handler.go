package webhook

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// Handler exposes the delivery log and endpoint bindings for operators.
type Handler struct {
	dispatcher *Dispatcher
}

func NewHandler(d *Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

// RegisterRoutes registers webhook observability routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/deliveries", h.ListDeliveries)
	api.GET("/deliveries/stats", h.DeliveryStats)
	api.GET("/webhooks", h.ListEndpoints)
}

// ListDeliveries returns recent delivery attempts, newest first.
func (h *Handler) ListDeliveries(c echo.Context) error {
	params := pagination.FromContext(c)
	attempts, total := h.dispatcher.Deliveries().List(params.Limit, params.Offset)
	return c.JSON(http.StatusOK, pagination.NewResponse(attempts, total, params.Limit, params.Offset))
}

// DeliveryStats returns success/failure counts for retained attempts.
func (h *Handler) DeliveryStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dispatcher.Deliveries().Stats())
}

// ListEndpoints returns the configured event bindings. Secrets are never
// serialized.
func (h *Handler) ListEndpoints(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"endpoints": h.dispatcher.Endpoints(),
	})
}
