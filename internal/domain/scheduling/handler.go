package scheduling

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.GetDashboard)
	api.POST("/dashboard/refresh", h.RefreshDashboard)
	api.PUT("/dashboard/window", h.SetWindow)
	api.POST("/dashboard/select", h.ToggleSelection)
	api.POST("/appointments/apply", h.ApplyAction)
}

// -- Dashboard Handlers --

func (h *Handler) GetDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Board())
}

func (h *Handler) RefreshDashboard(c echo.Context) error {
	if err := h.svc.Refresh(c.Request().Context()); err != nil {
		// The board is valid (empty) after a failed fetch; return it with the
		// error noted so the operator sees the empty state, not a dead page.
		return c.JSON(http.StatusOK, refreshResponse{Board: h.svc.Board(), FetchError: err.Error()})
	}
	return c.JSON(http.StatusOK, refreshResponse{Board: h.svc.Board()})
}

type refreshResponse struct {
	Board      BoardView `json:"board"`
	FetchError string    `json:"fetch_error,omitempty"`
}

type windowRequest struct {
	Days int `json:"days"`
}

func (h *Handler) SetWindow(c echo.Context) error {
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetWindow(req.Days); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.Board())
}

type selectRequest struct {
	Key string `json:"key"`
}

func (h *Handler) ToggleSelection(c echo.Context) error {
	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}
	h.svc.ToggleSelect(req.Key)
	return c.JSON(http.StatusOK, h.svc.Board())
}

// -- Action Handler --

type selectorPayload struct {
	ID          string `json:"id,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
	RawDate     string `json:"raw_date,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
}

type applyRequest struct {
	Selector  selectorPayload `json:"selector"`
	Action    string          `json:"action"`
	Confirmed bool            `json:"confirmed"`
}

type applyResponse struct {
	Applied     bool         `json:"applied"`
	Appointment *Appointment `json:"appointment,omitempty"`
	Board       BoardView    `json:"board"`
}

func (h *Handler) ApplyAction(c echo.Context) error {
	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sel, err := req.Selector.toSelector()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.ApplyAction(c.Request().Context(), sel, Action(req.Action), req.Confirmed)
	switch {
	case err == nil:
	case errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrInvalidAction), errors.Is(err, ErrInvalidSelector):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPersistenceFailed):
		return echo.NewHTTPError(http.StatusBadGateway, "status update could not be persisted; board reloaded")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := applyResponse{Applied: result.Applied, Board: h.svc.Board()}
	if result.Applied {
		appt := result.Appointment
		resp.Appointment = &appt
	}
	return c.JSON(http.StatusOK, resp)
}

func (p selectorPayload) toSelector() (Selector, error) {
	if p.ID != "" {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return Selector{}, errors.New("invalid appointment id")
		}
		return SelectorForID(id), nil
	}
	sel := SelectorForFields(p.PatientName, p.RawDate, p.StartTime)
	if err := sel.Validate(); err != nil {
		return Selector{}, err
	}
	return sel, nil
}
