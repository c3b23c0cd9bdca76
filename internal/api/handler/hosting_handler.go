package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk-api/internal/api/response"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
)

const defaultExpiringDays = 30

type HostingHandler struct {
	service ports.HostingService
	now     func() time.Time
}

func NewHostingHandler(service ports.HostingService) *HostingHandler {
	return &HostingHandler{service: service, now: time.Now}
}

// hostingView adds the computed days until renewal.
type hostingView struct {
	*domain.HostingService
	DaysRemaining int `json:"daysRemaining"`
}

func (h *HostingHandler) views(services []*domain.HostingService) []hostingView {
	now := h.now()
	out := make([]hostingView, 0, len(services))
	for _, s := range services {
		out = append(out, hostingView{HostingService: s, DaysRemaining: s.DaysRemaining(now)})
	}
	return out
}

// List returns all hosting services, soonest renewal first.
//
// @Summary      List hosting services
// @Tags         hosting
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]hostingView}
// @Failure      401  {object}  response.Envelope
// @Router       /api/hosting [get]
func (h *HostingHandler) List(c echo.Context) error {
	services, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, h.views(services))
}

// Expiring returns services ending within the given number of days,
// including those already expired.
//
// @Summary      Hosting services due for renewal
// @Tags         hosting
// @Produce      json
// @Param        days  query     int  false  "Window in days (default 30)"
// @Success      200   {object}  response.Envelope{data=[]hostingView}
// @Failure      400   {object}  response.Envelope
// @Router       /api/hosting/expiring [get]
func (h *HostingHandler) Expiring(c echo.Context) error {
	days := defaultExpiringDays
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			return domain.Validation("days must be between 1 and 365")
		}
		days = n
	}

	services, err := h.service.ListExpiring(c.Request().Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	return response.OK(c, h.views(services))
}

// Create adds a hosting service.
//
// @Summary      Create hosting service
// @Tags         hosting
// @Accept       json
// @Produce      json
// @Param        body  body      hostingRequest  true  "Hosting service"
// @Success      201   {object}  response.Envelope{data=domain.HostingService}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /api/hosting [post]
func (h *HostingHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var req hostingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	svc, err := req.toDomain()
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), id, svc)
	if err != nil {
		return err
	}
	return response.Created(c, created)
}

// Update replaces a hosting service.
//
// @Summary      Update hosting service
// @Tags         hosting
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Hosting service ID"
// @Param        body  body      hostingRequest  true  "Hosting service"
// @Success      200   {object}  response.Envelope{data=domain.HostingService}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/hosting/{id} [put]
func (h *HostingHandler) Update(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var req hostingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	svc, err := req.toDomain()
	if err != nil {
		return err
	}
	svc.ID = c.Param("id")

	updated, err := h.service.Update(c.Request().Context(), id, svc)
	if err != nil {
		return err
	}
	return response.OK(c, updated)
}

// Delete removes a hosting service.
//
// @Summary      Delete hosting service
// @Tags         hosting
// @Param        id   path  string  true  "Hosting service ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/hosting/{id} [delete]
func (h *HostingHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.OK(c, nil)
}
