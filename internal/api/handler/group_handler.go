package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk-api/internal/api/response"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
)

type GroupHandler struct {
	service ports.GroupService
}

func NewGroupHandler(service ports.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

// List returns all groups sorted by name.
//
// @Summary      List groups
// @Tags         groups
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.Group}
// @Failure      401  {object}  response.Envelope
// @Router       /api/groups [get]
func (h *GroupHandler) List(c echo.Context) error {
	groups, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, groups)
}

// Create adds a group. Names are unique ignoring case.
//
// @Summary      Create group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        body  body      groupRequest  true  "Group"
// @Success      201   {object}  response.Envelope{data=domain.Group}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/groups [post]
func (h *GroupHandler) Create(c echo.Context) error {
	var req groupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	group, err := h.service.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return response.Created(c, group)
}

// Delete removes a group. Clients and tasks keep the group name they carry.
//
// @Summary      Delete group
// @Tags         groups
// @Param        id   path  string  true  "Group ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/groups/{id} [delete]
func (h *GroupHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.OK(c, nil)
}
