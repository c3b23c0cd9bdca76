package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk-api/internal/api/response"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List returns every user. Password hashes are never serialized.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.User}
// @Failure      401  {object}  response.Envelope
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, users)
}

// Create adds an account.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), ports.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return response.Created(c, user)
}

// UpdatePermissions replaces a user's role and permission flags.
//
// @Summary      Update user access
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "User ID"
// @Param        body  body      updateAccessRequest  true  "Role and permissions"
// @Success      200   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/users/{id}/permissions [put]
func (h *UserHandler) UpdatePermissions(c echo.Context) error {
	var req updateAccessRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateAccess(c.Request().Context(), c.Param("id"), domain.Role(req.Role), req.Permissions)
	if err != nil {
		return err
	}
	return response.OK(c, user)
}
