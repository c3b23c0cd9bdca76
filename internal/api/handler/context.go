package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk-api/internal/api/middleware"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

// caller returns the identity stored by the auth middleware. Gated routes
// always have one; the check guards handlers mounted without a gate.
func caller(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validation("invalid request body")
	}
	return c.Validate(req)
}
