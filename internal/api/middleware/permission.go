package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk-api/internal/api/response"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/pkg/metrics"
)

// RequirePermission allows the request only when the caller holds capability
// c. Anonymous callers get 401; callers without the capability get 403.
// Roles are not consulted.
func RequirePermission(c domain.Capability) echo.MiddlewareFunc {
	gate := RequireIdentity()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return gate(func(ctx echo.Context) error {
			id, _ := IdentityFrom(ctx)
			if !id.Can(c) {
				metrics.AccessDeniedTotal.WithLabelValues(string(c)).Inc()
				return response.Fail(ctx, http.StatusForbidden, "Insufficient permissions")
			}
			return next(ctx)
		})
	}
}
