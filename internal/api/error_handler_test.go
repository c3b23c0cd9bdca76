package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"bare unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{"bare forbidden", domain.ErrForbidden, http.StatusForbidden, "Insufficient permissions"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
		{"validation", domain.Validation("name is required"), http.StatusBadRequest, "name is required"},
		{"conflict", domain.ErrGroupExists, http.StatusConflict, "Group already exists"},
		{"wrapped not found", fmt.Errorf("load: %w", domain.ErrClientNotFound), http.StatusNotFound, "Client not found"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"unexpected", errors.New("socket closed"), http.StatusInternalServerError, "Internal server error"},
		{"unknown kind", domain.NewError(errors.New("weird"), "secret detail"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := resolveError(tt.err, zerolog.Nop(), c)
			if code != tt.wantCode || msg != tt.wantMsg {
				t.Fatalf("got (%d, %q), want (%d, %q)", code, msg, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusNoContent)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrConflict, c)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("committed response was overwritten: %d %q", rec.Code, rec.Body.String())
	}
}
