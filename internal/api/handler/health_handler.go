package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk-api/internal/api/response"
)

const healthTimeout = 3 * time.Second

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandler serves GET /api/health and GET /api/debug.
type HealthHandler struct {
	checks     map[string]Check
	info       DebugInfo
	production bool
	started    time.Time
}

// DebugInfo is the static part of the debug report. It must not carry secrets.
type DebugInfo struct {
	Env        string      `json:"env"`
	Database   string      `json:"database"`
	CookieName string      `json:"cookieName"`
	Throttling bool        `json:"loginThrottling"`
	Connected  func() bool `json:"-"`
}

func NewHealthHandler(checks map[string]Check, info DebugInfo, production bool) *HealthHandler {
	return &HealthHandler{checks: checks, info: info, production: production, started: time.Now()}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Health reports liveness together with the state of each dependency.
//
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Envelope{data=healthResponse}
// @Failure      503  {object}  response.Envelope{data=healthResponse}
// @Router       /api/health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(map[string]dependencyStatus, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, response.Envelope{
			Success: false,
			Data:    healthResponse{Status: "degraded", Dependencies: deps},
			Error:   "Service unavailable",
		})
	}
	return response.OK(c, healthResponse{Status: "ok", Dependencies: deps})
}

type debugResponse struct {
	DebugInfo
	DBConnected bool   `json:"dbConnected"`
	Uptime      string `json:"uptime"`
	GoVersion   string `json:"goVersion"`
	Goroutines  int    `json:"goroutines"`
}

// Debug reports runtime diagnostics. Not available in production.
//
// @Summary      Diagnostics
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Envelope{data=debugResponse}
// @Failure      404  {object}  response.Envelope
// @Router       /api/debug [get]
func (h *HealthHandler) Debug(c echo.Context) error {
	if h.production {
		return echo.ErrNotFound
	}

	connected := false
	if h.info.Connected != nil {
		connected = h.info.Connected()
	}
	return response.OK(c, debugResponse{
		DebugInfo:   h.info,
		DBConnected: connected,
		Uptime:      time.Since(h.started).Round(time.Second).String(),
		GoVersion:   runtime.Version(),
		Goroutines:  runtime.NumGoroutine(),
	})
}
