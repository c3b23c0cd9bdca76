package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/api/handler"
	"github.com/taskdesk/taskdesk-api/internal/api/middleware"
	"github.com/taskdesk/taskdesk-api/internal/api/response"
	"github.com/taskdesk/taskdesk-api/internal/auth"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
	"github.com/taskdesk/taskdesk-api/internal/core/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memGroupRepo struct {
	groups []*domain.Group
}

func (r *memGroupRepo) List(context.Context) ([]*domain.Group, error) { return r.groups, nil }

func (r *memGroupRepo) FindByName(_ context.Context, name string) (*domain.Group, error) {
	for _, g := range r.groups {
		if domain.GroupKey(g.Name) == domain.GroupKey(name) {
			return g, nil
		}
	}
	return nil, domain.ErrGroupNotFound
}

func (r *memGroupRepo) Create(_ context.Context, g *domain.Group) (*domain.Group, error) {
	g.ID = fmt.Sprintf("g%d", len(r.groups)+1)
	r.groups = append(r.groups, g)
	return g, nil
}

func (r *memGroupRepo) Delete(context.Context, string) error { return nil }

type stubHosting struct {
	ports.HostingService
	calls int
}

func (s *stubHosting) List(context.Context) ([]*domain.HostingService, error) {
	s.calls++
	return []*domain.HostingService{}, nil
}

func (s *stubHosting) Create(_ context.Context, by domain.Identity, h *domain.HostingService) (*domain.HostingService, error) {
	s.calls++
	h.ID, h.CreatedBy, h.UpdatedBy = "h1", by.Username, by.Username
	return h, nil
}

type failingTasks struct {
	ports.TaskService
}

func (failingTasks) List(context.Context, domain.TaskFilter) ([]*domain.Task, error) {
	return nil, fmt.Errorf("mongo: connection reset")
}

type fixture struct {
	e       *echo.Echo
	tokens  *auth.TokenService
	hosting *stubHosting
}

func newFixture(t *testing.T, production bool) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenService([]byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	log := zerolog.Nop()
	hosting := &stubHosting{}

	e := NewRouter(Options{
		Services: Services{
			Groups:  service.NewGroupService(&memGroupRepo{}, log),
			Hosting: hosting,
			Tasks:   failingTasks{},
		},
		Authenticator: middleware.NewAuthenticator(tokens, "token", log),
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"mongodb": func(context.Context) error { return nil },
		}, handler.DebugInfo{Env: "test", Database: "taskdesk"}, production),
		Logger:     log,
		Production: production,
	})
	return &fixture{e: e, tokens: tokens, hosting: hosting}
}

func (f *fixture) do(t *testing.T, method, path, body string, id *domain.Identity) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if id != nil {
		token, _, err := f.tokens.Issue(*id)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (response.Envelope, map[string]any) {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	var data map[string]any
	if len(raw.Data) > 0 && raw.Data[0] == '{' {
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			t.Fatalf("invalid data: %v", err)
		}
	}
	return response.Envelope{Success: raw.Success, Error: raw.Error}, data
}

var (
	editor = &domain.Identity{
		UserID:      "u1",
		Username:    "alice",
		Role:        domain.RoleMember,
		Permissions: domain.Permissions{CanEditClients: true},
	}
	viewer = &domain.Identity{
		UserID:   "u2",
		Username: "bob",
		Role:     domain.RoleAdmin,
	}
)

func TestRouter_CreateGroupThenDuplicate(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/groups", `{"name":"Ops"}`, editor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	env, data := decodeEnvelope(t, rec)
	if !env.Success || data["name"] != "Ops" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/groups", `{"name":"ops"}`, editor)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	env, _ = decodeEnvelope(t, rec)
	if env.Success || env.Error != "Group already exists" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_HostingRequiresCookie(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/hosting", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"success":false,"error":"Unauthorized"}` {
		t.Fatalf("unexpected body: %s", got)
	}
	if f.hosting.calls != 0 {
		t.Fatalf("service should not be called for anonymous requests")
	}

	rec = f.do(t, http.MethodGet, "/api/hosting", "", viewer)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with cookie, got %d", rec.Code)
	}
}

func TestRouter_HostingCreateRequiresCanEditClients(t *testing.T) {
	f := newFixture(t, false)
	body := `{"name":"acme.com","endDate":"2025-01-31"}`

	rec := f.do(t, http.MethodPost, "/api/hosting", body, viewer)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"success":false,"error":"Insufficient permissions"}` {
		t.Fatalf("unexpected body: %s", got)
	}
	if f.hosting.calls != 0 {
		t.Fatalf("service should not be called without permission")
	}

	rec = f.do(t, http.MethodPost, "/api/hosting", body, editor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	_, data := decodeEnvelope(t, rec)
	if data["createdBy"] != "alice" || data["updatedBy"] != "alice" {
		t.Fatalf("unexpected stamps: %v", data)
	}
}

func TestRouter_ValidationError(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/groups", `{}`, editor)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	env, _ := decodeEnvelope(t, rec)
	if env.Success || env.Error != "name is required" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_InternalErrorIsMasked(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/tasks", "", viewer)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	env, _ := decodeEnvelope(t, rec)
	if env.Error != "Internal server error" || strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal details leaked: %s", rec.Body.String())
	}
}

func TestRouter_TamperedCookieIsAnonymous(t *testing.T) {
	f := newFixture(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "eyJhbGciOiJub25lIn0.e30."})
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_HealthAndDebug(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	_, data := decodeEnvelope(t, rec)
	if data["status"] != "ok" {
		t.Fatalf("unexpected health: %s", rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/debug", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 outside production, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), testSecret) {
		t.Fatalf("debug output leaked the secret")
	}

	prod := newFixture(t, true)
	rec = prod.do(t, http.MethodGet, "/api/debug", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 in production, got %d", rec.Code)
	}
	env, _ := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatalf("expected failure envelope, got %s", rec.Body.String())
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	env, _ := decodeEnvelope(t, rec)
	if env.Success || env.Error == "" {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
}
