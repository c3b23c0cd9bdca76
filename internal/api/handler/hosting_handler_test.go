package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/api/middleware"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

type stubHostingService struct {
	services []*domain.HostingService
	within   time.Duration
	createBy domain.Identity
	created  *domain.HostingService
}

func (s *stubHostingService) List(context.Context) ([]*domain.HostingService, error) {
	return s.services, nil
}

func (s *stubHostingService) ListExpiring(_ context.Context, within time.Duration) ([]*domain.HostingService, error) {
	s.within = within
	return s.services, nil
}

func (s *stubHostingService) Create(_ context.Context, by domain.Identity, h *domain.HostingService) (*domain.HostingService, error) {
	s.createBy, s.created = by, h
	h.ID = "h1"
	return h, nil
}

func (s *stubHostingService) Update(_ context.Context, by domain.Identity, h *domain.HostingService) (*domain.HostingService, error) {
	return h, nil
}

func (s *stubHostingService) Delete(context.Context, string) error { return nil }

func TestHostingHandler_List_DaysRemaining(t *testing.T) {
	e := newEcho()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubHostingService{services: []*domain.HostingService{
		{ID: "h1", Name: "acme.com", EndDate: now.AddDate(0, 0, 10)},
	}}
	handler := NewHostingHandler(stub)
	handler.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/hosting", nil), rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var data []map[string]any
	decode(t, rec, &data)
	if len(data) != 1 || data[0]["name"] != "acme.com" || data[0]["daysRemaining"] != float64(10) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHostingHandler_Expiring_Window(t *testing.T) {
	e := newEcho()
	stub := &stubHostingService{}
	handler := NewHostingHandler(stub)

	tests := []struct {
		query string
		want  time.Duration
	}{
		{"", 30 * 24 * time.Hour},
		{"?days=7", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/hosting/expiring"+tt.query, nil), httptest.NewRecorder())
		if err := handler.Expiring(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if stub.within != tt.want {
			t.Fatalf("query %q: window %v, want %v", tt.query, stub.within, tt.want)
		}
	}

	for _, q := range []string{"?days=abc", "?days=0", "?days=1000"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/hosting/expiring"+q, nil), httptest.NewRecorder())
		if err := handler.Expiring(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("query %q: expected validation error, got %v", q, err)
		}
	}
}

func TestHostingHandler_Create_PassesCaller(t *testing.T) {
	e := newEcho()
	stub := &stubHostingService{}
	handler := NewHostingHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/hosting", `{"name":"acme.com","endDate":"2025-01-31","provider":"Hetzner"}`), rec)
	middleware.SetIdentity(c, domain.Identity{UserID: "u1", Username: "alice"})

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.createBy.Username != "alice" {
		t.Fatalf("expected caller alice, got %+v", stub.createBy)
	}
	if !stub.created.EndDate.Equal(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end date: %v", stub.created.EndDate)
	}
}

func TestHostingHandler_Create_MissingEndDate(t *testing.T) {
	e := newEcho()
	handler := NewHostingHandler(&stubHostingService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/hosting", `{"name":"acme.com"}`), httptest.NewRecorder())
	middleware.SetIdentity(c, domain.Identity{UserID: "u1", Username: "alice"})

	if err := handler.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
