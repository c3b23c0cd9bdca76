package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
	"github.com/taskdesk/taskdesk-api/internal/pkg/metrics"
)

const maxExpiryWindow = 365 * 24 * time.Hour

type HostingService struct {
	repo ports.HostingRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewHostingService(repo ports.HostingRepository, log zerolog.Logger) *HostingService {
	return &HostingService{repo: repo, log: log, now: time.Now}
}

func (s *HostingService) List(ctx context.Context) ([]*domain.HostingService, error) {
	return s.repo.List(ctx)
}

// ListExpiring returns services due for renewal within the window, including
// those already expired, soonest first.
func (s *HostingService) ListExpiring(ctx context.Context, within time.Duration) ([]*domain.HostingService, error) {
	if within <= 0 || within > maxExpiryWindow {
		return nil, domain.Validation("days must be between 1 and 365")
	}
	return s.repo.ListEndingBefore(ctx, s.now().UTC().Add(within))
}

// Create stores a service, stamping createdBy and updatedBy from the caller.
func (s *HostingService) Create(ctx context.Context, by domain.Identity, h *domain.HostingService) (*domain.HostingService, error) {
	if err := validateHosting(h); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	h.CreatedBy, h.UpdatedBy = by.Username, by.Username
	h.CreatedAt, h.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, h)
	if err != nil {
		return nil, err
	}

	metrics.MutationsTotal.WithLabelValues("hosting", "create").Inc()
	s.log.Info().
		Str("hosting_id", created.ID).
		Str("created_by", created.CreatedBy).
		Time("end_date", created.EndDate).
		Msg("hosting service created")
	return created, nil
}

// Update overwrites a service and stamps updatedBy from the caller.
func (s *HostingService) Update(ctx context.Context, by domain.Identity, h *domain.HostingService) (*domain.HostingService, error) {
	if err := validateHosting(h); err != nil {
		return nil, err
	}
	h.UpdatedBy = by.Username
	h.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, h)
	if err != nil {
		return nil, err
	}
	metrics.MutationsTotal.WithLabelValues("hosting", "update").Inc()
	return updated, nil
}

func (s *HostingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.MutationsTotal.WithLabelValues("hosting", "delete").Inc()
	return nil
}

func validateHosting(h *domain.HostingService) error {
	h.Name = strings.TrimSpace(h.Name)
	switch {
	case h.Name == "":
		return domain.Validation("name is required")
	case h.EndDate.IsZero():
		return domain.Validation("endDate is required")
	case !h.StartDate.IsZero() && h.EndDate.Before(h.StartDate):
		return domain.Validation("endDate must not be before startDate")
	case h.Price < 0:
		return domain.Validation("price must not be negative")
	}
	return nil
}
