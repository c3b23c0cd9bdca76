package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
	"github.com/taskdesk/taskdesk-api/internal/pkg/metrics"
)

type GroupService struct {
	repo ports.GroupRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewGroupService(repo ports.GroupRepository, log zerolog.Logger) *GroupService {
	return &GroupService{repo: repo, log: log, now: time.Now}
}

func (s *GroupService) List(ctx context.Context) ([]*domain.Group, error) {
	return s.repo.List(ctx)
}

// Create adds a group unless one with the same name, ignoring case, exists.
// The lookup gives a clean error in the common case; the unique index on the
// folded name catches concurrent creates.
func (s *GroupService) Create(ctx context.Context, name string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("name is required")
	}

	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrGroupExists
	case err != nil && !errors.Is(err, domain.ErrGroupNotFound):
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Group{Name: name, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, err
	}

	metrics.MutationsTotal.WithLabelValues("group", "create").Inc()
	s.log.Info().Str("group_id", created.ID).Str("name", created.Name).Msg("group created")
	return created, nil
}

func (s *GroupService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.MutationsTotal.WithLabelValues("group", "delete").Inc()
	return nil
}
