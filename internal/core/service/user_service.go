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

type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// Create stores a new account with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		return nil, domain.Validation("username is required")
	case len(in.Password) < minPasswordLength:
		return nil, domain.Validation("password must be at least 8 characters")
	}

	role := in.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return nil, domain.Validation("role must be one of: admin, member")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         role,
		Permissions:  in.Permissions,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	metrics.MutationsTotal.WithLabelValues("user", "create").Inc()
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return created, nil
}

// UpdateAccess replaces a user's role and permissions. Sessions already
// issued keep their old claims until they expire.
func (s *UserService) UpdateAccess(ctx context.Context, id string, role domain.Role, perms domain.Permissions) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.Validation("role must be one of: admin, member")
	}

	updated, err := s.repo.UpdateAccess(ctx, id, role, perms, s.now().UTC())
	if err != nil {
		return nil, err
	}

	metrics.MutationsTotal.WithLabelValues("user", "update").Inc()
	s.log.Info().
		Str("user_id", id).
		Str("role", string(role)).
		Interface("permissions", perms.Granted()).
		Msg("user access updated")
	return updated, nil
}
