package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
	"github.com/taskdesk/taskdesk-api/internal/pkg/metrics"
)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and rejects longer input.
	maxPasswordBytes = 72
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(id domain.Identity) (string, time.Time, error)
}

// LoginLimiter throttles repeated failed logins (Redis).
type LoginLimiter interface {
	Allow(ctx context.Context, username string) (bool, error)
	Failure(ctx context.Context, username string) (locked bool, err error)
	Reset(ctx context.Context, username string) error
}

// NoopLimiter never throttles. Used when Redis is not configured.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (bool, error)   { return true, nil }
func (NoopLimiter) Failure(context.Context, string) (bool, error) { return false, nil }
func (NoopLimiter) Reset(context.Context, string) error           { return nil }

// AuthService implements login and password changes.
type AuthService struct {
	users   ports.UserRepository
	tokens  TokenIssuer
	limiter LoginLimiter
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(users ports.UserRepository, tokens TokenIssuer, limiter LoginLimiter, log zerolog.Logger) *AuthService {
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	return &AuthService{users: users, tokens: tokens, limiter: limiter, log: log, now: time.Now}
}

// Login checks the credentials and issues a session token.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.Validation("username and password are required")
	}

	allowed, err := s.limiter.Allow(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login limiter unavailable, allowing attempt")
	} else if !allowed {
		metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		return nil, domain.ErrLoginThrottled
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		locked, ferr := s.limiter.Failure(ctx, username)
		if ferr != nil {
			s.log.Warn().Err(ferr).Str("username", username).Msg("failed to record login failure")
		}
		if locked {
			s.log.Warn().Str("username", username).Msg("login locked after repeated failures")
		}
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login failures")
	}

	token, exp, err := s.tokens.Issue(user.Identity())
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user logged in")
	return &ports.Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// ChangePassword replaces the caller's password after re-checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return domain.Validation("currentPassword and newPassword are required")
	}
	if len(next) < minPasswordLength {
		return domain.Validation("newPassword must be at least 8 characters")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash, s.now().UTC()); err != nil {
		return err
	}

	metrics.MutationsTotal.WithLabelValues("user", "update").Inc()
	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", domain.Validation("password must be at most 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.Validation("password must be at most 72 bytes")
		}
		return "", err
	}
	return string(hash), nil
}
