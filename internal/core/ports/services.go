package ports

import (
	"context"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// CreateUserInput carries the fields for a new account.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	Role        domain.Role
	Permissions domain.Permissions
}

type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	UpdateAccess(ctx context.Context, id string, role domain.Role, perms domain.Permissions) (*domain.User, error)
}

// NoteInput carries a note's editable fields.
type NoteInput struct {
	Title   string
	Content string
}

type ClientService interface {
	List(ctx context.Context, sort domain.ClientSort) ([]*domain.Client, error)
	Get(ctx context.Context, id string) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
	AddNote(ctx context.Context, clientID string, in NoteInput) (*domain.Client, error)
	UpdateNote(ctx context.Context, clientID, noteID string, in NoteInput) (*domain.Client, error)
	DeleteNote(ctx context.Context, clientID, noteID string) (*domain.Client, error)
}

type GroupService interface {
	List(ctx context.Context) ([]*domain.Group, error)
	Create(ctx context.Context, name string) (*domain.Group, error)
	Delete(ctx context.Context, id string) error
}

type TaskService interface {
	List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, by domain.Identity, t *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type HostingService interface {
	List(ctx context.Context) ([]*domain.HostingService, error)
	ListExpiring(ctx context.Context, within time.Duration) ([]*domain.HostingService, error)
	Create(ctx context.Context, by domain.Identity, h *domain.HostingService) (*domain.HostingService, error)
	Update(ctx context.Context, by domain.Identity, h *domain.HostingService) (*domain.HostingService, error)
	Delete(ctx context.Context, id string) error
}
