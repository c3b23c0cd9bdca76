package ports

import (
	"context"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateAccess(ctx context.Context, id string, role domain.Role, perms domain.Permissions, at time.Time) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
}

// ClientRepository persists clients together with their notes.
// Note operations are single-document updates; concurrent edits are last-write-wins.
type ClientRepository interface {
	List(ctx context.Context, sort domain.ClientSort) ([]*domain.Client, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByName(ctx context.Context, name string) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
	AddNote(ctx context.Context, clientID string, note domain.Note) (*domain.Client, error)
	UpdateNote(ctx context.Context, clientID string, note domain.Note) (*domain.Client, error)
	DeleteNote(ctx context.Context, clientID, noteID string, at time.Time) (*domain.Client, error)
}

// GroupRepository persists groups. FindByName matches case-insensitively.
type GroupRepository interface {
	List(ctx context.Context) ([]*domain.Group, error)
	FindByName(ctx context.Context, name string) (*domain.Group, error)
	Create(ctx context.Context, g *domain.Group) (*domain.Group, error)
	Delete(ctx context.Context, id string) error
}

type TaskRepository interface {
	List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type HostingRepository interface {
	List(ctx context.Context) ([]*domain.HostingService, error)
	// ListEndingBefore returns services whose endDate is at or before t, soonest first.
	ListEndingBefore(ctx context.Context, t time.Time) ([]*domain.HostingService, error)
	FindByID(ctx context.Context, id string) (*domain.HostingService, error)
	Create(ctx context.Context, h *domain.HostingService) (*domain.HostingService, error)
	Update(ctx context.Context, h *domain.HostingService) (*domain.HostingService, error)
	Delete(ctx context.Context, id string) error
}
