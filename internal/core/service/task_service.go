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

type TaskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log, now: time.Now}
}

func (s *TaskService) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validation("status must be one of: todo, in_progress, review, done")
	}
	return s.repo.List(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new task. CreatedBy defaults to the caller's username.
func (s *TaskService) Create(ctx context.Context, by domain.Identity, t *domain.Task) (*domain.Task, error) {
	if err := validateTask(t); err != nil {
		return nil, err
	}
	if t.CreatedBy == "" {
		t.CreatedBy = by.Username
	}
	now := s.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}

	metrics.MutationsTotal.WithLabelValues("task", "create").Inc()
	s.log.Info().
		Str("task_id", created.ID).
		Str("created_by", created.CreatedBy).
		Str("assigned_to", created.AssignedTo).
		Msg("task created")
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if err := validateTask(t); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, err
	}
	metrics.MutationsTotal.WithLabelValues("task", "update").Inc()
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.MutationsTotal.WithLabelValues("task", "delete").Inc()
	return nil
}

func validateTask(t *domain.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return domain.Validation("title is required")
	}
	// completed=false cannot be told apart from an omitted field, so only a
	// completed task with a non-done status is contradictory.
	if t.Completed && t.Status != "" && t.Status != domain.TaskDone {
		return domain.Validation("completed tasks must have status done")
	}
	t.Normalize()
	switch {
	case !t.Priority.Valid():
		return domain.Validation("priority must be one of: low, medium, high")
	case !t.Status.Valid():
		return domain.Validation("status must be one of: todo, in_progress, review, done")
	case !t.CMS.Valid():
		return domain.Validation("cms must be one of: none, wordpress, shopify, webflow, wix, custom")
	case t.Price < 0:
		return domain.Validation("price must not be negative")
	}
	return nil
}
