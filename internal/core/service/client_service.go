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

type ClientService struct {
	repo ports.ClientRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewClientService(repo ports.ClientRepository, log zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, log: log, now: time.Now}
}

func (s *ClientService) List(ctx context.Context, sort domain.ClientSort) ([]*domain.Client, error) {
	return s.repo.List(ctx, sort)
}

func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new client. Duplicate names are rejected by the store.
func (s *ClientService) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if err := normalizeClient(c); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, c.Name, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	for i := range c.Notes {
		if c.Notes[i].Title == "" && c.Notes[i].Content == "" {
			return nil, domain.Validation("note title or content is required")
		}
		c.Notes[i].CreatedAt, c.Notes[i].UpdatedAt = now, now
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	metrics.MutationsTotal.WithLabelValues("client", "create").Inc()
	s.log.Info().Str("client_id", created.ID).Str("name", created.Name).Msg("client created")
	return created, nil
}

func (s *ClientService) Update(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if err := normalizeClient(c); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, c.Name, c.ID); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}

	metrics.MutationsTotal.WithLabelValues("client", "update").Inc()
	return updated, nil
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.MutationsTotal.WithLabelValues("client", "delete").Inc()
	s.log.Info().Str("client_id", id).Msg("client deleted")
	return nil
}

// AddNote appends a note to the end of the client's note list.
func (s *ClientService) AddNote(ctx context.Context, clientID string, in ports.NoteInput) (*domain.Client, error) {
	note, err := s.newNote(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.AddNote(ctx, clientID, note)
	if err != nil {
		return nil, err
	}
	metrics.MutationsTotal.WithLabelValues("note", "create").Inc()
	return updated, nil
}

func (s *ClientService) UpdateNote(ctx context.Context, clientID, noteID string, in ports.NoteInput) (*domain.Client, error) {
	note, err := s.newNote(in)
	if err != nil {
		return nil, err
	}
	note.ID = noteID

	updated, err := s.repo.UpdateNote(ctx, clientID, note)
	if err != nil {
		return nil, err
	}
	metrics.MutationsTotal.WithLabelValues("note", "update").Inc()
	return updated, nil
}

func (s *ClientService) DeleteNote(ctx context.Context, clientID, noteID string) (*domain.Client, error) {
	updated, err := s.repo.DeleteNote(ctx, clientID, noteID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	metrics.MutationsTotal.WithLabelValues("note", "delete").Inc()
	return updated, nil
}

// ensureNameFree rejects a name held by another client. The unique index on
// name still catches two writers racing past this check.
func (s *ClientService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return domain.ErrClientExists
	}
	return nil
}

func (s *ClientService) newNote(in ports.NoteInput) (domain.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" && strings.TrimSpace(in.Content) == "" {
		return domain.Note{}, domain.Validation("note title or content is required")
	}
	now := s.now().UTC()
	return domain.Note{Title: title, Content: in.Content, CreatedAt: now, UpdatedAt: now}, nil
}

func normalizeClient(c *domain.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.Validation("name is required")
	}
	c.Email = strings.TrimSpace(c.Email)
	c.Group = strings.TrimSpace(c.Group)
	if c.Notes == nil {
		c.Notes = []domain.Note{}
	}
	if c.LoginDetails == nil {
		c.LoginDetails = []domain.LoginDetail{}
	}
	for _, l := range c.LoginDetails {
		if strings.TrimSpace(l.Label) == "" {
			return domain.Validation("login detail label is required")
		}
	}
	return nil
}
