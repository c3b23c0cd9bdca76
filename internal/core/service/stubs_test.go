package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) UpdateAccess(_ context.Context, id string, role domain.Role, perms domain.Permissions, at time.Time) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role, u.Permissions, u.UpdatedAt = role, perms, at
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id, hash string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash, u.UpdatedAt = hash, at
	return nil
}

type stubTokens struct {
	issued []domain.Identity
	err    error
}

func (s *stubTokens) Issue(id domain.Identity) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	s.issued = append(s.issued, id)
	return "token-" + id.Username, time.Now().Add(time.Hour), nil
}

type stubLimiter struct {
	failures map[string]int
	max      int
	err      error
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), max: max}
}

func (l *stubLimiter) Allow(_ context.Context, username string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.failures[username] < l.max, nil
}

func (l *stubLimiter) Failure(_ context.Context, username string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.failures[username]++
	return l.failures[username] >= l.max, nil
}

func (l *stubLimiter) Reset(_ context.Context, username string) error {
	delete(l.failures, username)
	return l.err
}

type stubGroupRepo struct {
	groups []*domain.Group
	// uniqueOnly skips FindByName hits so Create alone enforces uniqueness,
	// as the index does when two creates race.
	uniqueOnly bool
}

func (r *stubGroupRepo) List(context.Context) ([]*domain.Group, error) {
	out := append([]*domain.Group(nil), r.groups...)
	sort.Slice(out, func(i, j int) bool { return domain.GroupKey(out[i].Name) < domain.GroupKey(out[j].Name) })
	return out, nil
}

func (r *stubGroupRepo) FindByName(_ context.Context, name string) (*domain.Group, error) {
	if !r.uniqueOnly {
		for _, g := range r.groups {
			if domain.GroupKey(g.Name) == domain.GroupKey(name) {
				return g, nil
			}
		}
	}
	return nil, domain.ErrGroupNotFound
}

func (r *stubGroupRepo) Create(_ context.Context, g *domain.Group) (*domain.Group, error) {
	for _, existing := range r.groups {
		if domain.GroupKey(existing.Name) == domain.GroupKey(g.Name) {
			return nil, domain.ErrGroupExists
		}
	}
	copy := *g
	copy.ID = fmt.Sprintf("group-%d", len(r.groups)+1)
	r.groups = append(r.groups, &copy)
	return &copy, nil
}

func (r *stubGroupRepo) Delete(_ context.Context, id string) error {
	for i, g := range r.groups {
		if g.ID == id {
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
			return nil
		}
	}
	return domain.ErrGroupNotFound
}

type stubClientRepo struct {
	clients map[string]*domain.Client
	seq     int
	// noIndex stops Create and Update from rejecting duplicate names, as on a
	// database whose unique index has not been built.
	noIndex bool
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[string]*domain.Client)}
}

func (r *stubClientRepo) List(context.Context, domain.ClientSort) ([]*domain.Client, error) {
	out := make([]*domain.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return c, nil
}

func (r *stubClientRepo) FindByName(_ context.Context, name string) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	for _, existing := range r.clients {
		if existing.Name == c.Name && !r.noIndex {
			return nil, domain.ErrClientExists
		}
	}
	r.seq++
	c.ID = fmt.Sprintf("client-%d", r.seq)
	for i := range c.Notes {
		c.Notes[i].ID = fmt.Sprintf("%s-note-%d", c.ID, i+1)
	}
	r.clients[c.ID] = c
	return c, nil
}

func (r *stubClientRepo) Update(_ context.Context, c *domain.Client) (*domain.Client, error) {
	existing, ok := r.clients[c.ID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	c.Notes = existing.Notes
	c.CreatedAt = existing.CreatedAt
	r.clients[c.ID] = c
	return c, nil
}

func (r *stubClientRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.clients[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) AddNote(_ context.Context, clientID string, note domain.Note) (*domain.Client, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	note.ID = fmt.Sprintf("%s-note-%d", clientID, len(c.Notes)+1)
	c.Notes = append(c.Notes, note)
	return c, nil
}

func (r *stubClientRepo) UpdateNote(_ context.Context, clientID string, note domain.Note) (*domain.Client, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	for i := range c.Notes {
		if c.Notes[i].ID == note.ID {
			note.CreatedAt = c.Notes[i].CreatedAt
			c.Notes[i] = note
			return c, nil
		}
	}
	return nil, domain.ErrNoteNotFound
}

func (r *stubClientRepo) DeleteNote(_ context.Context, clientID, noteID string, at time.Time) (*domain.Client, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	for i := range c.Notes {
		if c.Notes[i].ID == noteID {
			c.Notes = append(c.Notes[:i], c.Notes[i+1:]...)
			c.UpdatedAt = at
			return c, nil
		}
	}
	return nil, domain.ErrNoteNotFound
}

type stubTaskRepo struct {
	tasks map[string]*domain.Task
	seq   int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) List(_ context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range r.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.AssignedTo != "" && !strings.EqualFold(t.AssignedTo, f.AssignedTo) {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.seq++
	t.ID = fmt.Sprintf("task-%d", r.seq)
	r.tasks[t.ID] = t
	return t, nil
}

func (r *stubTaskRepo) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	existing, ok := r.tasks[t.ID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	t.CreatedBy, t.CreatedAt = existing.CreatedBy, existing.CreatedAt
	r.tasks[t.ID] = t
	return t, nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

type stubHostingRepo struct {
	services map[string]*domain.HostingService
	before   time.Time
}

func newStubHostingRepo() *stubHostingRepo {
	return &stubHostingRepo{services: make(map[string]*domain.HostingService)}
}

func (r *stubHostingRepo) List(context.Context) ([]*domain.HostingService, error) {
	out := make([]*domain.HostingService, 0, len(r.services))
	for _, h := range r.services {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (r *stubHostingRepo) ListEndingBefore(ctx context.Context, t time.Time) ([]*domain.HostingService, error) {
	r.before = t
	all, _ := r.List(ctx)
	var out []*domain.HostingService
	for _, h := range all {
		if !h.EndDate.After(t) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *stubHostingRepo) FindByID(_ context.Context, id string) (*domain.HostingService, error) {
	h, ok := r.services[id]
	if !ok {
		return nil, domain.ErrHostingNotFound
	}
	return h, nil
}

func (r *stubHostingRepo) Create(_ context.Context, h *domain.HostingService) (*domain.HostingService, error) {
	h.ID = fmt.Sprintf("hosting-%d", len(r.services)+1)
	r.services[h.ID] = h
	return h, nil
}

func (r *stubHostingRepo) Update(_ context.Context, h *domain.HostingService) (*domain.HostingService, error) {
	existing, ok := r.services[h.ID]
	if !ok {
		return nil, domain.ErrHostingNotFound
	}
	h.CreatedBy, h.CreatedAt = existing.CreatedBy, existing.CreatedAt
	r.services[h.ID] = h
	return h, nil
}

func (r *stubHostingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.services[id]; !ok {
		return domain.ErrHostingNotFound
	}
	delete(r.services, id)
	return nil
}
