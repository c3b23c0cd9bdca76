package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	// Bearer asks for the token in the body, for clients that send an
	// Authorization header instead of the cookie.
	Bearer bool `json:"bearer"`
}

type loginResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// --- Users ---

type createUserRequest struct {
	Username    string             `json:"username" validate:"required,min=3,max=64"`
	Email       string             `json:"email" validate:"omitempty,email"`
	Password    string             `json:"password" validate:"required,min=8,max=72"`
	Role        string             `json:"role" validate:"omitempty,oneof=admin member"`
	Permissions domain.Permissions `json:"permissions"`
}

type updateAccessRequest struct {
	Role        string             `json:"role" validate:"required,oneof=admin member"`
	Permissions domain.Permissions `json:"permissions"`
}

// --- Clients ---

type noteRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content"`
}

type loginDetailRequest struct {
	ID       string `json:"id"`
	Label    string `json:"label" validate:"required"`
	URL      string `json:"url" validate:"omitempty,url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type clientRequest struct {
	Name         string               `json:"name" validate:"required,max=200"`
	Email        string               `json:"email" validate:"omitempty,email"`
	Phone        string               `json:"phone"`
	Website      string               `json:"website" validate:"omitempty,url"`
	Group        string               `json:"group"`
	Notes        []noteRequest        `json:"notes" validate:"dive"`
	LoginDetails []loginDetailRequest `json:"loginDetails" validate:"dive"`
}

func (r clientRequest) toDomain() *domain.Client {
	c := &domain.Client{
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Website:      r.Website,
		Group:        r.Group,
		Notes:        make([]domain.Note, 0, len(r.Notes)),
		LoginDetails: make([]domain.LoginDetail, 0, len(r.LoginDetails)),
	}
	for _, n := range r.Notes {
		c.Notes = append(c.Notes, domain.Note{Title: n.Title, Content: n.Content})
	}
	for _, l := range r.LoginDetails {
		c.LoginDetails = append(c.LoginDetails, domain.LoginDetail{
			ID:       l.ID,
			Label:    l.Label,
			URL:      l.URL,
			Username: l.Username,
			Password: l.Password,
		})
	}
	return c
}

// --- Groups ---

type groupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// --- Tasks ---

type taskRequest struct {
	Title       string  `json:"title" validate:"required,max=300"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress review done"`
	DueDate     string  `json:"dueDate"`
	CMS         string  `json:"cms" validate:"omitempty,oneof=none wordpress shopify webflow wix custom"`
	WebsiteURL  string  `json:"websiteUrl" validate:"omitempty,url"`
	StagingURL  string  `json:"stagingUrl" validate:"omitempty,url"`
	Price       float64 `json:"price" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
	IsPaid      bool    `json:"isPaid"`
	ClientID    string  `json:"clientId"`
	Group       string  `json:"group"`
	AssignedTo  string  `json:"assignedTo"`
	CreatedBy   string  `json:"createdBy"`
}

func (r taskRequest) toDomain() (*domain.Task, error) {
	t := &domain.Task{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    domain.Priority(r.Priority),
		Status:      domain.TaskStatus(r.Status),
		CMS:         domain.CMS(r.CMS),
		WebsiteURL:  r.WebsiteURL,
		StagingURL:  r.StagingURL,
		Price:       r.Price,
		Currency:    strings.ToUpper(r.Currency),
		IsPaid:      r.IsPaid,
		ClientID:    r.ClientID,
		Group:       r.Group,
		AssignedTo:  r.AssignedTo,
		CreatedBy:   r.CreatedBy,
	}
	if r.DueDate != "" {
		due, err := parseDate("dueDate", r.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &due
	}
	return t, nil
}

// --- Hosting ---

type hostingRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Domain    string  `json:"domain"`
	Provider  string  `json:"provider"`
	ClientID  string  `json:"clientId"`
	Price     float64 `json:"price" validate:"gte=0"`
	Currency  string  `json:"currency" validate:"omitempty,len=3"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate" validate:"required"`
	Notes     string  `json:"notes"`
}

func (r hostingRequest) toDomain() (*domain.HostingService, error) {
	h := &domain.HostingService{
		Name:     r.Name,
		Domain:   r.Domain,
		Provider: r.Provider,
		ClientID: r.ClientID,
		Price:    r.Price,
		Currency: strings.ToUpper(r.Currency),
		Notes:    r.Notes,
	}
	end, err := parseDate("endDate", r.EndDate)
	if err != nil {
		return nil, err
	}
	h.EndDate = end
	if r.StartDate != "" {
		start, err := parseDate("startDate", r.StartDate)
		if err != nil {
			return nil, err
		}
		h.StartDate = start
	}
	return h, nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func parseDate(field, s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, domain.Validation(fmt.Sprintf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", field))
}
