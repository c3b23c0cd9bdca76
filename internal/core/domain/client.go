package domain

import "time"

// Note is a free-form entry attached to a client.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginDetail records access credentials the team keeps for a client's site.
type LoginDetail struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Client is a customer account. Names are unique.
type Client struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Website      string        `json:"website,omitempty"`
	Group        string        `json:"group,omitempty"`
	Notes        []Note        `json:"notes"`
	LoginDetails []LoginDetail `json:"loginDetails"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ClientSort selects the ordering for client listings.
type ClientSort string

const (
	SortClientsByName          ClientSort = "name"
	SortClientsByNameDesc      ClientSort = "-name"
	SortClientsByCreatedAt     ClientSort = "createdAt"
	SortClientsByCreatedAtDesc ClientSort = "-createdAt"
)

// ParseClientSort validates a sort query value. Empty means by name.
func ParseClientSort(s string) (ClientSort, error) {
	switch ClientSort(s) {
	case "":
		return SortClientsByName, nil
	case SortClientsByName, SortClientsByNameDesc, SortClientsByCreatedAt, SortClientsByCreatedAtDesc:
		return ClientSort(s), nil
	}
	return "", Validation("sort must be one of: name, -name, createdAt, -createdAt")
}
