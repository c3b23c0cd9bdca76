package domain

import (
	"strings"
	"time"
)

// Group is a label used to classify clients and tasks.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupKey is the case-insensitive uniqueness key for a group name.
func GroupKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
