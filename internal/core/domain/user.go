package domain

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User models an account in the credential store.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email,omitempty"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	Permissions  Permissions `json:"permissions"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Identity returns the authenticated view of u.
func (u *User) Identity() Identity {
	return Identity{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: u.Permissions,
	}
}

// Identity is the caller a verified session token resolves to.
type Identity struct {
	UserID      string      `json:"userId"`
	Username    string      `json:"username"`
	Email       string      `json:"email,omitempty"`
	Role        Role        `json:"role"`
	Permissions Permissions `json:"permissions"`
}

// Can reports whether the identity holds capability c.
func (i Identity) Can(c Capability) bool {
	return i.Permissions.Has(c)
}
