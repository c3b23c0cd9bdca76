package domain

import "fmt"

// Capability names a single permission flag.
type Capability string

const (
	CapEditClients Capability = "canEditClients"
	CapEditTasks   Capability = "canEditTasks"
	CapManageUsers Capability = "canManageUsers"
)

// Capabilities lists every known capability.
var Capabilities = []Capability{CapEditClients, CapEditTasks, CapManageUsers}

// ParseCapability maps a flag name to its Capability.
func ParseCapability(s string) (Capability, error) {
	for _, c := range Capabilities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", Validation(fmt.Sprintf("unknown permission %q", s))
}

// Permissions is the fixed capability set carried by users and tokens.
// Access checks look only at these flags; the role grants nothing on its own.
type Permissions struct {
	CanEditClients bool `json:"canEditClients" bson:"canEditClients"`
	CanEditTasks   bool `json:"canEditTasks"   bson:"canEditTasks"`
	CanManageUsers bool `json:"canManageUsers" bson:"canManageUsers"`
}

// AllPermissions grants every capability.
func AllPermissions() Permissions {
	return Permissions{CanEditClients: true, CanEditTasks: true, CanManageUsers: true}
}

// Has reports whether capability c is granted. Unknown capabilities are denied.
func (p Permissions) Has(c Capability) bool {
	switch c {
	case CapEditClients:
		return p.CanEditClients
	case CapEditTasks:
		return p.CanEditTasks
	case CapManageUsers:
		return p.CanManageUsers
	default:
		return false
	}
}

// Granted lists the capabilities set in p, in declaration order.
func (p Permissions) Granted() []Capability {
	out := make([]Capability, 0, len(Capabilities))
	for _, c := range Capabilities {
		if p.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
