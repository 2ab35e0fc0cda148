package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of community roles, ordered MEMBER < MOD < ADMIN.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleMod    Role = "MOD"
	RoleAdmin  Role = "ADMIN"
)

// Roles lists every role in tier order.
var Roles = []Role{RoleMember, RoleMod, RoleAdmin}

// Tier returns the rank of the role, or 0 for an unknown role.
func (r Role) Tier() int {
	switch r {
	case RoleMember:
		return 1
	case RoleMod:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

// AtLeast reports whether r ranks at or above min. Unknown roles never do.
func (r Role) AtLeast(min Role) bool {
	return r.Tier() > 0 && r.Tier() >= min.Tier()
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if r.Tier() == 0 {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Account is a community profile linked to an identity provider subject.
type Account struct {
	ID          uuid.UUID `json:"id"`
	Subject     string    `json:"-"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsModerator returns true for MOD and ADMIN accounts.
func (a *Account) IsModerator() bool {
	return a != nil && a.Role.AtLeast(RoleMod)
}
