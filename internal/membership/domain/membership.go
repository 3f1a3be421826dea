package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Membership binds one user to one organisation with exactly one role.
// The pair (OrgID, UserID) is the composite key. Memberships are created only
// by organisation bootstrap (first OWNER) or invitation acceptance.
type Membership struct {
	OrgID       uuid.UUID
	UserID      uuid.UUID
	Role        Role
	MemberSince time.Time
}

// Role is an organisation-scoped role. Roles form a strict hierarchy and are
// always compared by Authority, never by name or declaration order.
type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleAdmin     Role = "ADMIN"
	RoleDeveloper Role = "DEVELOPER"
	RoleReadonly  Role = "READONLY"
)

// roleAuthority maps each role to its integer rank. Exactly one authority
// value per role; ordering must be preserved if roles are ever added.
var roleAuthority = map[Role]int{
	RoleOwner:     4,
	RoleAdmin:     3,
	RoleDeveloper: 2,
	RoleReadonly:  1,
}

// Authority returns the role's integer rank (higher outranks lower).
// Unknown roles rank 0, below every valid role.
func (r Role) Authority() int { return roleAuthority[r] }

// Valid reports whether r is one of the defined organisation roles.
func (r Role) Valid() bool { return roleAuthority[r] != 0 }

// Compare returns -1, 0, or 1 as r's authority is below, equal to, or above other's.
func (r Role) Compare(other Role) int {
	a, b := r.Authority(), other.Authority()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r's authority is greater than or equal to other's.
func (r Role) AtLeast(other Role) bool { return r.Authority() >= other.Authority() }

// StrictlyAbove reports whether r's authority is strictly greater than other's.
func (r Role) StrictlyAbove(other Role) bool { return r.Authority() > other.Authority() }

// ParseRole parses a role name case-insensitively. Returns an error for
// unknown role names.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown organisation role %q", s)
	}
	return r, nil
}
