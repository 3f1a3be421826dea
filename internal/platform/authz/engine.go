// Package authz answers organisation-scoped authorization questions from the
// caller's verified identity claims. Every predicate is a pure function: it
// takes the identity explicitly, performs no I/O, and never returns an error.
// Absence of membership uniformly yields false, so callers cannot distinguish
// "no access" from "organisation does not exist" through these predicates.
package authz

import (
	"github.com/google/uuid"

	membershipdomain "paladin-core/internal/membership/domain"
	"paladin-core/internal/security"
)

// HasOrg reports whether the caller holds any role in orgID.
func HasOrg(id *security.Identity, orgID uuid.UUID) bool {
	_, ok := id.RoleIn(orgID)
	return ok
}

// HasOrgRole reports whether the caller's role in orgID equals role exactly.
func HasOrgRole(id *security.Identity, orgID uuid.UUID, role membershipdomain.Role) bool {
	r, ok := id.RoleIn(orgID)
	return ok && r == role
}

// HasOrgRoleOrHigher reports whether the caller's role in orgID has authority
// greater than or equal to role's. False when the caller has no role in orgID.
func HasOrgRoleOrHigher(id *security.Identity, orgID uuid.UUID, role membershipdomain.Role) bool {
	r, ok := id.RoleIn(orgID)
	return ok && r.AtLeast(role)
}

// HasHigherOrgRole reports whether the caller's role in orgID has authority
// strictly greater than role's. False when the caller has no role in orgID.
func HasHigherOrgRole(id *security.Identity, orgID uuid.UUID, role membershipdomain.Role) bool {
	r, ok := id.RoleIn(orgID)
	return ok && r.StrictlyAbove(role)
}
