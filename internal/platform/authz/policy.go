package authz

import (
	"github.com/google/uuid"

	membershipdomain "paladin-core/internal/membership/domain"
	"paladin-core/internal/security"
)

// CanMutateMember allows altering an existing membership (role change or
// removal) when:
//   - the caller is the organisation's OWNER, or
//   - the caller is ADMIN or higher and outranks the target strictly
//     (an ADMIN can alter DEVELOPER/READONLY members, never OWNER or ADMIN).
func CanMutateMember(id *security.Identity, orgID uuid.UUID, target *membershipdomain.Membership) bool {
	if target == nil {
		return false
	}
	return HasOrgRole(id, orgID, membershipdomain.RoleOwner) ||
		(HasOrgRoleOrHigher(id, orgID, membershipdomain.RoleAdmin) &&
			HasHigherOrgRole(id, orgID, target.Role))
}

// IsSelf reports whether target is the caller's own membership, compared
// against the verified identity, never against client-supplied data.
func IsSelf(id *security.Identity, target *membershipdomain.Membership) bool {
	if id == nil || target == nil {
		return false
	}
	return id.UserID == target.UserID
}

// CanRemoveMember allows removing target when the caller may mutate it or is
// removing themselves. An OWNER can never be removed through this path;
// ownership must be transferred first.
func CanRemoveMember(id *security.Identity, orgID uuid.UUID, target *membershipdomain.Membership) bool {
	if target == nil || target.Role == membershipdomain.RoleOwner {
		return false
	}
	return CanMutateMember(id, orgID, target) || IsSelf(id, target)
}

// CanAssignRole allows changing target's role to newRole. No path here grants
// or revokes ownership.
func CanAssignRole(id *security.Identity, orgID uuid.UUID, target *membershipdomain.Membership, newRole membershipdomain.Role) bool {
	if target == nil || newRole == membershipdomain.RoleOwner || target.Role == membershipdomain.RoleOwner {
		return false
	}
	return CanMutateMember(id, orgID, target)
}

// CanInvite allows creating an invitation with the given role. Requires ADMIN
// or higher in the organisation; OWNER invitations are never allowed.
func CanInvite(id *security.Identity, orgID uuid.UUID, role membershipdomain.Role) bool {
	return role != membershipdomain.RoleOwner && HasOrgRoleOrHigher(id, orgID, membershipdomain.RoleAdmin)
}
