package authz

import (
	"fmt"

	"github.com/google/uuid"

	membershipdomain "paladin-core/internal/membership/domain"
	"paladin-core/internal/security"
)

// Request carries the arguments for a named predicate evaluation. Fields a
// predicate does not use are ignored.
type Request struct {
	OrgID   uuid.UUID
	Role    membershipdomain.Role
	NewRole membershipdomain.Role
	Target  *membershipdomain.Membership
}

// Predicate names accepted by Evaluate.
const (
	PredicateHasOrg             = "has_org"
	PredicateHasOrgRole         = "has_org_role"
	PredicateHasOrgRoleOrHigher = "has_org_role_or_higher"
	PredicateHasHigherOrgRole   = "has_higher_org_role"
	PredicateCanMutateMember    = "can_mutate_member"
	PredicateIsSelf             = "is_self"
	PredicateCanRemoveMember    = "can_remove_member"
	PredicateCanAssignRole      = "can_assign_role"
	PredicateCanInvite          = "can_invite"
)

// Evaluate dispatches a predicate by name against the caller's identity.
// Synchronous and I/O-free. The only error case is an unknown predicate name;
// a predicate that does not hold returns (false, nil).
func Evaluate(name string, id *security.Identity, req Request) (bool, error) {
	switch name {
	case PredicateHasOrg:
		return HasOrg(id, req.OrgID), nil
	case PredicateHasOrgRole:
		return HasOrgRole(id, req.OrgID, req.Role), nil
	case PredicateHasOrgRoleOrHigher:
		return HasOrgRoleOrHigher(id, req.OrgID, req.Role), nil
	case PredicateHasHigherOrgRole:
		return HasHigherOrgRole(id, req.OrgID, req.Role), nil
	case PredicateCanMutateMember:
		return CanMutateMember(id, req.OrgID, req.Target), nil
	case PredicateIsSelf:
		return IsSelf(id, req.Target), nil
	case PredicateCanRemoveMember:
		return CanRemoveMember(id, req.OrgID, req.Target), nil
	case PredicateCanAssignRole:
		return CanAssignRole(id, req.OrgID, req.Target, req.NewRole), nil
	case PredicateCanInvite:
		return CanInvite(id, req.OrgID, req.Role), nil
	default:
		return false, fmt.Errorf("unknown predicate %q", name)
	}
}
