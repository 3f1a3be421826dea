package security

import (
	"strings"

	"github.com/google/uuid"

	"paladin-core/internal/apperr"
	membershipdomain "paladin-core/internal/membership/domain"
)

// Claim keys set by the external identity provider.
const (
	claimSubject = "sub"
	claimEmail   = "email"
	claimRoles   = "roles"

	roleClaimOrgID = "organisation_id"
	roleClaimRole  = "role"
)

// Identity is the caller's verified identity for the lifetime of one request.
// Built once from the verified claim bag and passed explicitly to every
// predicate and operation; it is never read from a global.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	OrgRoles map[uuid.UUID]membershipdomain.Role
}

// RoleIn returns the caller's role in orgID and whether one exists.
func (id *Identity) RoleIn(orgID uuid.UUID) (membershipdomain.Role, bool) {
	if id == nil {
		return "", false
	}
	r, ok := id.OrgRoles[orgID]
	return r, ok
}

// ExtractIdentity builds an Identity from a verified claim bag.
//
// The subject claim must hold a UUID user id; if it is absent or unparsable
// the extraction fails with a MissingIdentity error. The roles claim is
// expected to be a list of objects carrying an organisation id and a role
// name. Individual malformed entries are skipped rather than failing the
// whole extraction, so one corrupt entry does not cost the caller all access.
// A missing or non-list roles claim yields an empty role map. When the same
// organisation appears twice, the first entry wins and later duplicates are
// ignored.
func ExtractIdentity(claims map[string]any) (*Identity, error) {
	sub, _ := claims[claimSubject].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperr.MissingIdentity("subject claim missing or not a user id")
	}

	email, _ := claims[claimEmail].(string)
	email = strings.ToLower(strings.TrimSpace(email))

	identity := &Identity{
		UserID:   userID,
		Email:    email,
		OrgRoles: map[uuid.UUID]membershipdomain.Role{},
	}

	entries, ok := claims[claimRoles].([]any)
	if !ok {
		return identity, nil
	}
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		orgRaw, _ := obj[roleClaimOrgID].(string)
		roleRaw, _ := obj[roleClaimRole].(string)
		orgID, err := uuid.Parse(orgRaw)
		if err != nil {
			continue
		}
		role, err := membershipdomain.ParseRole(roleRaw)
		if err != nil {
			continue
		}
		if _, exists := identity.OrgRoles[orgID]; exists {
			continue
		}
		identity.OrgRoles[orgID] = role
	}
	return identity, nil
}
