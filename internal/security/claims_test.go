package security

import (
	"testing"

	"github.com/google/uuid"

	"paladin-core/internal/apperr"
	membershipdomain "paladin-core/internal/membership/domain"
)

func TestExtractIdentity_Full(t *testing.T) {
	userID := uuid.New()
	orgA := uuid.New()
	orgB := uuid.New()
	claims := map[string]any{
		"sub":   userID.String(),
		"email": "Dev@Example.com",
		"roles": []any{
			map[string]any{"organisation_id": orgA.String(), "role": "OWNER"},
			map[string]any{"organisation_id": orgB.String(), "role": "developer"},
		},
	}

	id, err := ExtractIdentity(claims)
	if err != nil {
		t.Fatalf("ExtractIdentity: %v", err)
	}
	if id.UserID != userID {
		t.Errorf("UserID = %s, want %s", id.UserID, userID)
	}
	if id.Email != "dev@example.com" {
		t.Errorf("Email = %q, want normalized lower case", id.Email)
	}
	if id.OrgRoles[orgA] != membershipdomain.RoleOwner {
		t.Errorf("role in orgA = %s, want OWNER", id.OrgRoles[orgA])
	}
	if id.OrgRoles[orgB] != membershipdomain.RoleDeveloper {
		t.Errorf("role in orgB = %s, want DEVELOPER", id.OrgRoles[orgB])
	}
}

func TestExtractIdentity_MissingSubject(t *testing.T) {
	for _, claims := range []map[string]any{
		{},
		{"sub": ""},
		{"sub": "not-a-uuid"},
		{"sub": 42},
	} {
		_, err := ExtractIdentity(claims)
		if !apperr.IsKind(err, apperr.KindMissingIdentity) {
			t.Errorf("ExtractIdentity(%v) err = %v, want MissingIdentity", claims, err)
		}
	}
}

func TestExtractIdentity_SkipsMalformedEntries(t *testing.T) {
	userID := uuid.New()
	orgA := uuid.New()
	claims := map[string]any{
		"sub": userID.String(),
		"roles": []any{
			"not an object",
			map[string]any{"role": "ADMIN"},                                         // missing org id
			map[string]any{"organisation_id": "garbage", "role": "ADMIN"},           // bad org id
			map[string]any{"organisation_id": uuid.New().String(), "role": "tsar"},  // unknown role
			map[string]any{"organisation_id": uuid.New().String()},                  // missing role
			map[string]any{"organisation_id": orgA.String(), "role": "ADMIN"},       // valid
		},
	}

	id, err := ExtractIdentity(claims)
	if err != nil {
		t.Fatalf("ExtractIdentity: %v", err)
	}
	if len(id.OrgRoles) != 1 {
		t.Fatalf("OrgRoles size = %d, want only the valid entry", len(id.OrgRoles))
	}
	if id.OrgRoles[orgA] != membershipdomain.RoleAdmin {
		t.Errorf("role in orgA = %s, want ADMIN", id.OrgRoles[orgA])
	}
}

func TestExtractIdentity_RolesAbsentOrNotAList(t *testing.T) {
	userID := uuid.New()
	for _, claims := range []map[string]any{
		{"sub": userID.String()},
		{"sub": userID.String(), "roles": "OWNER"},
		{"sub": userID.String(), "roles": map[string]any{"role": "OWNER"}},
	} {
		id, err := ExtractIdentity(claims)
		if err != nil {
			t.Fatalf("ExtractIdentity(%v): %v", claims, err)
		}
		if len(id.OrgRoles) != 0 {
			t.Errorf("OrgRoles = %v, want empty", id.OrgRoles)
		}
	}
}

func TestExtractIdentity_DuplicateOrgKeepsFirst(t *testing.T) {
	userID := uuid.New()
	org := uuid.New()
	claims := map[string]any{
		"sub": userID.String(),
		"roles": []any{
			map[string]any{"organisation_id": org.String(), "role": "READONLY"},
			map[string]any{"organisation_id": org.String(), "role": "OWNER"},
		},
	}

	id, err := ExtractIdentity(claims)
	if err != nil {
		t.Fatalf("ExtractIdentity: %v", err)
	}
	if id.OrgRoles[org] != membershipdomain.RoleReadonly {
		t.Errorf("duplicate org role = %s, want first entry (READONLY) to win", id.OrgRoles[org])
	}
}

func TestIdentity_RoleIn(t *testing.T) {
	org := uuid.New()
	id := &Identity{UserID: uuid.New(), OrgRoles: map[uuid.UUID]membershipdomain.Role{org: membershipdomain.RoleAdmin}}

	if r, ok := id.RoleIn(org); !ok || r != membershipdomain.RoleAdmin {
		t.Errorf("RoleIn(org) = %s, %v", r, ok)
	}
	if _, ok := id.RoleIn(uuid.New()); ok {
		t.Error("RoleIn(unknown org) should be false")
	}
	var nilID *Identity
	if _, ok := nilID.RoleIn(org); ok {
		t.Error("RoleIn on nil identity should be false")
	}
}
