package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"paladin-core/internal/apperr"
	membershipdomain "paladin-core/internal/membership/domain"
	"paladin-core/internal/organisation/domain"
	"paladin-core/internal/security"
)

type memberKey struct {
	org  uuid.UUID
	user uuid.UUID
}

type fakeOrgRepo struct {
	orgs map[uuid.UUID]*domain.Organisation
	// owner memberships created by CreateOrganisationWithOwner land here so
	// the test can assert on the compound write.
	members *fakeMemberRepo
}

func newFakeOrgRepo(members *fakeMemberRepo) *fakeOrgRepo {
	return &fakeOrgRepo{orgs: map[uuid.UUID]*domain.Organisation{}, members: members}
}

func (r *fakeOrgRepo) GetOrganisation(_ context.Context, id uuid.UUID) (*domain.Organisation, error) {
	o, ok := r.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrgRepo) GetOrganisationByName(_ context.Context, name string) (*domain.Organisation, error) {
	for _, o := range r.orgs {
		if o.Name == name {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOrgRepo) CreateOrganisationWithOwner(_ context.Context, o *domain.Organisation, owner *membershipdomain.Membership) error {
	r.orgs[o.ID] = o
	r.members.rows[memberKey{owner.OrgID, owner.UserID}] = owner
	return nil
}

func (r *fakeOrgRepo) UpdateOrganisation(_ context.Context, o *domain.Organisation) error {
	r.orgs[o.ID] = o
	return nil
}

func (r *fakeOrgRepo) DeleteOrganisationCascade(_ context.Context, id uuid.UUID) error {
	delete(r.orgs, id)
	for k := range r.members.rows {
		if k.org == id {
			delete(r.members.rows, k)
		}
	}
	return nil
}

type fakeMemberRepo struct {
	rows map[memberKey]*membershipdomain.Membership
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{rows: map[memberKey]*membershipdomain.Membership{}}
}

func (r *fakeMemberRepo) GetMembership(_ context.Context, orgID, userID uuid.UUID) (*membershipdomain.Membership, error) {
	m, ok := r.rows[memberKey{orgID, userID}]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMemberRepo) ListMembershipsByOrg(_ context.Context, orgID uuid.UUID) ([]*membershipdomain.Membership, error) {
	var out []*membershipdomain.Membership
	for k, m := range r.rows {
		if k.org == orgID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) ListMembershipsByUser(_ context.Context, userID uuid.UUID) ([]*membershipdomain.Membership, error) {
	var out []*membershipdomain.Membership
	for k, m := range r.rows {
		if k.user == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) UpdateRole(_ context.Context, orgID, userID uuid.UUID, role membershipdomain.Role) (*membershipdomain.Membership, error) {
	m, ok := r.rows[memberKey{orgID, userID}]
	if !ok {
		return nil, nil
	}
	m.Role = role
	cp := *m
	return &cp, nil
}

func (r *fakeMemberRepo) DeleteMembership(_ context.Context, orgID, userID uuid.UUID) error {
	delete(r.rows, memberKey{orgID, userID})
	return nil
}

func identity(userID uuid.UUID, orgID uuid.UUID, role membershipdomain.Role) *security.Identity {
	id := &security.Identity{
		UserID:   userID,
		Email:    "caller@example.com",
		OrgRoles: map[uuid.UUID]membershipdomain.Role{},
	}
	if role != "" {
		id.OrgRoles[orgID] = role
	}
	return id
}

func newTestService() (*Service, *fakeOrgRepo, *fakeMemberRepo) {
	members := newFakeMemberRepo()
	orgs := newFakeOrgRepo(members)
	return NewService(orgs, members, nil, nil), orgs, members
}

func seedMember(members *fakeMemberRepo, orgID, userID uuid.UUID, role membershipdomain.Role) {
	members.rows[memberKey{orgID, userID}] = &membershipdomain.Membership{
		OrgID:       orgID,
		UserID:      userID,
		Role:        role,
		MemberSince: time.Now().UTC(),
	}
}

func TestCreateOrganisation_BootstrapsOwner(t *testing.T) {
	svc, orgs, members := newTestService()
	callerID := uuid.New()

	org, err := svc.CreateOrganisation(context.Background(), identity(callerID, uuid.Nil, ""), "acme", domain.PlanFree)
	if err != nil {
		t.Fatalf("CreateOrganisation: %v", err)
	}
	if org.MemberCount != 1 || len(org.Members) != 1 {
		t.Fatalf("expected a single bootstrap member, got count=%d members=%d", org.MemberCount, len(org.Members))
	}
	if org.Members[0].Role != membershipdomain.RoleOwner || org.Members[0].UserID != callerID {
		t.Fatalf("bootstrap member is not the caller as OWNER: %+v", org.Members[0])
	}
	if _, ok := orgs.orgs[org.ID]; !ok {
		t.Fatal("organisation was not persisted")
	}
	if _, ok := members.rows[memberKey{org.ID, callerID}]; !ok {
		t.Fatal("owner membership was not persisted")
	}
}

func TestCreateOrganisation_EnterpriseRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateOrganisation(context.Background(), identity(uuid.New(), uuid.Nil, ""), "bigcorp", domain.PlanEnterprise)
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestCreateOrganisation_DuplicateName(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateOrganisation(ctx, identity(uuid.New(), uuid.Nil, ""), "acme", domain.PlanFree); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateOrganisation(ctx, identity(uuid.New(), uuid.Nil, ""), "acme", domain.PlanPro)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestGetOrganisation_NonMemberDenied(t *testing.T) {
	svc, orgs, _ := newTestService()
	orgID := uuid.New()
	orgs.orgs[orgID] = &domain.Organisation{ID: orgID, Name: "acme", Plan: domain.PlanFree}

	// An outsider is denied the same way for an org that exists and one
	// that does not, so org ids cannot be probed.
	outsider := identity(uuid.New(), uuid.Nil, "")
	_, err := svc.GetOrganisation(context.Background(), outsider, orgID, false)
	if !apperr.IsKind(err, apperr.KindAccessDenied) {
		t.Fatalf("existing org: expected AccessDenied, got %v", err)
	}
	_, err = svc.GetOrganisation(context.Background(), outsider, uuid.New(), false)
	if !apperr.IsKind(err, apperr.KindAccessDenied) {
		t.Fatalf("unknown org: expected AccessDenied, got %v", err)
	}
}

func TestGetOrganisation_MemberSeesMembers(t *testing.T) {
	svc, orgs, members := newTestService()
	orgID := uuid.New()
	userID := uuid.New()
	orgs.orgs[orgID] = &domain.Organisation{ID: orgID, Name: "acme", Plan: domain.PlanFree}
	seedMember(members, orgID, userID, membershipdomain.RoleReadonly)

	org, err := svc.GetOrganisation(context.Background(), identity(userID, orgID, membershipdomain.RoleReadonly), orgID, true)
	if err != nil {
		t.Fatalf("GetOrganisation: %v", err)
	}
	if len(org.Members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(org.Members))
	}
}

func TestListUserOrganisations(t *testing.T) {
	svc, orgs, members := newTestService()
	userID := uuid.New()
	orgA := uuid.New()
	orgB := uuid.New()
	orgs.orgs[orgA] = &domain.Organisation{ID: orgA, Name: "acme", Plan: domain.PlanFree}
	orgs.orgs[orgB] = &domain.Organisation{ID: orgB, Name: "umbrella", Plan: domain.PlanPro}
	seedMember(members, orgA, userID, membershipdomain.RoleOwner)
	seedMember(members, orgB, userID, membershipdomain.RoleReadonly)
	seedMember(members, orgB, uuid.New(), membershipdomain.RoleOwner)

	got, err := svc.ListUserOrganisations(context.Background(), identity(userID, uuid.Nil, ""))
	if err != nil {
		t.Fatalf("ListUserOrganisations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 organisations, got %d", len(got))
	}
}

func TestUpdateOrganisation_RequiresAdmin(t *testing.T) {
	svc, orgs, _ := newTestService()
	orgID := uuid.New()
	orgs.orgs[orgID] = &domain.Organisation{ID: orgID, Name: "acme", Plan: domain.PlanFree}

	_, err := svc.UpdateOrganisation(context.Background(), identity(uuid.New(), orgID, membershipdomain.RoleDeveloper), orgID, "renamed", domain.PlanPro)
	if !apperr.IsKind(err, apperr.KindAccessDenied) {
		t.Fatalf("expected AccessDenied for developer, got %v", err)
	}

	org, err := svc.UpdateOrganisation(context.Background(), identity(uuid.New(), orgID, membershipdomain.RoleAdmin), orgID, "renamed", domain.PlanPro)
	if err != nil {
		t.Fatalf("UpdateOrganisation as admin: %v", err)
	}
	if org.Name != "renamed" || org.Plan != domain.PlanPro {
		t.Fatalf("update not applied: %+v", org)
	}
}

func TestDeleteOrganisation_OwnerOnlyAndCascades(t *testing.T) {
	svc, orgs, members := newTestService()
	orgID := uuid.New()
	ownerID := uuid.New()
	orgs.orgs[orgID] = &domain.Organisation{ID: orgID, Name: "acme", Plan: domain.PlanFree}
	seedMember(members, orgID, ownerID, membershipdomain.RoleOwner)
	seedMember(members, orgID, uuid.New(), membershipdomain.RoleDeveloper)

	err := svc.DeleteOrganisation(context.Background(), identity(uuid.New(), orgID, membershipdomain.RoleAdmin), orgID)
	if !apperr.IsKind(err, apperr.KindAccessDenied) {
		t.Fatalf("expected AccessDenied for admin, got %v", err)
	}

	if err := svc.DeleteOrganisation(context.Background(), identity(ownerID, orgID, membershipdomain.RoleOwner), orgID); err != nil {
		t.Fatalf("DeleteOrganisation as owner: %v", err)
	}
	if len(orgs.orgs) != 0 || len(members.rows) != 0 {
		t.Fatalf("expected cascade delete, got orgs=%d members=%d", len(orgs.orgs), len(members.rows))
	}
}

func TestRemoveMember_OwnerTargetAlwaysRejected(t *testing.T) {
	svc, _, members := newTestService()
	orgID := uuid.New()
	ownerID := uuid.New()
	seedMember(members, orgID, ownerID, membershipdomain.RoleOwner)

	callers := []*security.Identity{
		identity(uuid.New(), orgID, membershipdomain.RoleOwner),
		identity(uuid.New(), orgID, membershipdomain.RoleAdmin),
		identity(ownerID, orgID, membershipdomain.RoleOwner), // self-removal
	}
	for _, caller := range callers {
		err := svc.RemoveMember(context.Background(), caller, orgID, ownerID)
		if !apperr.IsKind(err, apperr.KindInvalidArgument) {
			t.Fatalf("caller %s: expected InvalidArgument for OWNER target, got %v", caller.UserID, err)
		}
	}
}

func TestRemoveMember_AuthorityMatrix(t *testing.T) {
	orgID := uuid.New()

	cases := []struct {
		name     string
		caller   membershipdomain.Role
		target   membershipdomain.Role
		wantKind apperr.Kind
	}{
		{"owner removes admin", membershipdomain.RoleOwner, membershipdomain.RoleAdmin, apperr.Kind(0)},
		{"admin removes developer", membershipdomain.RoleAdmin, membershipdomain.RoleDeveloper, apperr.Kind(0)},
		{"admin removes admin", membershipdomain.RoleAdmin, membershipdomain.RoleAdmin, apperr.KindAccessDenied},
		{"developer removes readonly", membershipdomain.RoleDeveloper, membershipdomain.RoleReadonly, apperr.KindAccessDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, members := newTestService()
			targetID := uuid.New()
			seedMember(members, orgID, targetID, tc.target)

			err := svc.RemoveMember(context.Background(), identity(uuid.New(), orgID, tc.caller), orgID, targetID)
			if tc.wantKind == apperr.Kind(0) {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				if _, ok := members.rows[memberKey{orgID, targetID}]; ok {
					t.Fatal("membership still present after removal")
				}
				return
			}
			if !apperr.IsKind(err, tc.wantKind) {
				t.Fatalf("expected %v, got %v", tc.wantKind, err)
			}
			if _, ok := members.rows[memberKey{orgID, targetID}]; !ok {
				t.Fatal("membership removed despite denial")
			}
		})
	}
}

func TestRemoveMember_SelfRemoval(t *testing.T) {
	svc, _, members := newTestService()
	orgID := uuid.New()
	userID := uuid.New()
	seedMember(members, orgID, userID, membershipdomain.RoleReadonly)

	if err := svc.RemoveMember(context.Background(), identity(userID, orgID, membershipdomain.RoleReadonly), orgID, userID); err != nil {
		t.Fatalf("self-removal: %v", err)
	}
	if _, ok := members.rows[memberKey{orgID, userID}]; ok {
		t.Fatal("membership still present after self-removal")
	}
}

func TestRemoveMember_MissingTarget(t *testing.T) {
	svc, _, _ := newTestService()
	orgID := uuid.New()

	err := svc.RemoveMember(context.Background(), identity(uuid.New(), orgID, membershipdomain.RoleOwner), orgID, uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdateRole_AdminCannotAlterOwner(t *testing.T) {
	svc, _, members := newTestService()
	orgID := uuid.New()
	ownerID := uuid.New()
	seedMember(members, orgID, ownerID, membershipdomain.RoleOwner)

	admin := identity(uuid.New(), orgID, membershipdomain.RoleAdmin)
	_, err := svc.UpdateRole(context.Background(), admin, orgID, ownerID, membershipdomain.RoleDeveloper)
	if !apperr.IsKind(err, apperr.KindAccessDenied) {
		t.Fatalf("expected AccessDenied, got %v", err)
	}
	if members.rows[memberKey{orgID, ownerID}].Role != membershipdomain.RoleOwner {
		t.Fatal("owner role was altered")
	}
}

func TestUpdateRole_NoOwnershipPath(t *testing.T) {
	svc, _, members := newTestService()
	orgID := uuid.New()
	devID := uuid.New()
	ownerID := uuid.New()
	seedMember(members, orgID, devID, membershipdomain.RoleDeveloper)
	seedMember(members, orgID, ownerID, membershipdomain.RoleOwner)

	owner := identity(ownerID, orgID, membershipdomain.RoleOwner)

	// Granting OWNER is rejected for every caller, owner included.
	_, err := svc.UpdateRole(context.Background(), owner, orgID, devID, membershipdomain.RoleOwner)
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("grant OWNER: expected InvalidArgument, got %v", err)
	}
	// Demoting an OWNER is rejected even when the policy check passes.
	_, err = svc.UpdateRole(context.Background(), owner, orgID, ownerID, membershipdomain.RoleAdmin)
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("demote OWNER: expected InvalidArgument, got %v", err)
	}
}

func TestUpdateRole_OwnerPromotesDeveloper(t *testing.T) {
	svc, _, members := newTestService()
	orgID := uuid.New()
	devID := uuid.New()
	seedMember(members, orgID, devID, membershipdomain.RoleDeveloper)

	m, err := svc.UpdateRole(context.Background(), identity(uuid.New(), orgID, membershipdomain.RoleOwner), orgID, devID, membershipdomain.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if m.Role != membershipdomain.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", m.Role)
	}
	if members.rows[memberKey{orgID, devID}].Role != membershipdomain.RoleAdmin {
		t.Fatal("role change not persisted")
	}
}

func TestService_NilIdentity(t *testing.T) {
	svc, _, _ := newTestService()
	orgID := uuid.New()

	if _, err := svc.GetOrganisation(context.Background(), nil, orgID, false); !apperr.IsKind(err, apperr.KindMissingIdentity) {
		t.Fatalf("GetOrganisation: expected MissingIdentity, got %v", err)
	}
	if err := svc.RemoveMember(context.Background(), nil, orgID, uuid.New()); !apperr.IsKind(err, apperr.KindMissingIdentity) {
		t.Fatalf("RemoveMember: expected MissingIdentity, got %v", err)
	}
	if _, err := svc.CreateOrganisation(context.Background(), nil, "acme", domain.PlanFree); !apperr.IsKind(err, apperr.KindMissingIdentity) {
		t.Fatalf("CreateOrganisation: expected MissingIdentity, got %v", err)
	}
}
