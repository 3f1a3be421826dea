// Package service orchestrates organisation lifecycle and membership
// mutations. Every operation takes the caller's verified identity explicitly
// and evaluates its policy predicate before any write; a false predicate
// surfaces as AccessDenied and leaves persistence untouched.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"paladin-core/internal/apperr"
	"paladin-core/internal/audit"
	auditdomain "paladin-core/internal/audit/domain"
	"paladin-core/internal/events"
	membershipdomain "paladin-core/internal/membership/domain"
	"paladin-core/internal/organisation/domain"
	"paladin-core/internal/platform/authz"
	"paladin-core/internal/security"
)

// OrganisationRepo is the minimal organisation repository needed by the service.
type OrganisationRepo interface {
	GetOrganisation(ctx context.Context, id uuid.UUID) (*domain.Organisation, error)
	GetOrganisationByName(ctx context.Context, name string) (*domain.Organisation, error)
	CreateOrganisationWithOwner(ctx context.Context, o *domain.Organisation, owner *membershipdomain.Membership) error
	UpdateOrganisation(ctx context.Context, o *domain.Organisation) error
	DeleteOrganisationCascade(ctx context.Context, id uuid.UUID) error
}

// MembershipRepo is the minimal membership repository needed by the service.
type MembershipRepo interface {
	GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*membershipdomain.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID uuid.UUID) ([]*membershipdomain.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]*membershipdomain.Membership, error)
	UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role membershipdomain.Role) (*membershipdomain.Membership, error)
	DeleteMembership(ctx context.Context, orgID, userID uuid.UUID) error
}

// Service implements organisation creation, update, deletion, and membership
// mutation. Memberships are never created here directly except for the
// bootstrap OWNER; all other memberships arrive through invitation acceptance.
type Service struct {
	orgs     OrganisationRepo
	members  MembershipRepo
	auditor  *audit.Logger
	producer events.Producer
}

// NewService returns a Service with the given dependencies. auditor and
// producer may be nil; auditing and event publishing are then disabled.
func NewService(orgs OrganisationRepo, members MembershipRepo, auditor *audit.Logger, producer events.Producer) *Service {
	return &Service{orgs: orgs, members: members, auditor: auditor, producer: producer}
}

// GetOrganisation returns the organisation the caller is a member of.
// Callers without a role in the organisation get AccessDenied whether or not
// the organisation exists.
func (s *Service) GetOrganisation(ctx context.Context, caller *security.Identity, orgID uuid.UUID, includeMembers bool) (*domain.Organisation, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	if !authz.HasOrg(caller, orgID) {
		return nil, apperr.AccessDenied("not a member of this organisation")
	}
	org, err := s.orgs.GetOrganisation(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.NotFound("organisation %s not found", orgID)
	}
	if includeMembers {
		members, err := s.members.ListMembershipsByOrg(ctx, orgID)
		if err != nil {
			return nil, err
		}
		org.Members = members
	}
	return org, nil
}

// ListMembers returns all memberships of the organisation. Requires any role
// in the organisation.
func (s *Service) ListMembers(ctx context.Context, caller *security.Identity, orgID uuid.UUID) ([]*membershipdomain.Membership, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	if !authz.HasOrg(caller, orgID) {
		return nil, apperr.AccessDenied("not a member of this organisation")
	}
	return s.members.ListMembershipsByOrg(ctx, orgID)
}

// ListUserOrganisations returns the organisations the caller is a member of,
// resolved from current membership rows rather than token claims so a freshly
// accepted invitation shows up before the token is reissued.
func (s *Service) ListUserOrganisations(ctx context.Context, caller *security.Identity) ([]*domain.Organisation, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	memberships, err := s.members.ListMembershipsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Organisation, 0, len(memberships))
	for _, m := range memberships {
		org, err := s.orgs.GetOrganisation(ctx, m.OrgID)
		if err != nil {
			return nil, err
		}
		if org != nil {
			out = append(out, org)
		}
	}
	return out, nil
}

// CreateOrganisation creates an organisation and its first OWNER membership
// for the caller, atomically. The ENTERPRISE plan cannot be self-served.
// Returns the organisation with its single member attached.
func (s *Service) CreateOrganisation(ctx context.Context, caller *security.Identity, name string, plan domain.Plan) (*domain.Organisation, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	if plan == domain.PlanEnterprise {
		return nil, apperr.InvalidArgument("enterprise plan is not available for self-service creation")
	}
	org := &domain.Organisation{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Plan:      plan,
		CreatedAt: time.Now().UTC(),
	}
	if err := org.Validate(); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}
	existing, err := s.orgs.GetOrganisationByName(ctx, org.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(fmt.Sprintf("organisation name %q is already taken", org.Name))
	}
	owner := &membershipdomain.Membership{
		OrgID:       org.ID,
		UserID:      caller.UserID,
		Role:        membershipdomain.RoleOwner,
		MemberSince: org.CreatedAt,
	}
	if err := s.orgs.CreateOrganisationWithOwner(ctx, org, owner); err != nil {
		return nil, err
	}
	org.Members = []*membershipdomain.Membership{owner}
	org.MemberCount = 1

	s.auditor.Record(ctx, org.ID, caller.UserID, auditdomain.ActionOrganisationCreate, "organisation/"+org.ID.String(), org.Name)
	events.EmitAsync(s.producer, events.New(events.TypeOrganisationCreated, org.ID, caller.UserID, org.ID.String()))
	return org, nil
}

// UpdateOrganisation updates the organisation's name and plan. Requires ADMIN
// or higher.
func (s *Service) UpdateOrganisation(ctx context.Context, caller *security.Identity, orgID uuid.UUID, name string, plan domain.Plan) (*domain.Organisation, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	if !authz.HasOrgRoleOrHigher(caller, orgID, membershipdomain.RoleAdmin) {
		return nil, apperr.AccessDenied("organisation admin or owner required")
	}
	org, err := s.orgs.GetOrganisation(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperr.NotFound("organisation %s not found", orgID)
	}
	org.Name = strings.TrimSpace(name)
	org.Plan = plan
	if err := org.Validate(); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}
	if err := s.orgs.UpdateOrganisation(ctx, org); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, orgID, caller.UserID, auditdomain.ActionOrganisationUpdate, "organisation/"+orgID.String(), org.Name)
	events.EmitAsync(s.producer, events.New(events.TypeOrganisationUpdated, orgID, caller.UserID, orgID.String()))
	return org, nil
}

// DeleteOrganisation deletes the organisation together with its memberships
// and invitations as one unit of work. OWNER only.
func (s *Service) DeleteOrganisation(ctx context.Context, caller *security.Identity, orgID uuid.UUID) error {
	if caller == nil {
		return apperr.MissingIdentity("no verified identity")
	}
	if !authz.HasOrgRoleOrHigher(caller, orgID, membershipdomain.RoleOwner) {
		return apperr.AccessDenied("organisation owner required")
	}
	org, err := s.orgs.GetOrganisation(ctx, orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return apperr.NotFound("organisation %s not found", orgID)
	}
	if err := s.orgs.DeleteOrganisationCascade(ctx, orgID); err != nil {
		return err
	}

	s.auditor.Record(ctx, orgID, caller.UserID, auditdomain.ActionOrganisationDelete, "organisation/"+orgID.String(), org.Name)
	events.EmitAsync(s.producer, events.New(events.TypeOrganisationDeleted, orgID, caller.UserID, orgID.String()))
	return nil
}

// RemoveMember removes the target user's membership. Owners can remove
// anyone below them, admins only strictly lower roles, and any member can
// remove themselves. An OWNER can never be removed: ownership must be
// transferred first, through a dedicated path this service does not provide.
func (s *Service) RemoveMember(ctx context.Context, caller *security.Identity, orgID, targetUserID uuid.UUID) error {
	if caller == nil {
		return apperr.MissingIdentity("no verified identity")
	}
	target, err := s.members.GetMembership(ctx, orgID, targetUserID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound("membership of user %s in organisation %s not found", targetUserID, orgID)
	}
	if target.Role == membershipdomain.RoleOwner {
		return apperr.InvalidArgument("cannot remove the organisation owner; transfer ownership first")
	}
	if !authz.CanRemoveMember(caller, orgID, target) {
		return apperr.AccessDenied("not allowed to remove this member")
	}
	if err := s.members.DeleteMembership(ctx, orgID, targetUserID); err != nil {
		return err
	}

	s.auditor.Record(ctx, orgID, caller.UserID, auditdomain.ActionMemberRemove, "member/"+targetUserID.String(), string(target.Role))
	events.EmitAsync(s.producer, events.New(events.TypeMemberRemoved, orgID, caller.UserID, targetUserID.String()))
	return nil
}

// UpdateRole changes the target member's role. No path here grants or revokes
// ownership; both assigning OWNER and altering an OWNER are rejected.
func (s *Service) UpdateRole(ctx context.Context, caller *security.Identity, orgID, targetUserID uuid.UUID, newRole membershipdomain.Role) (*membershipdomain.Membership, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	if !newRole.Valid() {
		return nil, apperr.InvalidArgument(fmt.Sprintf("unknown organisation role %q", newRole))
	}
	if newRole == membershipdomain.RoleOwner {
		return nil, apperr.InvalidArgument("ownership is granted only through ownership transfer")
	}
	target, err := s.members.GetMembership(ctx, orgID, targetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperr.NotFound("membership of user %s in organisation %s not found", targetUserID, orgID)
	}
	if !authz.CanMutateMember(caller, orgID, target) {
		return nil, apperr.AccessDenied("not allowed to alter this member")
	}
	if target.Role == membershipdomain.RoleOwner {
		return nil, apperr.InvalidArgument("ownership is revoked only through ownership transfer")
	}
	updated, err := s.members.UpdateRole(ctx, orgID, targetUserID, newRole)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("membership of user %s in organisation %s not found", targetUserID, orgID)
	}

	s.auditor.Record(ctx, orgID, caller.UserID, auditdomain.ActionMemberRoleChange, "member/"+targetUserID.String(), string(newRole))
	events.EmitAsync(s.producer, events.New(events.TypeMemberRoleChanged, orgID, caller.UserID, targetUserID.String()))
	return updated, nil
}
