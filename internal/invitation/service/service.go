// Package service drives the invitation lifecycle: create, accept, decline,
// expire, revoke. Acceptance is the only path that creates a non-owner
// membership, and it does so atomically with the status flip so a membership
// can never exist for an invitation that is still PENDING.
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
	"paladin-core/internal/invitation/domain"
	membershipdomain "paladin-core/internal/membership/domain"
	"paladin-core/internal/platform/authz"
	"paladin-core/internal/security"
	userdomain "paladin-core/internal/user/domain"
)

// DefaultTTL is the invitation lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

// InvitationRepo is the minimal invitation repository needed by the service.
type InvitationRepo interface {
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	FindPendingByOrgAndEmail(ctx context.Context, orgID uuid.UUID, email string) (*domain.Invitation, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Invitation, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*domain.Invitation, error)
	CreateInvitation(ctx context.Context, inv *domain.Invitation) error
	TransitionStatus(ctx context.Context, id uuid.UUID, to domain.Status) (bool, error)
	AcceptWithMembership(ctx context.Context, id uuid.UUID, m *membershipdomain.Membership) (bool, error)
	DeleteInvitation(ctx context.Context, id uuid.UUID) (bool, error)
}

// MembershipRepo resolves existing memberships for the already-a-member check.
type MembershipRepo interface {
	GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*membershipdomain.Membership, error)
}

// UserRepo resolves invitee emails to user accounts.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// Service implements the invitation lifecycle.
type Service struct {
	invites  InvitationRepo
	members  MembershipRepo
	users    UserRepo
	ttl      time.Duration
	auditor  *audit.Logger
	producer events.Producer
	now      func() time.Time
}

// NewService returns a Service. A non-positive ttl falls back to DefaultTTL.
func NewService(invites InvitationRepo, members MembershipRepo, users UserRepo, ttl time.Duration, auditor *audit.Logger, producer events.Producer) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		invites:  invites,
		members:  members,
		users:    users,
		ttl:      ttl,
		auditor:  auditor,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create issues a PENDING invitation for email to join the organisation with
// the given role. Requires ADMIN or higher; the OWNER role cannot be invited.
// An invitee who is already a member yields Conflict, and a second pending
// invitation for the same email yields InvalidState.
func (s *Service) Create(ctx context.Context, caller *security.Identity, orgID uuid.UUID, email string, role membershipdomain.Role) (*domain.Invitation, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.InvalidArgument("invitee email is required")
	}
	if !role.Valid() {
		return nil, apperr.InvalidArgument(fmt.Sprintf("unknown organisation role %q", role))
	}
	if role == membershipdomain.RoleOwner {
		return nil, apperr.InvalidArgument("the OWNER role cannot be invited; transfer ownership instead")
	}
	if !authz.CanInvite(caller, orgID, role) {
		return nil, apperr.AccessDenied("organisation admin or owner required to invite")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		m, err := s.members.GetMembership(ctx, orgID, user.ID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return nil, apperr.Conflict(fmt.Sprintf("%s is already a member of this organisation", email))
		}
	}

	pending, err := s.invites.FindPendingByOrgAndEmail(ctx, orgID, email)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, apperr.InvalidState(fmt.Sprintf("an invitation for %s is already pending", email))
	}

	token, err := domain.NewToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	inv := &domain.Invitation{
		ID:        uuid.New(),
		OrgID:     orgID,
		Email:     email,
		Role:      role,
		Token:     token,
		InvitedBy: caller.UserID,
		Status:    domain.StatusPending,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.invites.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, orgID, caller.UserID, auditdomain.ActionInviteCreate, "invite/"+inv.ID.String(), email)
	events.EmitAsync(s.producer, events.New(events.TypeInviteCreated, orgID, caller.UserID, inv.ID.String()))
	return inv, nil
}

// Respond accepts or declines the invitation identified by token on behalf of
// the caller. The caller's verified email must match the invitee email; an
// invitation past its deadline is flipped to EXPIRED and the response is
// rejected. Acceptance creates the membership and marks the invitation
// ACCEPTED as one unit of work.
func (s *Service) Respond(ctx context.Context, caller *security.Identity, token string, accept bool) (*domain.Invitation, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	inv, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFound("invitation not found")
	}
	if !strings.EqualFold(caller.Email, inv.Email) {
		return nil, apperr.AccessDenied("this invitation was issued to a different email address")
	}
	if inv.Status.Terminal() {
		return nil, apperr.InvalidState(fmt.Sprintf("invitation is %s", inv.Status))
	}
	if inv.Expired(s.now()) {
		// Lazy expiry: flip on first observation after the deadline.
		if _, err := s.invites.TransitionStatus(ctx, inv.ID, domain.StatusExpired); err != nil {
			return nil, err
		}
		return nil, apperr.InvalidState("invitation has expired")
	}

	if accept {
		m := &membershipdomain.Membership{
			OrgID:       inv.OrgID,
			UserID:      caller.UserID,
			Role:        inv.Role,
			MemberSince: s.now(),
		}
		ok, err := s.invites.AcceptWithMembership(ctx, inv.ID, m)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.InvalidState("invitation is no longer pending")
		}
		inv.Status = domain.StatusAccepted
		s.auditor.Record(ctx, inv.OrgID, caller.UserID, auditdomain.ActionInviteAccept, "invite/"+inv.ID.String(), inv.Email)
		events.EmitAsync(s.producer, events.New(events.TypeMemberJoined, inv.OrgID, caller.UserID, caller.UserID.String()))
		return inv, nil
	}

	ok, err := s.invites.TransitionStatus(ctx, inv.ID, domain.StatusDeclined)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("invitation is no longer pending")
	}
	inv.Status = domain.StatusDeclined
	s.auditor.Record(ctx, inv.OrgID, caller.UserID, auditdomain.ActionInviteDecline, "invite/"+inv.ID.String(), inv.Email)
	events.EmitAsync(s.producer, events.New(events.TypeInviteDeclined, inv.OrgID, caller.UserID, inv.ID.String()))
	return inv, nil
}

// Revoke deletes a PENDING invitation of the organisation. Requires ADMIN or
// higher. A second revoke of the same invitation yields NotFound.
func (s *Service) Revoke(ctx context.Context, caller *security.Identity, orgID, inviteID uuid.UUID) error {
	if caller == nil {
		return apperr.MissingIdentity("no verified identity")
	}
	if !authz.HasOrgRoleOrHigher(caller, orgID, membershipdomain.RoleAdmin) {
		return apperr.AccessDenied("organisation admin or owner required to revoke")
	}
	inv, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		return err
	}
	if inv == nil || inv.OrgID != orgID {
		return apperr.NotFound("invitation %s not found", inviteID)
	}
	if inv.Status.Terminal() {
		return apperr.InvalidState(fmt.Sprintf("invitation is %s", inv.Status))
	}
	ok, err := s.invites.DeleteInvitation(ctx, inviteID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("invitation %s not found", inviteID)
	}

	s.auditor.Record(ctx, orgID, caller.UserID, auditdomain.ActionInviteRevoke, "invite/"+inviteID.String(), inv.Email)
	events.EmitAsync(s.producer, events.New(events.TypeInviteRevoked, orgID, caller.UserID, inviteID.String()))
	return nil
}

// ListUserInvites returns the caller's invitations across organisations,
// matched by verified email.
func (s *Service) ListUserInvites(ctx context.Context, caller *security.Identity) ([]*domain.Invitation, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	return s.invites.ListByEmail(ctx, strings.ToLower(caller.Email))
}

// ListOrganisationInvites returns all invitations of the organisation.
// Requires any role in the organisation.
func (s *Service) ListOrganisationInvites(ctx context.Context, caller *security.Identity, orgID uuid.UUID) ([]*domain.Invitation, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	if !authz.HasOrg(caller, orgID) {
		return nil, apperr.AccessDenied("not a member of this organisation")
	}
	return s.invites.ListByOrg(ctx, orgID)
}
