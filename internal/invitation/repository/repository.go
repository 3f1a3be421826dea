package repository

import (
	"context"

	"github.com/google/uuid"

	"paladin-core/internal/invitation/domain"
	membershipdomain "paladin-core/internal/membership/domain"
)

// Repository defines persistence for invitations. Status transitions are
// conditional on the row still being PENDING, so two requests racing to flip
// the same invitation cannot both win; the loser observes ok=false.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	// FindPendingByOrgAndEmail returns the PENDING invitation for the
	// (organisation, email) pair, or nil. At most one such row exists.
	FindPendingByOrgAndEmail(ctx context.Context, orgID uuid.UUID, email string) (*domain.Invitation, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Invitation, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*domain.Invitation, error)
	CreateInvitation(ctx context.Context, inv *domain.Invitation) error
	// TransitionStatus moves a PENDING invitation to the given status.
	// ok is false when the invitation was no longer PENDING.
	TransitionStatus(ctx context.Context, id uuid.UUID, to domain.Status) (ok bool, err error)
	// AcceptWithMembership marks the invitation ACCEPTED and creates the
	// resulting membership as one unit of work. ok is false when the
	// invitation was no longer PENDING; no membership is created then.
	AcceptWithMembership(ctx context.Context, id uuid.UUID, m *membershipdomain.Membership) (ok bool, err error)
	// DeleteInvitation removes the row. ok is false when no row existed.
	DeleteInvitation(ctx context.Context, id uuid.UUID) (ok bool, err error)
}
