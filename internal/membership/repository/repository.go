package repository

import (
	"context"

	"github.com/google/uuid"

	"paladin-core/internal/membership/domain"
)

// Repository defines persistence for memberships. There is deliberately no
// plain create: membership rows are inserted only inside the organisation
// bootstrap and invitation acceptance transactions.
type Repository interface {
	GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*domain.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID uuid.UUID) ([]*domain.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error)
	UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role domain.Role) (*domain.Membership, error)
	DeleteMembership(ctx context.Context, orgID, userID uuid.UUID) error
}
