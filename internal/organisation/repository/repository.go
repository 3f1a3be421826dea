package repository

import (
	"context"

	"github.com/google/uuid"

	membershipdomain "paladin-core/internal/membership/domain"
	"paladin-core/internal/organisation/domain"
)

// Repository defines persistence for organisations. Compound operations are
// atomic: partial application (an organisation without its first OWNER
// membership, or a deleted organisation with surviving members) is a
// correctness violation.
type Repository interface {
	GetOrganisation(ctx context.Context, id uuid.UUID) (*domain.Organisation, error)
	GetOrganisationByName(ctx context.Context, name string) (*domain.Organisation, error)
	// CreateOrganisationWithOwner persists the organisation and its bootstrap
	// OWNER membership as one unit of work.
	CreateOrganisationWithOwner(ctx context.Context, o *domain.Organisation, owner *membershipdomain.Membership) error
	UpdateOrganisation(ctx context.Context, o *domain.Organisation) error
	// DeleteOrganisationCascade removes the organisation's invitations and
	// memberships before the organisation row itself, in one unit of work.
	DeleteOrganisationCascade(ctx context.Context, id uuid.UUID) error
}
