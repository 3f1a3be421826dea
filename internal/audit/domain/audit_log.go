package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one membership, invitation, or organisation mutation.
type AuditLog struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	ActorID   uuid.UUID
	Action    Action
	Resource  string
	Metadata  string
	CreatedAt time.Time
}

// Action names one auditable mutation.
type Action string

const (
	ActionOrganisationCreate Action = "organisation.create"
	ActionOrganisationUpdate Action = "organisation.update"
	ActionOrganisationDelete Action = "organisation.delete"
	ActionMemberRemove       Action = "member.remove"
	ActionMemberRoleChange   Action = "member.role_change"
	ActionInviteCreate       Action = "invite.create"
	ActionInviteAccept       Action = "invite.accept"
	ActionInviteDecline      Action = "invite.decline"
	ActionInviteRevoke       Action = "invite.revoke"
)
