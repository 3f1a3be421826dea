// Package events publishes domain events for membership, invitation, and
// organisation state changes. Downstream consumers (billing, notification
// email senders) subscribe to the topic; this core only produces. Emission is
// best-effort and never fails the mutation that produced the event.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one domain state change, serialized as JSON on the wire.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	OrgID      uuid.UUID `json:"organisation_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	SubjectID  string    `json:"subject_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Type names one domain event.
type Type string

const (
	TypeOrganisationCreated Type = "organisation.created"
	TypeOrganisationUpdated Type = "organisation.updated"
	TypeOrganisationDeleted Type = "organisation.deleted"
	TypeMemberJoined        Type = "member.joined"
	TypeMemberRemoved       Type = "member.removed"
	TypeMemberRoleChanged   Type = "member.role_changed"
	TypeInviteCreated       Type = "invite.created"
	TypeInviteDeclined      Type = "invite.declined"
	TypeInviteRevoked       Type = "invite.revoked"
)

// New builds an event with a fresh id and the current time.
func New(t Type, orgID, actorID uuid.UUID, subjectID string) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       t,
		OrgID:      orgID,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
	}
}

// Producer emits domain events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; use
	// EmitAsync from request paths.
	Emit(ctx context.Context, event *Event) error
	// Close releases resources (e.g. the Kafka writer). Safe to call if already closed.
	Close() error
}
