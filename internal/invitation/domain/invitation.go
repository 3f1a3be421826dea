package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	membershipdomain "paladin-core/internal/membership/domain"
)

// Invitation offers a prospective membership to an email address. Its token is
// an unguessable, single-use, time-bounded credential; possession of the token
// plus a matching verified email is what authorizes acceptance.
type Invitation struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Email     string
	Role      membershipdomain.Role
	Token     string
	InvitedBy uuid.UUID
	Status    Status
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Status is the invitation lifecycle state. PENDING may move to ACCEPTED,
// DECLINED, or EXPIRED; the other three states are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
	StatusExpired  Status = "EXPIRED"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool { return s != StatusPending }

// Expired reports whether the invitation's deadline has passed at now.
func (i *Invitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// NewToken returns a fresh unguessable invitation token: 32 bytes from
// crypto/rand, base64url-encoded.
func NewToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
