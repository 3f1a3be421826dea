package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is the core user profile. Identities and credentials live with the
// external identity provider; this record only carries profile data.
type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.DisplayName == "" {
		return errors.New("display name is required")
	}
	return nil
}
