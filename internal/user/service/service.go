// Package service exposes user profile reads and self-service updates.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"paladin-core/internal/apperr"
	"paladin-core/internal/security"
	"paladin-core/internal/user/domain"
)

// Repo is the minimal user repository needed by the service.
type Repo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type Service struct {
	users Repo
}

func NewService(users Repo) *Service {
	return &Service{users: users}
}

// GetCurrentUser returns the profile of the verified caller.
func (s *Service) GetCurrentUser(ctx context.Context, caller *security.Identity) (*domain.User, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	u, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user %s not found", caller.UserID)
	}
	return u, nil
}

// GetUserProfileByID returns the profile with the given id.
func (s *Service) GetUserProfileByID(ctx context.Context, caller *security.Identity, id uuid.UUID) (*domain.User, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return u, nil
}

// GetUserProfileByEmail returns the profile with the given email.
func (s *Service) GetUserProfileByEmail(ctx context.Context, caller *security.Identity, email string) (*domain.User, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user %s not found", email)
	}
	return u, nil
}

// UpdateUserDetails updates the display name and avatar of the user with the
// given id. Only the user themselves may do so.
func (s *Service) UpdateUserDetails(ctx context.Context, caller *security.Identity, userID uuid.UUID, displayName, avatarURL string) (*domain.User, error) {
	if caller == nil {
		return nil, apperr.MissingIdentity("no verified identity")
	}
	if userID != caller.UserID {
		return nil, apperr.AccessDenied("profiles can only be updated by their owner")
	}
	u, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user %s not found", caller.UserID)
	}
	u.DisplayName = strings.TrimSpace(displayName)
	u.AvatarURL = strings.TrimSpace(avatarURL)
	if err := u.Validate(); err != nil {
		return nil, apperr.InvalidArgument(err.Error())
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
