package repository

import (
	"context"

	"github.com/google/uuid"

	"paladin-core/internal/user/domain"
)

// Repository defines persistence for user profiles.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}
