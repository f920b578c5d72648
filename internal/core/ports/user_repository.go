package ports

import (
	"context"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
)

// UserRepository defines persistence for user credentials.
type UserRepository interface {
	// Create inserts a new user. Duplicate usernames surface as
	// domain.ErrUserExists, including losses of a write race.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
