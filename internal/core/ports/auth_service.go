package ports

import (
	"context"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
)

// AuthService implements registration and login. Both return a signed bearer
// token alongside the created/authenticated user.
type AuthService interface {
	Register(ctx context.Context, username, password, role string) (string, *domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
