package ports

import (
	"context"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
)

// SweetFilter carries the optional search conditions. Name and Category match
// as case-insensitive substrings; price bounds are inclusive.
type SweetFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// SweetUpdate is a partial update: nil means "leave unchanged".
type SweetUpdate struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int64
	Image    *domain.Image
}

// IsEmpty reports whether the update would change nothing.
func (u SweetUpdate) IsEmpty() bool {
	return u.Name == nil && u.Category == nil && u.Price == nil && u.Quantity == nil && u.Image == nil
}

// SweetRepository defines persistence operations for sweets.
//
// Identity arguments are hex ObjectIDs; a malformed id surfaces as
// domain.ErrInvalidID, a well-formed but absent id as domain.ErrSweetNotFound.
type SweetRepository interface {
	// Create inserts a new sweet. A duplicate name surfaces as
	// domain.ErrSweetExists, including losses of a write race.
	Create(ctx context.Context, sweet *domain.Sweet) (*domain.Sweet, error)

	// List returns sweets matching filter, newest first.
	List(ctx context.Context, filter SweetFilter) ([]*domain.Sweet, error)

	FindByID(ctx context.Context, id string) (*domain.Sweet, error)

	// FindByName looks up a sweet by exact name, excluding excludeID when
	// non-empty (used for rename uniqueness checks).
	FindByName(ctx context.Context, name, excludeID string) (*domain.Sweet, error)

	// Update applies the provided fields and returns the updated record.
	Update(ctx context.Context, id string, update SweetUpdate) (*domain.Sweet, error)

	Delete(ctx context.Context, id string) error

	// DecrementStock atomically decrements quantity by one, guarded by
	// quantity > 0 inside the store. Fails with domain.ErrOutOfStock when no
	// unit remains.
	DecrementStock(ctx context.Context, id string) (*domain.Sweet, error)

	// IncrementStock atomically increments quantity by amount.
	IncrementStock(ctx context.Context, id string, amount int64) (*domain.Sweet, error)
}
