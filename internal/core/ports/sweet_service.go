package ports

import (
	"context"
	"time"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
)

// CreateSweetInput carries all data needed to create a sweet.
type CreateSweetInput struct {
	Name     string
	Category string
	Price    float64
	Quantity int64
	Image    *domain.Image // optional
}

// UpdateSweetInput is the partial-update DTO: nil fields stay unchanged.
type UpdateSweetInput struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int64
	Image    *domain.Image
}

// SearchInput carries the raw search query parameters. Price bounds are kept
// as strings so the service can reject non-numeric input explicitly.
type SearchInput struct {
	Name     string
	Category string
	MinPrice string
	MaxPrice string
}

// SweetView is the outward-facing projection of a sweet. Raw image bytes are
// replaced by a data URI; ImageURL is nil when no image is stored.
type SweetView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	ImageURL  *string   `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SweetService defines the inventory use cases.
type SweetService interface {
	Create(ctx context.Context, input CreateSweetInput) (*SweetView, error)
	List(ctx context.Context) ([]*SweetView, error)
	Search(ctx context.Context, input SearchInput) ([]*SweetView, error)
	Update(ctx context.Context, id string, input UpdateSweetInput) (*SweetView, error)
	Delete(ctx context.Context, id string) error
	Purchase(ctx context.Context, id string) (*SweetView, error)
	Restock(ctx context.Context, id string, amount int64) (*SweetView, error)
}
