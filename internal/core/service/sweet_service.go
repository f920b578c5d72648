package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
	"github.com/sweetshop/sweet-shop-api/internal/core/ports"
)

// SweetService implements the inventory use cases on top of the repository.
// The catalog cache is optional; pass nil to run without one.
type SweetService struct {
	repo   ports.SweetRepository
	cache  ports.CatalogCache
	logger zerolog.Logger
}

func NewSweetService(repo ports.SweetRepository, cache ports.CatalogCache, logger zerolog.Logger) *SweetService {
	return &SweetService{repo: repo, cache: cache, logger: logger}
}

func (s *SweetService) Create(ctx context.Context, input ports.CreateSweetInput) (*ports.SweetView, error) {
	name := strings.TrimSpace(input.Name)
	category := strings.TrimSpace(input.Category)

	if name == "" {
		return nil, domain.Invalid("name must be a non-empty string")
	}
	if len(name) > domain.MaxSweetNameLen {
		return nil, domain.Invalid("name cannot exceed 100 characters")
	}
	if category == "" {
		return nil, domain.Invalid("category must be a non-empty string")
	}
	if len(category) > domain.MaxCategoryLen {
		return nil, domain.Invalid("category cannot exceed 50 characters")
	}
	if input.Price < 0 {
		return nil, domain.Invalid("price must be a non-negative number")
	}
	if input.Quantity < 0 {
		return nil, domain.Invalid("quantity must be a non-negative integer")
	}
	if err := validateImage(input.Image); err != nil {
		return nil, err
	}

	// Pre-check for a friendly 409; the unique index re-validates under races.
	if _, err := s.repo.FindByName(ctx, name, ""); err == nil {
		return nil, domain.ErrSweetExists
	} else if !errors.Is(err, domain.ErrSweetNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	sweet := &domain.Sweet{
		Name:      name,
		Category:  category,
		Price:     input.Price,
		Quantity:  input.Quantity,
		Image:     input.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, sweet)
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Str("sweet_id", created.ID).Str("name", created.Name).Msg("sweet created")
	return toView(created), nil
}

func (s *SweetService) List(ctx context.Context) ([]*ports.SweetView, error) {
	if s.cache != nil {
		if payload, err := s.cache.GetList(ctx); err == nil {
			var views []*ports.SweetView
			if json.Unmarshal(payload, &views) == nil {
				return views, nil
			}
		} else if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("catalog cache read failed, falling back to store")
		}
	}

	sweets, err := s.repo.List(ctx, ports.SweetFilter{})
	if err != nil {
		return nil, err
	}
	views := toViews(sweets)

	if s.cache != nil {
		if payload, err := json.Marshal(views); err == nil {
			if err := s.cache.SetList(ctx, payload); err != nil {
				s.logger.Warn().Err(err).Msg("catalog cache write failed")
			}
		}
	}
	return views, nil
}

func (s *SweetService) Search(ctx context.Context, input ports.SearchInput) ([]*ports.SweetView, error) {
	filter, err := buildFilter(input)
	if err != nil {
		return nil, err
	}

	sweets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toViews(sweets), nil
}

func (s *SweetService) Update(ctx context.Context, id string, input ports.UpdateSweetInput) (*ports.SweetView, error) {
	update := ports.SweetUpdate{Image: input.Image}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		if len(name) > domain.MaxSweetNameLen {
			return nil, domain.Invalid("name cannot exceed 100 characters")
		}
		update.Name = &name
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, domain.Invalid("category cannot be empty")
		}
		if len(category) > domain.MaxCategoryLen {
			return nil, domain.Invalid("category cannot exceed 50 characters")
		}
		update.Category = &category
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, domain.Invalid("price must be a non-negative number")
		}
		update.Price = input.Price
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, domain.Invalid("quantity must be a non-negative integer")
		}
		update.Quantity = input.Quantity
	}
	if err := validateImage(input.Image); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, domain.Invalid("no fields provided for update")
	}

	// Rename uniqueness check excludes the record itself, so renaming a sweet
	// to its current name stays legal.
	if update.Name != nil {
		if _, err := s.repo.FindByName(ctx, *update.Name, id); err == nil {
			return nil, domain.ErrSweetExists
		} else if !errors.Is(err, domain.ErrSweetNotFound) {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Str("sweet_id", updated.ID).Msg("sweet updated")
	return toView(updated), nil
}

func (s *SweetService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Str("sweet_id", id).Msg("sweet deleted")
	return nil
}

// Purchase decrements stock by one. The quantity > 0 guard runs inside the
// store as part of the decrement, so concurrent purchases of the last unit
// cannot both succeed.
func (s *SweetService) Purchase(ctx context.Context, id string) (*ports.SweetView, error) {
	sweet, err := s.repo.DecrementStock(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Str("sweet_id", sweet.ID).Int64("quantity", sweet.Quantity).Msg("sweet purchased")
	return toView(sweet), nil
}

func (s *SweetService) Restock(ctx context.Context, id string, amount int64) (*ports.SweetView, error) {
	if amount <= 0 {
		return nil, domain.Invalid("amount must be a positive integer")
	}

	sweet, err := s.repo.IncrementStock(ctx, id, amount)
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info().Str("sweet_id", sweet.ID).Int64("amount", amount).Int64("quantity", sweet.Quantity).Msg("sweet restocked")
	return toView(sweet), nil
}

func (s *SweetService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

// buildFilter validates the raw search parameters and produces a store filter.
func buildFilter(input ports.SearchInput) (ports.SweetFilter, error) {
	filter := ports.SweetFilter{
		Name:     strings.TrimSpace(input.Name),
		Category: strings.TrimSpace(input.Category),
	}

	if input.MinPrice != "" {
		min, err := strconv.ParseFloat(input.MinPrice, 64)
		if err != nil || min < 0 {
			return ports.SweetFilter{}, domain.Invalid("minPrice must be a non-negative number")
		}
		filter.MinPrice = &min
	}
	if input.MaxPrice != "" {
		max, err := strconv.ParseFloat(input.MaxPrice, 64)
		if err != nil || max < 0 {
			return ports.SweetFilter{}, domain.Invalid("maxPrice must be a non-negative number")
		}
		filter.MaxPrice = &max
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return ports.SweetFilter{}, domain.Invalid("minPrice cannot be greater than maxPrice")
	}

	return filter, nil
}

func toView(sweet *domain.Sweet) *ports.SweetView {
	return &ports.SweetView{
		ID:        sweet.ID,
		Name:      sweet.Name,
		Category:  sweet.Category,
		Price:     sweet.Price,
		Quantity:  sweet.Quantity,
		ImageURL:  imageDataURL(sweet.Image),
		CreatedAt: sweet.CreatedAt,
		UpdatedAt: sweet.UpdatedAt,
	}
}

func toViews(sweets []*domain.Sweet) []*ports.SweetView {
	views := make([]*ports.SweetView, 0, len(sweets))
	for _, sweet := range sweets {
		views = append(views, toView(sweet))
	}
	return views
}
