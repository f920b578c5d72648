package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
	"github.com/sweetshop/sweet-shop-api/internal/core/ports"
)

// stubSweetRepo is an in-memory SweetRepository honouring the same contract as
// the Mongo implementation: guarded decrement, duplicate-name conflicts, and
// newest-first listing.
type stubSweetRepo struct {
	mu     sync.Mutex
	seq    int
	sweets map[string]*domain.Sweet
}

func newStubSweetRepo() *stubSweetRepo {
	return &stubSweetRepo{sweets: make(map[string]*domain.Sweet)}
}

func cloneSweet(s *domain.Sweet) *domain.Sweet {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Image != nil {
		img := *s.Image
		clone.Image = &img
	}
	return &clone
}

func (r *stubSweetRepo) Create(_ context.Context, sweet *domain.Sweet) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sweets {
		if existing.Name == sweet.Name {
			return nil, domain.ErrSweetExists
		}
	}
	r.seq++
	created := cloneSweet(sweet)
	created.ID = fmt.Sprintf("%024d", r.seq)
	// Monotonic creation times keep newest-first ordering deterministic.
	created.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	r.sweets[created.ID] = cloneSweet(created)
	return created, nil
}

func (r *stubSweetRepo) List(_ context.Context, filter ports.SweetFilter) ([]*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Sweet
	for _, s := range r.sweets {
		if filter.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Category != "" && !strings.Contains(strings.ToLower(s.Category), strings.ToLower(filter.Category)) {
			continue
		}
		if filter.MinPrice != nil && s.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && s.Price > *filter.MaxPrice {
			continue
		}
		out = append(out, cloneSweet(s))
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *stubSweetRepo) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sweets[id]; ok {
		return cloneSweet(s), nil
	}
	return nil, domain.ErrSweetNotFound
}

func (r *stubSweetRepo) FindByName(_ context.Context, name, excludeID string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sweets {
		if s.Name == name && s.ID != excludeID {
			return cloneSweet(s), nil
		}
	}
	return nil, domain.ErrSweetNotFound
}

func (r *stubSweetRepo) Update(_ context.Context, id string, update ports.SweetUpdate) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	if update.Name != nil {
		for _, other := range r.sweets {
			if other.ID != id && other.Name == *update.Name {
				return nil, domain.ErrSweetExists
			}
		}
		s.Name = *update.Name
	}
	if update.Category != nil {
		s.Category = *update.Category
	}
	if update.Price != nil {
		s.Price = *update.Price
	}
	if update.Quantity != nil {
		s.Quantity = *update.Quantity
	}
	if update.Image != nil {
		img := *update.Image
		s.Image = &img
	}
	s.UpdatedAt = time.Now().UTC()
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sweets[id]; !ok {
		return domain.ErrSweetNotFound
	}
	delete(r.sweets, id)
	return nil
}

func (r *stubSweetRepo) DecrementStock(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	if !s.InStock() {
		return nil, domain.ErrOutOfStock
	}
	s.Quantity--
	s.UpdatedAt = time.Now().UTC()
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) IncrementStock(_ context.Context, id string, amount int64) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	s.Quantity += amount
	s.UpdatedAt = time.Now().UTC()
	return cloneSweet(s), nil
}

func newSweetService(repo ports.SweetRepository, cache ports.CatalogCache) *SweetService {
	return NewSweetService(repo, cache, zerolog.Nop())
}

func mustCreate(t *testing.T, svc *SweetService, name, category string, price float64, quantity int64) *ports.SweetView {
	t.Helper()
	view, err := svc.Create(context.Background(), ports.CreateSweetInput{
		Name: name, Category: category, Price: price, Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return view
}

func TestSweetService_Create_Validation(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input ports.CreateSweetInput
	}{
		{"empty name", ports.CreateSweetInput{Name: "  ", Category: "candy", Price: 1, Quantity: 1}},
		{"long name", ports.CreateSweetInput{Name: strings.Repeat("x", 101), Category: "candy", Price: 1, Quantity: 1}},
		{"empty category", ports.CreateSweetInput{Name: "Fudge", Category: " ", Price: 1, Quantity: 1}},
		{"long category", ports.CreateSweetInput{Name: "Fudge", Category: strings.Repeat("x", 51), Price: 1, Quantity: 1}},
		{"negative price", ports.CreateSweetInput{Name: "Fudge", Category: "candy", Price: -0.5, Quantity: 1}},
		{"negative quantity", ports.CreateSweetInput{Name: "Fudge", Category: "candy", Price: 1, Quantity: -1}},
		{"bad image type", ports.CreateSweetInput{Name: "Fudge", Category: "candy", Price: 1, Quantity: 1,
			Image: &domain.Image{Data: []byte{1}, ContentType: "application/pdf"}}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.input); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestSweetService_Create_TrimsFields(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	view := mustCreate(t, svc, "  Gulab Jamun  ", "  indian  ", 12.5, 3)
	if view.Name != "Gulab Jamun" || view.Category != "indian" {
		t.Fatalf("expected trimmed fields, got %q / %q", view.Name, view.Category)
	}
}

func TestSweetService_Create_DuplicateName(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	mustCreate(t, svc, "Ladoo", "indian", 5, 10)
	_, err := svc.Create(context.Background(), ports.CreateSweetInput{
		Name: " Ladoo ", Category: "other", Price: 1, Quantity: 1,
	})
	if !errors.Is(err, domain.ErrSweetExists) {
		t.Fatalf("expected ErrSweetExists, got %v", err)
	}
}

func TestSweetService_Update_RenameConflicts(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	a := mustCreate(t, svc, "Barfi", "indian", 5, 10)
	mustCreate(t, svc, "Jalebi", "indian", 4, 10)

	// Renaming to a name held by another sweet conflicts.
	name := "Jalebi"
	if _, err := svc.Update(ctx, a.ID, ports.UpdateSweetInput{Name: &name}); !errors.Is(err, domain.ErrSweetExists) {
		t.Fatalf("expected ErrSweetExists, got %v", err)
	}

	// Renaming to its own current name succeeds.
	own := "Barfi"
	if _, err := svc.Update(ctx, a.ID, ports.UpdateSweetInput{Name: &own}); err != nil {
		t.Fatalf("rename to own name failed: %v", err)
	}
}

func TestSweetService_Update_PartialFields(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	created := mustCreate(t, svc, "Halwa", "indian", 8, 5)

	price := 9.5
	updated, err := svc.Update(ctx, created.ID, ports.UpdateSweetInput{Price: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Price != 9.5 {
		t.Fatalf("expected price 9.5, got %v", updated.Price)
	}
	if updated.Name != "Halwa" || updated.Category != "indian" || updated.Quantity != 5 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestSweetService_Update_Validation(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()
	created := mustCreate(t, svc, "Kheer", "indian", 8, 5)

	empty := "   "
	if _, err := svc.Update(ctx, created.ID, ports.UpdateSweetInput{Name: &empty}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	negative := -1.0
	if _, err := svc.Update(ctx, created.ID, ports.UpdateSweetInput{Price: &negative}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative price, got %v", err)
	}
}

func TestSweetService_Update_NoFields(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	created := mustCreate(t, svc, "Nougat", "candy", 8, 5)

	if _, err := svc.Update(context.Background(), created.ID, ports.UpdateSweetInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty update, got %v", err)
	}
}

func TestSweetService_Update_NotFound(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	price := 1.0
	if _, err := svc.Update(context.Background(), "missing", ports.UpdateSweetInput{Price: &price}); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_Search_PriceRange(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	mustCreate(t, svc, "A", "candy", 5, 1)
	mustCreate(t, svc, "B", "candy", 15, 1)
	mustCreate(t, svc, "C", "candy", 25, 1)

	views, err := svc.Search(ctx, ports.SearchInput{MinPrice: "10", MaxPrice: "20"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(views) != 1 || views[0].Name != "B" {
		t.Fatalf("expected exactly B, got %+v", views)
	}

	if _, err := svc.Search(ctx, ports.SearchInput{MinPrice: "20", MaxPrice: "10"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}

	all, err := svc.Search(ctx, ports.SearchInput{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 sweets, got %d", len(all))
	}
	// Newest first.
	if all[0].Name != "C" || all[2].Name != "A" {
		t.Fatalf("expected newest-first order, got %v, %v, %v", all[0].Name, all[1].Name, all[2].Name)
	}
}

func TestSweetService_Search_InclusiveBounds(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	mustCreate(t, svc, "Edge", "candy", 10, 1)
	views, err := svc.Search(context.Background(), ports.SearchInput{MinPrice: "10", MaxPrice: "10"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected boundary match, got %d results", len(views))
	}
}

func TestSweetService_Search_InvalidBounds(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	for _, tc := range []ports.SearchInput{
		{MinPrice: "abc"},
		{MaxPrice: "abc"},
		{MinPrice: "-5"},
		{MaxPrice: "-1"},
	} {
		if _, err := svc.Search(ctx, tc); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", tc, err)
		}
	}
}

func TestSweetService_Search_Substring(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	mustCreate(t, svc, "Dark Chocolate", "chocolate", 7, 1)
	mustCreate(t, svc, "Lollipop", "candy", 2, 1)

	views, err := svc.Search(context.Background(), ports.SearchInput{Name: "CHOCO"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(views) != 1 || views[0].Name != "Dark Chocolate" {
		t.Fatalf("expected case-insensitive substring match, got %+v", views)
	}
}

func TestSweetService_Purchase_DecrementsByOne(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	created := mustCreate(t, svc, "Toffee", "candy", 1, 3)
	view, err := svc.Purchase(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if view.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", view.Quantity)
	}
}

func TestSweetService_Purchase_OutOfStock(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	created := mustCreate(t, svc, "Mint", "candy", 1, 0)
	if _, err := svc.Purchase(ctx, created.ID); !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}

	// Quantity never dips below zero.
	views, _ := svc.List(ctx)
	if views[0].Quantity != 0 {
		t.Fatalf("quantity changed on failed purchase: %d", views[0].Quantity)
	}
}

func TestSweetService_Purchase_NotFound(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	if _, err := svc.Purchase(context.Background(), "missing"); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_Purchase_ConcurrentLastUnit(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newSweetService(repo, nil)
	ctx := context.Background()

	created := mustCreate(t, svc, "Last One", "candy", 1, 1)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, created.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, outOfStock int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || outOfStock != n-1 {
		t.Fatalf("expected 1 success and %d out-of-stock, got %d/%d", n-1, successes, outOfStock)
	}

	final, _ := repo.FindByID(ctx, created.ID)
	if final.Quantity != 0 {
		t.Fatalf("expected final quantity 0, got %d", final.Quantity)
	}
}

func TestSweetService_Restock(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	created := mustCreate(t, svc, "Caramel", "candy", 1, 2)

	view, err := svc.Restock(ctx, created.ID, 40)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if view.Quantity != 42 {
		t.Fatalf("expected quantity 42, got %d", view.Quantity)
	}

	for _, amount := range []int64{0, -3} {
		if _, err := svc.Restock(ctx, created.ID, amount); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("amount %d: expected ErrInvalidInput, got %v", amount, err)
		}
	}
}

func TestSweetService_ImageRoundTrip(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	raw := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	view, err := svc.Create(ctx, ports.CreateSweetInput{
		Name: "Pictured", Category: "candy", Price: 1, Quantity: 1,
		Image: &domain.Image{Data: raw, ContentType: "image/png"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if view.ImageURL == nil {
		t.Fatalf("expected image URL")
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(*view.ImageURL, prefix) {
		t.Fatalf("unexpected data URI: %s", *view.ImageURL)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(*view.ImageURL, prefix))
	if err != nil {
		t.Fatalf("decode data URI: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Fatalf("decoded bytes differ from original")
	}

	// No image: projection field stays null, never an error.
	plain := mustCreate(t, svc, "Plain", "candy", 1, 1)
	if plain.ImageURL != nil {
		t.Fatalf("expected nil image URL, got %v", *plain.ImageURL)
	}
}

func TestSweetService_Create_OversizedImage(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	_, err := svc.Create(context.Background(), ports.CreateSweetInput{
		Name: "Huge", Category: "candy", Price: 1, Quantity: 1,
		Image: &domain.Image{Data: make([]byte, domain.MaxImageBytes+1), ContentType: "image/png"},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// stubCache records catalog cache traffic.
type stubCache struct {
	payload     []byte
	sets        int
	hits        int
	invalidates int
}

func (c *stubCache) GetList(context.Context) ([]byte, error) {
	if c.payload == nil {
		return nil, ports.ErrCacheMiss
	}
	c.hits++
	return c.payload, nil
}

func (c *stubCache) SetList(_ context.Context, payload []byte) error {
	c.sets++
	c.payload = payload
	return nil
}

func (c *stubCache) Invalidate(context.Context) error {
	c.invalidates++
	c.payload = nil
	return nil
}

func TestSweetService_List_UsesCatalogCache(t *testing.T) {
	cache := &stubCache{}
	svc := newSweetService(newStubSweetRepo(), cache)
	ctx := context.Background()

	mustCreate(t, svc, "Cached", "candy", 1, 1)
	if cache.invalidates == 0 {
		t.Fatalf("expected create to invalidate the catalog cache")
	}

	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache fill, got %d sets", cache.sets)
	}

	views, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected cache hit, got %d hits", cache.hits)
	}
	if len(views) != 1 || views[0].Name != "Cached" {
		t.Fatalf("unexpected cached views: %+v", views)
	}
}
