package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/core/domain"
)

// ProductsPerPage is the products page size.
const ProductsPerPage = 20

// Products caches the product catalog and records sales.
type Products struct {
	*Collection[domain.Product]
	api API
}

// NewProducts creates the products store. perPage <= 0 uses ProductsPerPage.
func NewProducts(deps Deps, perPage int) *Products {
	if perPage <= 0 {
		perPage = ProductsPerPage
	}
	return &Products{
		Collection: NewCollection(Config[domain.Product]{
			Name:    "products",
			Path:    "/products",
			ListKey: "products",
			PerPage: perPage,
			ID:      func(p domain.Product) domain.ID { return p.ID },
			Match:   domain.ProductMatches,
		}, deps),
		api: deps.API,
	}
}

// Create validates in and creates the product.
func (s *Products) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}
	return s.Collection.Create(ctx, in)
}

// Update validates in and updates product id.
func (s *Products) Update(ctx context.Context, id domain.ID, in domain.ProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}
	return s.Collection.Update(ctx, id, in)
}

// cachedStock returns the known stock of product id, or -1.
func (s *Products) cachedStock(id domain.ID) int {
	snap := s.Snapshot()
	if snap.Selected != nil && snap.Selected.ID == id {
		return snap.Selected.Stock
	}
	for _, p := range snap.Items {
		if p.ID == id {
			return p.Stock
		}
	}
	return -1
}

// RecordSale sells in.Quantity units of product id and updates the cached
// stock, from the server's figure when it reports one.
func (s *Products) RecordSale(ctx context.Context, id domain.ID, in domain.SaleInput) (*domain.Sale, error) {
	if err := in.Validate(s.cachedStock(id)); err != nil {
		return nil, err
	}

	var sale domain.Sale
	path := "/products/" + url.PathEscape(id.String()) + "/sale"
	if err := s.api.Post(ctx, path, in, &sale, connection.WithIdempotencyKey(uuid.NewString())); err != nil {
		s.setError(err)
		return nil, fmt.Errorf("record sale: %w", err)
	}

	s.mutate(id, func(p *domain.Product) {
		if sale.RemainingStock != nil {
			p.Stock = *sale.RemainingStock
		} else {
			p.Stock -= in.Quantity
		}
	})
	return &sale, nil
}

// Categories lists product categories.
func (s *Products) Categories(ctx context.Context) ([]string, error) {
	var page pageResponse[string]
	page.listKey = "categories"
	if err := s.api.Get(ctx, "/products/categories", &page); err != nil {
		return nil, fmt.Errorf("product categories: %w", err)
	}
	return page.items, nil
}

// LowStock lists products with stock at or below threshold.
func (s *Products) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	if threshold < 0 {
		return nil, domain.Validationf("threshold cannot be negative")
	}
	var page pageResponse[domain.Product]
	page.listKey = "products"
	if err := s.api.Get(ctx, "/products/low-stock?threshold="+strconv.Itoa(threshold), &page); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return page.items, nil
}

// Stats returns one of the product reports. The shape varies per kind.
func (s *Products) Stats(ctx context.Context, kind domain.ProductStatsKind) (map[string]any, error) {
	if _, err := domain.ParseProductStatsKind(string(kind)); err != nil {
		return nil, err
	}
	var out any
	if err := s.api.Get(ctx, "/products/stats/"+string(kind), &out); err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	if m, ok := out.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{"data": out}, nil
}
