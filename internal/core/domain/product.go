package domain

import "strings"

// Product is a catalog item sold at the front desk.
type Product struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	SKU         string  `json:"sku,omitempty"`
	Status      string  `json:"status,omitempty"`
	Description string  `json:"description,omitempty" table:"wide"`
	ImageURL    string  `json:"image_url,omitempty" table:"-"`
}

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	SKU         string  `json:"sku,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// Validate checks required fields and numeric bounds.
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return Validationf("product name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return Validationf("category is required")
	}
	if in.Price < 0 {
		return Validationf("price cannot be negative")
	}
	if in.Stock < 0 {
		return Validationf("stock cannot be negative")
	}
	return nil
}

// SaleInput is the body of POST /products/{id}/sale.
type SaleInput struct {
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	MemberID      string  `json:"user_id,omitempty"`
}

// Validate checks quantity bounds. stock < 0 means unknown.
func (in SaleInput) Validate(stock int) error {
	if in.Quantity < 1 {
		return Validationf("quantity must be at least 1")
	}
	if stock >= 0 && in.Quantity > stock {
		return Validationf("quantity %d exceeds stock %d", in.Quantity, stock)
	}
	if in.UnitPrice < 0 {
		return Validationf("unit price cannot be negative")
	}
	return nil
}

// Sale is the recorded sale returned by the backend.
type Sale struct {
	ID          ID      `json:"id"`
	ProductID   ID      `json:"product_id"`
	Quantity    int     `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
	// RemainingStock is the product's stock after the sale, when reported.
	RemainingStock *int   `json:"remaining_stock,omitempty"`
	SoldAt         string `json:"sold_at,omitempty"`
}

// ProductMatches is the client-side filter predicate for products.
func ProductMatches(p Product, term string, status Status) bool {
	return status.Matches(p.Status) && ContainsFold(term, p.Name, p.Category, p.SKU)
}

// ProductStatsKind selects one of the /products/stats/{kind} reports.
type ProductStatsKind string

// Report kinds.
const (
	ProductStatsMonthly    ProductStatsKind = "monthly"
	ProductStatsWeekly     ProductStatsKind = "weekly"
	ProductStatsAnalytics  ProductStatsKind = "analytics"
	ProductStatsTopSelling ProductStatsKind = "top-selling"
)

// ParseProductStatsKind validates a report kind.
func ParseProductStatsKind(s string) (ProductStatsKind, error) {
	switch k := ProductStatsKind(strings.ToLower(s)); k {
	case ProductStatsMonthly, ProductStatsWeekly, ProductStatsAnalytics, ProductStatsTopSelling:
		return k, nil
	default:
		return "", Validationf("unknown stats kind %q (monthly, weekly, analytics, top-selling)", s)
	}
}
