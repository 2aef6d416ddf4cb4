package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll returns one page of products matching the filter and the total match count
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// FindFeatured returns up to limit featured products, newest first
	FindFeatured(ctx context.Context, limit int) ([]Product, error)

	// FindTopByStock returns up to limit products ordered by stock descending
	FindTopByStock(ctx context.Context, limit int) ([]Product, error)

	// ListCategories returns the distinct category names in use
	ListCategories(ctx context.Context) ([]string, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// Save updates a product. The update only applies if the stored version
	// matches product.Version; otherwise shared.ErrConcurrencyConflict is
	// returned. On success product.Version is advanced.
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product together with the cart lines referencing it
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats returns the product count and the sum of all stock
	Stats(ctx context.Context) (ProductStats, error)

	StockAdjuster
}

// StockAdjuster performs atomic stock mutations. Implementations issue a
// single conditional UPDATE per call so concurrent writers cannot drive
// stock below zero.
type StockAdjuster interface {
	// DecrementStock subtracts quantity only if enough stock remains.
	// Returns shared.ErrInsufficientStock when the product cannot cover it.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error

	// IncrementStock adds quantity back to the product
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error

	// DeductStockClamped subtracts quantity, flooring the result at zero
	DeductStockClamped(ctx context.Context, id uuid.UUID, quantity int) error
}

// ProductFilter contains filter options for listing products
type ProductFilter struct {
	// Keyword matches the product name, case-insensitive
	Keyword  string
	Category string
	Featured *bool
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// ProductStats is the catalog summary shown on the admin dashboard
type ProductStats struct {
	TotalProducts int64 `json:"total_products"`
	TotalStock    int64 `json:"total_stock"`
}
