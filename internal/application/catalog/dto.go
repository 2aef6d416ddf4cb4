package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Catalog listing limits
const (
	DefaultPageSize  = 10
	FeaturedLimit    = 8
	TopProductsLimit = 5
)

// CreateProductRequest represents a request to create a new product.
// It binds from JSON or from the fields of a multipart form.
type CreateProductRequest struct {
	Name        string      `json:"name" form:"name" binding:"required,min=1,max=200"`
	Description string      `json:"description" form:"description" binding:"max=5000"`
	Price       json.Number `json:"price" form:"price" binding:"required"`
	Stock       int         `json:"stock" form:"stock" binding:"min=0"`
	Category    string      `json:"category" form:"category" binding:"required,min=1,max=100"`
	IsFeatured  bool        `json:"is_featured" form:"is_featured"`
	ImageURLs   []string    `json:"images" form:"image_urls" binding:"max=5,dive,max=1000"`
}

// UpdateProductRequest represents a partial product update. When ImageURLs
// or new uploads are present they replace the current image list.
type UpdateProductRequest struct {
	Name        *string      `json:"name" form:"name" binding:"omitempty,min=1,max=200"`
	Description *string      `json:"description" form:"description" binding:"omitempty,max=5000"`
	Price       *json.Number `json:"price" form:"price"`
	Stock       *int         `json:"stock" form:"stock" binding:"omitempty,min=0"`
	Category    *string      `json:"category" form:"category" binding:"omitempty,min=1,max=100"`
	IsFeatured  *bool        `json:"is_featured" form:"is_featured"`
	ImageURLs   []string     `json:"images" form:"image_urls" binding:"max=5,dive,max=1000"`
}

// ListProductsRequest filters the public catalog
type ListProductsRequest struct {
	Keyword  string `form:"keyword" binding:"max=200"`
	Category string `form:"category" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	IsFeatured  bool            `json:"is_featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ProductListResult is one page of the catalog
type ProductListResult struct {
	Products      []ProductResponse `json:"products"`
	Page          int               `json:"page"`
	Pages         int               `json:"pages"`
	TotalProducts int64             `json:"total_products"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Images:      images,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
