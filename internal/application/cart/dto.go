package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds units of a product to the caller's cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest sets the quantity of a cart line. Zero removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartItemResponse is a cart line with the live product details needed for display.
// Price is the price captured when the product was first added.
type CartItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Available bool            `json:"available"`
}

// CartResponse represents the caller's cart
type CartResponse struct {
	ID            uuid.UUID          `json:"id"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	Total         decimal.Decimal    `json:"total"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ToCartResponse expands a cart with the given products, keyed by ID.
// Lines whose product is gone are reported as unavailable.
func ToCartResponse(c *cart.Cart, products map[uuid.UUID]*catalog.Product) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, item := range c.Items {
		line := CartItemResponse{
			ProductID: item.ProductID,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		}
		if p, ok := products[item.ProductID]; ok {
			line.Name = p.Name
			line.Image = p.PrimaryImage()
			line.Stock = p.Stock
			line.Available = p.HasStock(item.Quantity)
		}
		items[i] = line
	}

	return CartResponse{
		ID:            c.ID,
		Items:         items,
		TotalQuantity: c.TotalQuantity(),
		Total:         c.Total(),
		UpdatedAt:     c.UpdatedAt,
	}
}
