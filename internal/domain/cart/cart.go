package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when a product is not in the cart
var ErrItemNotFound = shared.NewDomainError("NOT_FOUND", "Product not found in cart")

// Cart is a user's shopping cart. Each user owns at most one cart and each
// product appears at most once in it.
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID
	Items  []CartItem
}

// CartItem is a line in the cart. Price is captured when the product is
// first added and is never refreshed from the catalog.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

// Subtotal returns price times quantity
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]CartItem, 0),
	}
}

// AddItem adds quantity of a product. If the product is already in the cart
// the quantities are merged and the originally captured price is kept.
func (c *Cart) AddItem(productID uuid.UUID, quantity int, price decimal.Decimal) error {
	if quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}
	if price.IsNegative() {
		return shared.NewValidationError("Price cannot be negative")
	}

	if idx := c.indexOf(productID); idx >= 0 {
		c.Items[idx].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     price,
		})
	}

	c.touch()
	return nil
}

// UpdateItemQuantity replaces the quantity of an existing line
func (c *Cart) UpdateItemQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}

	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}

	c.Items[idx].Quantity = quantity
	c.touch()
	return nil
}

// RemoveItem deletes the line for a product
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.touch()
	return nil
}

// Clear removes every line
func (c *Cart) Clear() {
	c.Items = make([]CartItem, 0)
	c.touch()
}

// FindItem returns the line for a product
func (c *Cart) FindItem(productID uuid.UUID) (CartItem, bool) {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.Items[idx], true
	}
	return CartItem{}, false
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity returns the number of units across all lines
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Total returns the sum of line subtotals at captured prices
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ProductIDs returns the product of every line, in cart order
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
