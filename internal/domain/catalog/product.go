package catalog

import (
	"strings"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxProductImages is the number of images a product may carry
const MaxProductImages = 5

// Product represents a sellable item in the catalog.
// It is the aggregate root for product-related operations. Version is
// advanced by the repository on every successful save.
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Images      []string
	IsFeatured  bool
}

// NewProduct creates a new product
func NewProduct(name, description, category string, price decimal.Decimal, stock int) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateStock(stock); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Description:       strings.TrimSpace(description),
		Price:             price,
		Stock:             stock,
		Category:          strings.TrimSpace(category),
		Images:            make([]string, 0),
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description, category string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.Description = strings.TrimSpace(description)
	p.Category = strings.TrimSpace(category)
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPrice sets the selling price. Open carts and placed orders keep the
// price they captured.
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if p.Price.Equal(price) {
		return nil
	}

	oldPrice := p.Price
	p.Price = price
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetStock overwrites the stock level (admin edit)
func (p *Product) SetStock(stock int) error {
	if err := validateStock(stock); err != nil {
		return err
	}
	if p.Stock == stock {
		return nil
	}

	delta := stock - p.Stock
	p.Stock = stock
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewStockAdjustedEvent(p.ID, delta, stock, StockReasonManual))

	return nil
}

// SetFeatured marks or unmarks the product as featured
func (p *Product) SetFeatured(featured bool) {
	if p.IsFeatured == featured {
		return
	}
	p.IsFeatured = featured
	p.UpdatedAt = time.Now()
}

// SetImages replaces the product image list
func (p *Product) SetImages(images []string) error {
	if len(images) > MaxProductImages {
		return shared.NewValidationError("A product can have at most 5 images")
	}

	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img != "" {
			cleaned = append(cleaned, img)
		}
	}

	p.Images = cleaned
	p.UpdatedAt = time.Now()

	return nil
}

// HasStock reports whether the product can cover the requested quantity
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// PrimaryImage returns the first image or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// MarkDeleted records the deletion event before the repository removes the row
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// Validation functions

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("Price cannot be negative")
	}
	return nil
}

func validateStock(stock int) error {
	if stock < 0 {
		return shared.NewValidationError("Stock cannot be negative")
	}
	return nil
}

func validateCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return shared.NewValidationError("Category cannot be empty")
	}
	if len(category) > 100 {
		return shared.NewValidationError("Category cannot exceed 100 characters")
	}
	return nil
}
