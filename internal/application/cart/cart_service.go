package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartService manages the shopping cart of the authenticated user
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartRepo cart.CartRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetCart returns the user's cart, creating an empty one on first access
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// AddItem adds quantity units of a product. Adding a product already in the
// cart merges the quantities and keeps the price captured on first add.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, shared.NewValidationError("Quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	// only the units being added are checked against stock; checkout
	// verifies the merged quantity
	if !product.HasStock(req.Quantity) {
		return nil, insufficientStock(product)
	}

	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.AddItem(product.ID, req.Quantity, product.Price); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Debug("Cart item added",
		zap.String("user_id", userID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", req.Quantity))

	return s.respond(ctx, c)
}

// UpdateItem replaces the quantity of a line; zero removes it
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	if req.Quantity == nil {
		return nil, shared.NewValidationError("Quantity is required")
	}
	quantity := *req.Quantity
	if quantity < 0 {
		return nil, shared.NewValidationError("Quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := c.FindItem(productID); !ok {
		return nil, cart.ErrItemNotFound
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.HasStock(quantity) {
		return nil, insufficientStock(product)
	}

	if err := c.UpdateItemQuantity(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// RemoveItem deletes the line of a product
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, error) {
	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(productID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return s.respond(ctx, c)
	}
	c.Clear()
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

func (s *CartService) loadOrCreate(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c = cart.NewCart(userID)
	if err := s.cartRepo.Create(ctx, c); err != nil {
		// another request created it first
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.cartRepo.FindByUserID(ctx, userID)
		}
		return nil, err
	}
	return c, nil
}

func (s *CartService) respond(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	products := make(map[uuid.UUID]*catalog.Product, len(c.Items))
	if !c.IsEmpty() {
		found, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
		if err != nil {
			return nil, err
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}
	response := ToCartResponse(c, products)
	return &response, nil
}

func insufficientStock(p *catalog.Product) error {
	return shared.NewDomainError(shared.ErrInsufficientStock.Code,
		fmt.Sprintf("Product %s only has %d left in stock", p.Name, p.Stock))
}
