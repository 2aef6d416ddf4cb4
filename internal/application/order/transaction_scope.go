package order

import (
	"context"

	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories an
// order touches. Everything done through the repositories handed to fn is
// committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one underlying database transaction.
//
//   - Products: stock is only ever changed through the conditional
//     StockAdjuster methods so concurrent orders cannot oversell.
//   - Orders: the order row is version checked on Save.
//   - Carts: the cart is emptied in the same transaction that places the order.
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Orders() order.OrderRepository
	Carts() cart.CartRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// This is useful for unit tests with mocked repositories.
type NoOpTransactionScope struct {
	products catalog.ProductRepository
	orders   order.OrderRepository
	carts    cart.CartRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	products catalog.ProductRepository,
	orders order.OrderRepository,
	carts cart.CartRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		products: products,
		orders:   orders,
		carts:    carts,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Products returns the product repository.
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.products
}

// Orders returns the order repository.
func (s *NoOpTransactionScope) Orders() order.OrderRepository {
	return s.orders
}

// Carts returns the cart repository.
func (s *NoOpTransactionScope) Carts() cart.CartRepository {
	return s.carts
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
