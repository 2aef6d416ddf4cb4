package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// InvoiceRenderer turns an order into a printable PDF document
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, o *order.Order, customer *identity.User) ([]byte, error)
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// OrderService orchestrates the order lifecycle. Every operation that
// changes more than one row runs inside a single transaction and publishes
// its domain events only after the transaction committed.
type OrderService struct {
	txScope        TransactionScope
	orderRepo      order.OrderRepository
	productRepo    catalog.ProductRepository
	cartRepo       cart.CartRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	invoices       InvoiceRenderer
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	txScope TransactionScope,
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	cartRepo cart.CartRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		txScope:     txScope,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher used after each committed write
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetInvoiceRenderer enables PDF invoices
func (s *OrderService) SetInvoiceRenderer(renderer InvoiceRenderer) {
	s.invoices = renderer
}

// Create places an order from the user's cart.
//
// All lines are checked against live stock before anything is written so the
// caller gets a precise message. The writes then run in one transaction where
// each product is decremented conditionally; a line that lost a race aborts
// the whole order and nothing is decremented.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	address, err := valueobject.NewShippingAddress(
		req.ShippingAddress.Name,
		req.ShippingAddress.Email,
		req.ShippingAddress.Phone,
		req.ShippingAddress.Address,
		req.ShippingAddress.Note,
	)
	if err != nil {
		return nil, shared.NewValidationError(capitalize(err.Error()))
	}
	method := order.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))

	userCart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if userCart == nil || userCart.IsEmpty() {
		return nil, shared.NewValidationError("Cart is empty")
	}

	lines, err := s.buildLines(ctx, userCart)
	if err != nil {
		return nil, err
	}

	newOrder, err := order.NewOrder(userID, address, method, lines)
	if err != nil {
		return nil, err
	}

	var stockEvents []shared.DomainEvent
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		stockEvents = stockEvents[:0]
		for _, line := range lines {
			if err := repos.Products().DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError(shared.ErrInsufficientStock.Code,
						fmt.Sprintf("Product %s no longer has %d units in stock", line.Name, line.Quantity))
				}
				return err
			}
			stockEvents = append(stockEvents,
				catalog.NewStockAdjustedEvent(line.ProductID, -line.Quantity, -1, catalog.StockReasonOrderPlaced))
		}

		if err := repos.Orders().Create(ctx, newOrder); err != nil {
			return err
		}

		userCart.Clear()
		return repos.Carts().Save(ctx, userCart)
	})
	if err != nil {
		s.logger.Warn("Order creation rolled back",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", newOrder.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", newOrder.TotalAmount.StringFixed(2)),
		zap.Int("items", len(newOrder.Items)))

	s.publish(ctx, append(newOrder.PullDomainEvents(), stockEvents...))

	resp := ToOrderResponse(newOrder)
	return &resp, nil
}

// buildLines snapshots the cart into order lines, validating existence and stock
func (s *OrderService) buildLines(ctx context.Context, c *cart.Cart) ([]order.OrderLine, error) {
	products, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]order.OrderLine, 0, len(c.Items))
	for _, item := range c.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError("Product", item.ProductID)
		}
		if !p.HasStock(item.Quantity) {
			return nil, shared.NewDomainError(shared.ErrInsufficientStock.Code,
				fmt.Sprintf("Product %s only has %d left in stock", p.Name, p.Stock))
		}
		lines = append(lines, order.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.PrimaryImage(),
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines, nil
}

// ChangeStatus moves an order to a new status on behalf of an administrator,
// applying the stock effect of the transition in the same transaction.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	target := order.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))

	var updated *order.Order
	var stockEvents []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		effect, err := o.ChangeStatus(target, s.now())
		if err != nil {
			return err
		}

		stockEvents, err = s.applyStockEffect(ctx, repos.Products(), o, effect)
		if err != nil {
			return err
		}

		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(updated.Status)))

	s.publish(ctx, append(updated.PullDomainEvents(), stockEvents...))

	resp := ToOrderResponse(updated)
	return &resp, nil
}

// Cancel cancels a pending order on behalf of its owner and restores stock
func (s *OrderService) Cancel(ctx context.Context, orderID, userID uuid.UUID) (*OrderResponse, error) {
	var cancelled *order.Order
	var stockEvents []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		effect, err := o.CancelByOwner(userID, s.now())
		if err != nil {
			return err
		}

		stockEvents, err = s.applyStockEffect(ctx, repos.Products(), o, effect)
		if err != nil {
			return err
		}

		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled by owner",
		zap.String("order_id", orderID.String()),
		zap.String("user_id", userID.String()))

	s.publish(ctx, append(cancelled.PullDomainEvents(), stockEvents...))

	resp := ToOrderResponse(cancelled)
	return &resp, nil
}

// applyStockEffect adjusts stock for every line of the order. Products that
// were deleted since the order was placed are skipped.
func (s *OrderService) applyStockEffect(
	ctx context.Context,
	products catalog.StockAdjuster,
	o *order.Order,
	effect order.StockEffect,
) ([]shared.DomainEvent, error) {
	adjustments := o.StockAdjustments(effect)
	events := make([]shared.DomainEvent, 0, len(adjustments))

	for _, adj := range adjustments {
		var (
			err    error
			delta  int
			reason catalog.StockReason
		)
		switch adj.Effect {
		case order.StockEffectRestore:
			err = products.IncrementStock(ctx, adj.ProductID, adj.Quantity)
			delta, reason = adj.Quantity, catalog.StockReasonRestored
		case order.StockEffectRededuct:
			err = products.DeductStockClamped(ctx, adj.ProductID, adj.Quantity)
			delta, reason = -adj.Quantity, catalog.StockReasonRededucted
		default:
			continue
		}

		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Skipping stock adjustment for missing product",
					zap.String("order_id", o.ID.String()),
					zap.String("product_id", adj.ProductID.String()))
				continue
			}
			return nil, err
		}
		events = append(events, catalog.NewStockAdjustedEvent(adj.ProductID, delta, -1, reason))
	}
	return events, nil
}

// Get returns an order visible to the actor: its owner or any administrator
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderResponse, error) {
	o, err := s.findVisible(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *OrderService) findVisible(ctx context.Context, orderID uuid.UUID, actor Actor) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !o.IsOwnedBy(actor.UserID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Not authorized to view this order")
	}
	return o, nil
}

// ListMine returns the user's orders, newest first
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// ListAll returns one page of all orders for administrators
func (s *OrderService) ListAll(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	filter := order.OrderFilter{Page: page, PageSize: DefaultPageSize}
	if req.Status != "" {
		status := order.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError(fmt.Sprintf("Invalid order status: %s", req.Status))
		}
		filter.Status = &status
	}

	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	paged := shared.NewPaginated(ToOrderResponses(orders), total, page, DefaultPageSize)
	return &OrderListResult{
		Orders:     paged.Items,
		Page:       paged.Page,
		PageSize:   paged.PageSize,
		Pages:      paged.TotalPages,
		TotalCount: paged.Total,
	}, nil
}

// Recent returns the newest orders for the dashboard feed
func (s *OrderService) Recent(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindRecent(ctx, RecentOrdersLimit)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// Invoice renders the order as a PDF for its owner or an administrator
func (s *OrderService) Invoice(ctx context.Context, orderID uuid.UUID, actor Actor) ([]byte, error) {
	if s.invoices == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoice rendering is not enabled")
	}

	o, err := s.findVisible(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}

	customer, err := s.userRepo.FindByID(ctx, o.UserID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		customer = nil
	}

	pdf, err := s.invoices.RenderInvoice(ctx, o, customer)
	if err != nil {
		s.logger.Error("Failed to render invoice",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return pdf, nil
}

func (s *OrderService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.Error(err))
	}
}

func capitalize(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
