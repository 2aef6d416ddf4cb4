package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderItem is an immutable snapshot of a purchased product
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Image     string
	Quantity  int
	Price     decimal.Decimal
}

// Subtotal returns price times quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is the input used to snapshot a product into a new order
type OrderLine struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Quantity  int
	Price     decimal.Decimal
}

// StockAdjustment is one product stock change required by a transition
type StockAdjustment struct {
	ProductID uuid.UUID
	Quantity  int
	Effect    StockEffect
}

// Order is the aggregate root of a placed order. Items and TotalAmount are
// fixed at creation; only status and payment fields change afterwards.
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Items           []OrderItem
	ShippingAddress valueobject.ShippingAddress
	TotalAmount     decimal.Decimal
	PaymentMethod   PaymentMethod
	Status          OrderStatus
	IsPaid          bool
	PaidAt          *time.Time
	DeliveredAt     *time.Time
}

// NewOrder creates a pending, unpaid order from the given lines
func NewOrder(userID uuid.UUID, address valueobject.ShippingAddress, method PaymentMethod, lines []OrderLine) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("User is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Order must contain at least one item")
	}
	if address.IsEmpty() {
		return nil, shared.NewValidationError("Shipping address is required")
	}
	if method == "" {
		method = PaymentMethodCOD
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unsupported payment method: %s", method))
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ShippingAddress:   address,
		PaymentMethod:     method,
		Status:            OrderStatusPending,
		Items:             make([]OrderItem, 0, len(lines)),
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, shared.NewValidationError(fmt.Sprintf("Invalid quantity for %s", line.Name))
		}
		if line.Price.IsNegative() {
			return nil, shared.NewValidationError(fmt.Sprintf("Invalid price for %s", line.Name))
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, shared.NewValidationError(fmt.Sprintf("Duplicate product in order: %s", line.ProductID))
		}
		seen[line.ProductID] = struct{}{}

		item := OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
		total = total.Add(item.Subtotal())
		o.Items = append(o.Items, item)
	}
	o.TotalAmount = total

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// ChangeStatus moves the order to target on behalf of an administrator and
// returns the stock effect the caller must apply in the same transaction.
// Entering shipped marks the order paid and delivered.
func (o *Order) ChangeStatus(target OrderStatus, now time.Time) (StockEffect, error) {
	if !target.IsValid() {
		return StockEffectNone, shared.NewValidationError(fmt.Sprintf("Invalid order status: %s", target))
	}
	if !o.Status.CanAdminTransitionTo(target) {
		return StockEffectNone, shared.NewValidationError(
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}

	from := o.Status
	effect := stockEffectFor(from, target)

	o.Status = target
	if target == OrderStatusShipped {
		o.IsPaid = true
		o.PaidAt = &now
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, effect))
	if target == OrderStatusCancelled {
		o.AddDomainEvent(NewOrderCancelledEvent(o, false))
	}

	return effect, nil
}

// CancelByOwner cancels a pending order on behalf of the user who placed it
func (o *Order) CancelByOwner(userID uuid.UUID, now time.Time) (StockEffect, error) {
	if !o.IsOwnedBy(userID) {
		return StockEffectNone, shared.NewDomainError("FORBIDDEN", "Not authorized to cancel this order")
	}
	if !o.Status.CanOwnerCancel() {
		return StockEffectNone, shared.NewValidationError("Order can only be cancelled while pending")
	}

	from := o.Status
	o.Status = OrderStatusCancelled
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, StockEffectRestore))
	o.AddDomainEvent(NewOrderCancelledEvent(o, true))

	return StockEffectRestore, nil
}

// StockAdjustments expands an effect into one adjustment per line
func (o *Order) StockAdjustments(effect StockEffect) []StockAdjustment {
	if effect == StockEffectNone {
		return nil
	}
	adjustments := make([]StockAdjustment, len(o.Items))
	for i, item := range o.Items {
		adjustments[i] = StockAdjustment{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Effect:    effect,
		}
	}
	return adjustments
}

// IsOwnedBy reports whether the order belongs to the user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// FindItemByProduct returns the line for a product
func (o *Order) FindItemByProduct(productID uuid.UUID) (OrderItem, bool) {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return OrderItem{}, false
}

// ContainsProduct reports whether the product was purchased in this order
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	_, ok := o.FindItemByProduct(productID)
	return ok
}

// TotalQuantity returns the number of units across all lines
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// ComputedTotal sums the captured subtotals. It always equals TotalAmount.
func (o *Order) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// IsFulfilled returns true if the order was delivered
func (o *Order) IsFulfilled() bool {
	return o.Status.IsFulfilled()
}
