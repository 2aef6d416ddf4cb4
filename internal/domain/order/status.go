package order

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipping,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipping,
		OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsFulfilled reports whether the goods have been delivered. Fulfilled
// orders count towards revenue and may be reviewed.
func (s OrderStatus) IsFulfilled() bool {
	return s == OrderStatusShipped || s == OrderStatusCompleted
}

// CanAdminTransitionTo checks whether an administrator may move an order
// from s to target. Admins may move in any direction, including out of
// cancelled, except that completed is only reachable from shipped.
func (s OrderStatus) CanAdminTransitionTo(target OrderStatus) bool {
	if !target.IsValid() || s == target {
		return false
	}
	if target == OrderStatusCompleted {
		return s == OrderStatusShipped
	}
	return true
}

// CanOwnerCancel reports whether the ordering user may still cancel
func (s OrderStatus) CanOwnerCancel() bool {
	return s == OrderStatusPending
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodBanking PaymentMethod = "banking"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodBanking
}

// StockEffect describes what a status transition does to product stock
type StockEffect string

const (
	// StockEffectNone leaves stock untouched
	StockEffectNone StockEffect = "none"
	// StockEffectRestore returns every line quantity to stock
	StockEffectRestore StockEffect = "restore"
	// StockEffectRededuct takes every line quantity again, floored at zero
	StockEffectRededuct StockEffect = "rededuct"
)

// stockEffectFor derives the stock effect of moving from one status to another.
// Stock is taken when the order is placed, so leaving the cancelled state
// takes it again and entering it gives it back.
func stockEffectFor(from, to OrderStatus) StockEffect {
	switch {
	case from != OrderStatusCancelled && to == OrderStatusCancelled:
		return StockEffectRestore
	case from == OrderStatusCancelled && to != OrderStatusCancelled:
		return StockEffectRededuct
	}
	return StockEffectNone
}
