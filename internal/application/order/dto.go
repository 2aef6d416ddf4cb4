package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// DefaultPageSize is the page size of the admin order list
const DefaultPageSize = 10

// RecentOrdersLimit is the number of orders shown in the dashboard feed
const RecentOrdersLimit = 5

// ShippingAddressRequest is the delivery address submitted at checkout
type ShippingAddressRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"required,max=50"`
	Address string `json:"address" binding:"required,max=500"`
	Note    string `json:"note" binding:"max=1000"`
}

// CreateOrderRequest places an order from the caller's cart
type CreateOrderRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"omitempty,oneof=cod banking"`
}

// UpdateStatusRequest moves an order to another status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipping shipped completed cancelled"`
}

// ListOrdersRequest selects one page of the admin order list
type ListOrdersRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Status string `form:"status" binding:"omitempty,oneof=pending processing shipping shipped completed cancelled"`
}

// OrderItemResponse is one purchased line
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ShippingAddressResponse mirrors ShippingAddressRequest
type ShippingAddressResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	Items           []OrderItemResponse     `json:"items"`
	ShippingAddress ShippingAddressResponse `json:"shipping_address"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	PaymentMethod   string                  `json:"payment_method"`
	Status          string                  `json:"order_status"`
	IsPaid          bool                    `json:"is_paid"`
	PaidAt          *time.Time              `json:"paid_at,omitempty"`
	DeliveredAt     *time.Time              `json:"delivered_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Version         int                     `json:"version"`
}

// OrderListResult is one page of orders
type OrderListResult struct {
	Orders     []OrderResponse `json:"orders"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Pages      int             `json:"pages"`
	TotalCount int64           `json:"total_orders"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal(),
		}
	}

	addr := o.ShippingAddress
	return OrderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: ShippingAddressResponse{
			Name:    addr.Name(),
			Email:   addr.Email(),
			Phone:   addr.Phone(),
			Address: addr.Address(),
			Note:    addr.Note(),
		},
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Version:       o.Version,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
