package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	UserID          uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Items           []OrderItemModel            `gorm:"foreignKey:OrderID;references:ID"`
	ShippingAddress valueobject.ShippingAddress `gorm:"type:jsonb;not null"`
	TotalAmount     decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	PaymentMethod   order.PaymentMethod         `gorm:"type:varchar(20);not null;default:'cod'"`
	Status          order.OrderStatus           `gorm:"type:varchar(20);not null;default:'pending';index"`
	IsPaid          bool                        `gorm:"not null;default:false"`
	PaidAt          *time.Time
	DeliveredAt     *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is an immutable order line snapshot
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Image     string          `gorm:"type:varchar(500)"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		UserID:            m.UserID,
		ShippingAddress:   m.ShippingAddress,
		TotalAmount:       m.TotalAmount,
		PaymentMethod:     m.PaymentMethod,
		Status:            m.Status,
		IsPaid:            m.IsPaid,
		PaidAt:            m.PaidAt,
		DeliveredAt:       m.DeliveredAt,
		Items:             make([]order.OrderItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		o.Items = append(o.Items, order.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.ShippingAddress = o.ShippingAddress
	m.TotalAmount = o.TotalAmount
	m.PaymentMethod = o.PaymentMethod
	m.Status = o.Status
	m.IsPaid = o.IsPaid
	m.PaidAt = o.PaidAt
	m.DeliveredAt = o.DeliveredAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:        item.ID,
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Position:  i,
		}
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
