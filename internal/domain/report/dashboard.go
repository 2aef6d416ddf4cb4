package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultRating is reported for products that have not been reviewed yet
const DefaultRating = 4.5

// DashboardStats is the headline read model of the admin dashboard
type DashboardStats struct {
	TotalProducts int64           `json:"total_products"`
	TotalUsers    int64           `json:"total_users"`
	TotalOrders   int64           `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// MonthlyRevenue is the fulfilled revenue of one calendar month
type MonthlyRevenue struct {
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// OrderStats summarizes fulfilled sales
type OrderStats struct {
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// OrderAnalytics breaks orders down by status
type OrderAnalytics struct {
	TotalOrders        int64           `json:"total_orders"`
	PendingOrders      int64           `json:"pending_orders"`
	ProcessingOrders   int64           `json:"processing_orders"`
	ShippingOrders     int64           `json:"shipping_orders"`
	DeliveredOrders    int64           `json:"delivered_orders"`
	CompletedOrders    int64           `json:"completed_orders"`
	CancelledOrders    int64           `json:"cancelled_orders"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	NewOrdersThisMonth int64           `json:"new_orders_this_month"`
}

// ProductSales is the sold quantity of one product across non-cancelled orders
type ProductSales struct {
	ProductID     uuid.UUID
	TotalQuantity int64
}

// TopProduct is a best seller enriched with rating information
type TopProduct struct {
	ProductID   uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock_count"`
	Rating      float64         `json:"rating"`
	ReviewCount int64           `json:"review_count"`
	TotalSold   int64           `json:"total_sold"`
}

// StatusCount is the number of orders in one status
type StatusCount struct {
	Status string
	Count  int64
}

// ReportRepository runs the aggregate queries behind the dashboard.
// Revenue figures only include fulfilled (shipped or completed) orders.
type ReportRepository interface {
	// CountProducts returns the number of products
	CountProducts(ctx context.Context) (int64, error)

	// CountUsers returns the number of users
	CountUsers(ctx context.Context) (int64, error)

	// CountOrdersByStatus returns order counts grouped by status
	CountOrdersByStatus(ctx context.Context) ([]StatusCount, error)

	// CountOrdersSince counts orders created at or after since
	CountOrdersSince(ctx context.Context, since time.Time) (int64, error)

	// FulfilledRevenue sums total amounts of fulfilled orders
	FulfilledRevenue(ctx context.Context) (decimal.Decimal, error)

	// FulfilledUnitsSold sums item quantities of fulfilled orders
	FulfilledUnitsSold(ctx context.Context) (int64, error)

	// FulfilledRevenueByMonth sums fulfilled revenue by creation month in [from, to).
	// Months without revenue are omitted.
	FulfilledRevenueByMonth(ctx context.Context, from, to time.Time) ([]MonthlyRevenue, error)

	// TopSellingProducts returns the products with the highest sold quantity
	TopSellingProducts(ctx context.Context, limit int) ([]ProductSales, error)
}

// FillYear expands sparse monthly figures into all twelve months
func FillYear(months []MonthlyRevenue) []MonthlyRevenue {
	full := make([]MonthlyRevenue, 12)
	for i := range full {
		full[i] = MonthlyRevenue{Month: i + 1, Revenue: decimal.Zero}
	}
	for _, m := range months {
		if m.Month >= 1 && m.Month <= 12 {
			full[m.Month-1].Revenue = full[m.Month-1].Revenue.Add(m.Revenue)
		}
	}
	return full
}

// YearBounds returns the first instant of the year of t and of the next year
func YearBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(1, 0, 0)
}

// MonthStart returns the first instant of the month of t
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
