package persistence

import (
	"context"
	"time"

	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/report"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fulfilledStatuses are the order statuses that count as revenue
var fulfilledStatuses = []order.OrderStatus{order.OrderStatusShipped, order.OrderStatusCompleted}

// GormReportRepository implements ReportRepository with aggregate queries
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// CountProducts returns the number of products
func (r *GormReportRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Count(&count).Error
	return count, err
}

// CountUsers returns the number of users
func (r *GormReportRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error
	return count, err
}

// CountOrdersByStatus returns the number of orders per status
func (r *GormReportRepository) CountOrdersByStatus(ctx context.Context) ([]report.StatusCount, error) {
	var rows []report.StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// CountOrdersSince counts orders created at or after since
func (r *GormReportRepository) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// FulfilledRevenue sums the totals of shipped and completed orders
func (r *GormReportRepository) FulfilledRevenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("SUM(total_amount) AS total").
		Where("status IN ?", fulfilledStatuses).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}

// FulfilledUnitsSold sums the item quantities of shipped and completed orders
func (r *GormReportRepository) FulfilledUnitsSold(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", fulfilledStatuses).
		Scan(&total).Error
	return total, err
}

// FulfilledRevenueByMonth buckets fulfilled revenue by the month the order
// was placed. Bucketing happens in Go so the query stays portable between
// PostgreSQL and SQLite.
func (r *GormReportRepository) FulfilledRevenueByMonth(ctx context.Context, from, to time.Time) ([]report.MonthlyRevenue, error) {
	var rows []struct {
		CreatedAt   time.Time
		TotalAmount decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("created_at, total_amount").
		Where("status IN ? AND created_at >= ? AND created_at < ?", fulfilledStatuses, from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byMonth := make(map[int]decimal.Decimal)
	for _, row := range rows {
		month := int(row.CreatedAt.In(from.Location()).Month())
		byMonth[month] = byMonth[month].Add(row.TotalAmount)
	}

	result := make([]report.MonthlyRevenue, 0, len(byMonth))
	for month := 1; month <= 12; month++ {
		if revenue, ok := byMonth[month]; ok {
			result = append(result, report.MonthlyRevenue{Month: month, Revenue: revenue})
		}
	}
	return result, nil
}

// TopSellingProducts ranks products by quantity across non-cancelled orders
func (r *GormReportRepository) TopSellingProducts(ctx context.Context, limit int) ([]report.ProductSales, error) {
	var rows []report.ProductSales
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, SUM(order_items.quantity) AS total_quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.status <> ?", order.OrderStatusCancelled).
		Group("order_items.product_id").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Ensure GormReportRepository implements ReportRepository
var _ report.ReportRepository = (*GormReportRepository)(nil)
