package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// reviewDetailRow is the scan target of the review listing joins
type reviewDetailRow struct {
	models.ReviewModel
	UserName    string
	ProductName string
}

// Create stores a review; the unique index guards the triple
func (r *GormReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := models.ReviewModelFromDomain(rv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrDuplicateReview
		}
		return err
	}
	return nil
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, shared.NewNotFoundError("Review", id))
	}
	return model.ToDomain(), nil
}

// Delete deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Review", id)
	}
	return nil
}

// Exists checks whether the (user, product, order) triple has a review
func (r *GormReviewRepository) Exists(ctx context.Context, userID, productID, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("user_id = ? AND product_id = ? AND order_id = ?", userID, productID, orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByProduct returns reviews of a product with reviewer names
func (r *GormReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]review.ReviewDetail, error) {
	return r.listDetails(ctx, "reviews.product_id = ?", productID)
}

// ListByUser returns reviews written by a user with product names
func (r *GormReviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]review.ReviewDetail, error) {
	return r.listDetails(ctx, "reviews.user_id = ?", userID)
}

func (r *GormReviewRepository) listDetails(ctx context.Context, cond string, arg uuid.UUID) ([]review.ReviewDetail, error) {
	var rows []reviewDetailRow
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.*, COALESCE(users.name, '') AS user_name, COALESCE(products.name, '') AS product_name").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Joins("LEFT JOIN products ON products.id = reviews.product_id").
		Where(cond, arg).
		Order("reviews.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	details := make([]review.ReviewDetail, len(rows))
	for i := range rows {
		details[i] = review.ReviewDetail{
			Review:      *rows[i].ToDomain(),
			UserName:    rows[i].UserName,
			ProductName: rows[i].ProductName,
		}
	}
	return details, nil
}

// ReviewedProductIDs returns the products the user already reviewed in an order
func (r *GormReviewRepository) ReviewedProductIDs(ctx context.Context, userID, orderID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("user_id = ? AND order_id = ?", userID, orderID).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// RatingSummaries returns the average rating and review count per product
func (r *GormReviewRepository) RatingSummaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]review.RatingSummary, error) {
	summaries := make(map[uuid.UUID]review.RatingSummary, len(productIDs))
	if len(productIDs) == 0 {
		return summaries, nil
	}

	var rows []struct {
		ProductID uuid.UUID
		Average   float64
		Count     int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Select("product_id, AVG(rating) AS average, COUNT(*) AS count").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		summaries[row.ProductID] = review.RatingSummary{
			ProductID: row.ProductID,
			Average:   row.Average,
			Count:     row.Count,
		}
	}
	return summaries, nil
}

// Ensure GormReviewRepository implements ReviewRepository
var _ review.ReviewRepository = (*GormReviewRepository)(nil)
