package review

import (
	"context"

	"github.com/google/uuid"
)

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	// Create stores a review. A duplicate (user, product, order) triple
	// yields shared.ErrDuplicateReview.
	Create(ctx context.Context, review *Review) error

	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// Exists checks whether the triple already has a review
	Exists(ctx context.Context, userID, productID, orderID uuid.UUID) (bool, error)

	// ListByProduct returns reviews of a product, newest first
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDetail, error)

	// ListByUser returns reviews written by a user, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ReviewDetail, error)

	// ReviewedProductIDs returns the products the user already reviewed in an order
	ReviewedProductIDs(ctx context.Context, userID, orderID uuid.UUID) ([]uuid.UUID, error)

	// RatingSummaries returns average rating and count for the given products.
	// Products without reviews are absent from the map.
	RatingSummaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]RatingSummary, error)
}
