package review

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
)

// Review is a rating left by a user for one product of one order.
// At most one review exists per (user, product, order).
type Review struct {
	shared.BaseEntity
	UserID    uuid.UUID
	ProductID uuid.UUID
	OrderID   uuid.UUID
	Rating    int
	Comment   string
}

// NewReview validates and creates a review
func NewReview(userID, productID, orderID uuid.UUID, rating int, comment string) (*Review, error) {
	if userID == uuid.Nil || productID == uuid.Nil || orderID == uuid.Nil {
		return nil, shared.NewValidationError("User, product and order are required")
	}
	if rating < MinRating || rating > MaxRating {
		return nil, shared.NewValidationError("Rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > MaxCommentLength {
		return nil, shared.NewValidationError("Comment cannot exceed 2000 characters")
	}

	return &Review{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		OrderID:    orderID,
		Rating:     rating,
		Comment:    comment,
	}, nil
}

// CanBeDeletedBy reports whether the actor may delete the review
func (r *Review) CanBeDeletedBy(actorID uuid.UUID, isAdmin bool) bool {
	return isAdmin || r.UserID == actorID
}

// ReviewDetail is a review joined with the reviewer and product names
type ReviewDetail struct {
	Review
	UserName    string
	ProductName string
}

// RatingSummary aggregates the ratings of one product
type RatingSummary struct {
	ProductID uuid.UUID
	Average   float64
	Count     int64
}
