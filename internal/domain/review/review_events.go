package review

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const (
	AggregateTypeReview    = "Review"
	EventTypeReviewCreated = "ReviewCreated"
	EventTypeReviewDeleted = "ReviewDeleted"
)

// ReviewCreatedEvent is published after a review is stored
type ReviewCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	OrderID   uuid.UUID `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
}

// NewReviewCreatedEvent creates a new ReviewCreatedEvent
func NewReviewCreatedEvent(r *Review) *ReviewCreatedEvent {
	return &ReviewCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewCreated, AggregateTypeReview, r.ID),
		ProductID:       r.ProductID,
		OrderID:         r.OrderID,
		UserID:          r.UserID,
		Rating:          r.Rating,
	}
}

// ReviewDeletedEvent is published after a review is removed
type ReviewDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewReviewDeletedEvent creates a new ReviewDeletedEvent
func NewReviewDeletedEvent(r *Review) *ReviewDeletedEvent {
	return &ReviewDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewDeleted, AggregateTypeReview, r.ID),
		ProductID:       r.ProductID,
	}
}
