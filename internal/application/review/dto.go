package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopspring/decimal"
)

// CreateReviewRequest reviews one product of one of the caller's orders
type CreateReviewRequest struct {
	OrderID   uuid.UUID `json:"order_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment" binding:"max=2000"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	OrderID     uuid.UUID `json:"order_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReviewableItem is an order line the caller may still review
type ReviewableItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ToReviewResponse converts a domain review to a response
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		OrderID:   r.OrderID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// ToReviewResponses converts review details, keeping their order
func ToReviewResponses(details []review.ReviewDetail) []ReviewResponse {
	responses := make([]ReviewResponse, len(details))
	for i := range details {
		responses[i] = ToReviewResponse(&details[i].Review)
		responses[i].UserName = details[i].UserName
		responses[i].ProductName = details[i].ProductName
	}
	return responses
}
