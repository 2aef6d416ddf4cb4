package review

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReviewService handles product reviews written against fulfilled orders
type ReviewService struct {
	reviewRepo     review.ReviewRepository
	orderRepo      order.OrderRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviewRepo review.ReviewRepository,
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReviewService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create stores a review for one product of one of the user's orders.
// The order must belong to the user, contain the product and be shipped or
// completed; each (user, product, order) may be reviewed once.
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error) {
	o, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.ContainsProduct(req.ProductID) {
		return nil, shared.NewValidationError("Product is not part of this order")
	}
	if !o.IsFulfilled() {
		return nil, shared.NewValidationError("Products can only be reviewed after the order has been delivered")
	}

	exists, err := s.reviewRepo.Exists(ctx, userID, req.ProductID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrDuplicateReview
	}

	r, err := review.NewReview(userID, req.ProductID, req.OrderID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	// the unique index settles a race between two identical submissions
	if err := s.reviewRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("Review created",
		zap.String("review_id", r.ID.String()),
		zap.String("product_id", r.ProductID.String()),
		zap.Int("rating", r.Rating))

	s.publish(ctx, review.NewReviewCreatedEvent(r))

	response := ToReviewResponse(r)
	return &response, nil
}

// ListForProduct returns the reviews of a product, newest first
func (s *ReviewService) ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	details, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToReviewResponses(details), nil
}

// ListForUser returns the reviews written by a user, newest first
func (s *ReviewService) ListForUser(ctx context.Context, userID uuid.UUID) ([]ReviewResponse, error) {
	details, err := s.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToReviewResponses(details), nil
}

// ReviewableItems lists the lines of a fulfilled order the user has not
// reviewed yet. Orders that are not fulfilled have nothing to review.
func (s *ReviewService) ReviewableItems(ctx context.Context, userID, orderID uuid.UUID) ([]ReviewableItem, error) {
	o, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	items := make([]ReviewableItem, 0, len(o.Items))
	if !o.IsFulfilled() {
		return items, nil
	}

	reviewed, err := s.reviewRepo.ReviewedProductIDs(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	for _, item := range o.Items {
		if slices.Contains(reviewed, item.ProductID) {
			continue
		}
		items = append(items, ReviewableItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return items, nil
}

// Delete removes a review. Only its author or an administrator may do so.
func (s *ReviewService) Delete(ctx context.Context, reviewID, actorID uuid.UUID, isAdmin bool) error {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !r.CanBeDeletedBy(actorID, isAdmin) {
		return shared.NewDomainError(shared.ErrForbidden.Code, "Not authorized to delete this review")
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}

	s.logger.Info("Review deleted",
		zap.String("review_id", reviewID.String()),
		zap.String("actor_id", actorID.String()))

	s.publish(ctx, review.NewReviewDeletedEvent(r))
	return nil
}

func (s *ReviewService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Order", orderID)
		}
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, shared.NewDomainError(shared.ErrForbidden.Code, "You can only review products from your own orders")
	}
	return o, nil
}

func (s *ReviewService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish review events", zap.Error(err))
	}
}
