package handler

import (
	"github.com/gin-gonic/gin"
	reviewapp "github.com/shopfront/backend/internal/application/review"
)

// ReviewHandler handles product reviews
type ReviewHandler struct {
	BaseHandler
	reviewService *reviewapp.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *reviewapp.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// Create godoc
// @Summary      Review a purchased product
// @Description  The order must belong to the caller, be shipped or completed, and contain the product. One review per order line.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        request body reviewapp.CreateReviewRequest true "Review"
// @Success      201 {object} dto.Response{data=reviewapp.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req reviewapp.CreateReviewRequest
	if !h.BindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}

// ListForProduct godoc
// @Summary      Reviews of a product
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]reviewapp.ReviewResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reviews/product/{id} [get]
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "id", "product")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListForProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reviews)
}

// ListMine godoc
// @Summary      Own reviews
// @Tags         reviews
// @Produce      json
// @Success      200 {object} dto.Response{data=[]reviewapp.ReviewResponse}
// @Security     BearerAuth
// @Router       /reviews/user [get]
func (h *ReviewHandler) ListMine(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reviews)
}

// Reviewable godoc
// @Summary      Reviewable items of an order
// @Description  Lines of a fulfilled order the caller has not reviewed yet
// @Tags         reviews
// @Produce      json
// @Param        orderId path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]reviewapp.ReviewableItem}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reviews/order/{orderId} [get]
func (h *ReviewHandler) Reviewable(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	orderID, ok := h.ParamUUID(c, "orderId", "order")
	if !ok {
		return
	}

	items, err := h.reviewService.ReviewableItems(c.Request.Context(), user.ID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Delete godoc
// @Summary      Delete a review
// @Description  Allowed for the author and administrators
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	reviewID, ok := h.ParamUUID(c, "id", "review")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), reviewID, user.ID, user.IsAdmin()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Review removed")
}
