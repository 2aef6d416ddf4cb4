package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/shopfront/backend/internal/application/order"
	reportapp "github.com/shopfront/backend/internal/application/report"
)

// OrderHandler handles checkout, order history and order administration
type OrderHandler struct {
	BaseHandler
	orderService     *orderapp.OrderService
	dashboardService *reportapp.DashboardService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService, dashboardService *reportapp.DashboardService) *OrderHandler {
	return &OrderHandler{
		orderService:     orderService,
		dashboardService: dashboardService,
	}
}

// Create godoc
// @Summary      Place an order
// @Description  Turns the caller's cart into a pending order, deducting stock atomically
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.CreateOrderRequest true "Shipping address and payment method"
// @Success      201 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req orderapp.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// MyOrders godoc
// @Summary      Own orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Security     BearerAuth
// @Router       /orders/myorders [get]
func (h *OrderHandler) MyOrders(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetByID godoc
// @Summary      Get an order
// @Description  Visible to its owner and to administrators
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	actor, id, ok := h.actorAndOrder(c)
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel godoc
// @Summary      Cancel own order
// @Description  Only pending orders can be cancelled by their owner; stock is restored
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/cancel/{id} [put]
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, id, ok := h.actorAndOrder(c)
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), id, actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Invoice godoc
// @Summary      Download invoice
// @Tags         orders
// @Produce      application/pdf
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {file} binary
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	actor, id, ok := h.actorAndOrder(c)
	if !ok {
		return
	}

	pdf, err := h.orderService.Invoice(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ListAll godoc
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        status query string false "Order status" Enums(pending, processing, shipping, shipped, completed, cancelled)
// @Success      200 {object} dto.Response{data=orderapp.OrderListResult}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/all [get]
func (h *OrderHandler) ListAll(c *gin.Context) {
	var req orderapp.ListOrdersRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.orderService.ListAll(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, result.TotalCount, result.Page, result.PageSize)
}

// Recent godoc
// @Summary      Recent orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Security     BearerAuth
// @Router       /orders/recent [get]
func (h *OrderHandler) Recent(c *gin.Context) {
	orders, err := h.orderService.Recent(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// UpdateStatus godoc
// @Summary      Change order status
// @Description  Moving to cancelled restores stock, leaving cancelled deducts it again, shipped marks the order paid
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "order")
	if !ok {
		return
	}

	var req orderapp.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Stats godoc
// @Summary      Order statistics
// @Description  Units sold and revenue of shipped and completed orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=report.OrderStats}
// @Security     BearerAuth
// @Router       /orders/stats [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.OrderStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Analytics godoc
// @Summary      Order analytics
// @Description  Order counts per status, revenue and orders placed this month
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=report.OrderAnalytics}
// @Security     BearerAuth
// @Router       /orders/analytics [get]
func (h *OrderHandler) Analytics(c *gin.Context) {
	analytics, err := h.dashboardService.Analytics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analytics)
}

func (h *OrderHandler) actorAndOrder(c *gin.Context) (orderapp.Actor, uuid.UUID, bool) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return orderapp.Actor{}, uuid.Nil, false
	}
	id, ok := h.ParamUUID(c, "id", "order")
	if !ok {
		return orderapp.Actor{}, uuid.Nil, false
	}
	return orderapp.Actor{UserID: user.ID, IsAdmin: user.IsAdmin()}, id, true
}
