package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/shopfront/backend/internal/application/report"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// DashboardHandler serves the admin dashboard aggregates
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Stats godoc
// @Summary      Dashboard totals
// @Description  Product, user and order counts with revenue of shipped and completed orders
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=report.DashboardStats}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// MonthlyRevenue godoc
// @Summary      Monthly revenue
// @Description  Revenue of shipped and completed orders for each month of a year, by order creation month
// @Tags         dashboard
// @Produce      json
// @Param        year query int false "Year, defaults to the current one"
// @Success      200 {object} dto.Response{data=[]report.MonthlyRevenue}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/monthly-revenue [get]
func (h *DashboardHandler) MonthlyRevenue(c *gin.Context) {
	year, err := queryInt(c, "year")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid year")
		return
	}

	months, err := h.dashboardService.MonthlyRevenue(c.Request.Context(), year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, months)
}
