package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gondola-insights-api/pkg/models"
	"gondola-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the store dashboard views. All endpoints
// take the same snapshot payload as /analyze; nothing is persisted
// between calls.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) bindSnapshot(c *gin.Context) (*models.AnalyzeRequest, bool) {
	var request models.AnalyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Falha ao interpretar a requisição: " + err.Error(),
		})
		return nil, false
	}
	return &request, true
}

// GetMetrics handles POST /api/v1/dashboard/metrics.
func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	request, ok := h.bindSnapshot(c)
	if !ok {
		return
	}

	metrics := h.dashboardService.GetDashboardMetrics(request.Products, request.Stock, request.Sales, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    metrics,
	})
}

// GetRuptureAlerts handles POST /api/v1/dashboard/alerts/rupture.
func (h *DashboardHandler) GetRuptureAlerts(c *gin.Context) {
	request, ok := h.bindSnapshot(c)
	if !ok {
		return
	}

	alerts := h.dashboardService.GetRuptureAlerts(request.Products, request.Stock, request.Sales, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    alerts,
		"count":   len(alerts),
	})
}

// GetExcessAlerts handles POST /api/v1/dashboard/alerts/excess.
func (h *DashboardHandler) GetExcessAlerts(c *gin.Context) {
	request, ok := h.bindSnapshot(c)
	if !ok {
		return
	}

	alerts := h.dashboardService.GetExcessStockAlerts(request.Products, request.Stock, request.Sales, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    alerts,
		"count":   len(alerts),
	})
}

// GetValidityAlerts handles POST /api/v1/dashboard/alerts/validity.
func (h *DashboardHandler) GetValidityAlerts(c *gin.Context) {
	request, ok := h.bindSnapshot(c)
	if !ok {
		return
	}

	alerts := h.dashboardService.GetValidityAlerts(request.Products, request.Stock, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    alerts,
		"count":   len(alerts),
	})
}

// GetSalesHistory handles POST /api/v1/dashboard/sales-history.
func (h *DashboardHandler) GetSalesHistory(c *gin.Context) {
	request, ok := h.bindSnapshot(c)
	if !ok {
		return
	}

	days := 30
	if daysStr := c.Query("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 && d <= 365 {
			days = d
		}
	}

	history := h.dashboardService.GetSalesHistory(request.Sales, days, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    history,
		"count":   len(history),
	})
}
