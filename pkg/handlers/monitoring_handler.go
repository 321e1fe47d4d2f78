package handlers

import (
	"net/http"

	"gondola-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// MonitoringHandler exposes the aggregated request log.
type MonitoringHandler struct {
	Service *services.MonitoringService
}

// NewMonitoringHandler creates a new MonitoringHandler.
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		Service: service,
	}
}

// GetLogs handles GET /api/v1/monitoring/logs.
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	periodStr := c.DefaultQuery("period", "24h")
	var hours int

	switch periodStr {
	case "1h":
		hours = 1
	case "24h":
		hours = 24
	case "7d":
		hours = 24 * 7
	default:
		hours = 24
	}

	data := h.Service.GetMonitoringData(hours)
	c.JSON(http.StatusOK, data)
}
