package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"gondola-insights-api/pkg/models"
	"gondola-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalyzeHandler runs the risk scan plus insight generation pipeline
// over a submitted snapshot.
type AnalyzeHandler struct {
	riskService     *services.RiskService
	insightsService *services.InsightsService
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(riskService *services.RiskService, insightsService *services.InsightsService) *AnalyzeHandler {
	return &AnalyzeHandler{
		riskService:     riskService,
		insightsService: insightsService,
	}
}

// Analyze handles POST /api/v1/analyze. The three collections may all
// be empty; that is a valid snapshot and yields an empty report.
// Any panic inside the pipeline surfaces as a single opaque failure
// with no partial result.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var request models.AnalyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Falha ao interpretar a requisição: " + err.Error(),
		})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[análise] erro inesperado no pipeline: %v", r)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   fmt.Sprintf("%v", r),
			})
		}
	}()

	metrics := h.riskService.Scan(request.Products, request.Stock, request.Sales, time.Now())
	insights := h.insightsService.Generate(metrics)

	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Success:  true,
		ReportID: uuid.NewString(),
		Metrics:  metrics,
		Insights: insights,
	})
}
