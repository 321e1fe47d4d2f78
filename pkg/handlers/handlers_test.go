package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gondola-insights-api/pkg/models"
	"gondola-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	riskService := services.NewRiskService()
	insightsService := services.NewInsightsService()
	dashboardService := services.NewDashboardService()

	analyzeHandler := NewAnalyzeHandler(riskService, insightsService)
	uploadHandler := NewUploadHandler(riskService, insightsService, 10)
	dashboardHandler := NewDashboardHandler(dashboardService)

	router.GET("/health", HealthCheck)
	router.POST("/api/v1/analyze", analyzeHandler.Analyze)
	router.POST("/api/v1/analyze/upload", uploadHandler.AnalyzeUpload)
	router.POST("/api/v1/dashboard/metrics", dashboardHandler.GetMetrics)
	router.POST("/api/v1/dashboard/alerts/validity", dashboardHandler.GetValidityAlerts)
	router.POST("/api/v1/dashboard/sales-history", dashboardHandler.GetSalesHistory)

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest("POST", path, bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()

	req, err := http.NewRequest("GET", "/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "Gondola Insights API")
}

func TestAnalyzeEndToEnd(t *testing.T) {
	router := newTestRouter()

	// One product expiring in 5 days with 3 units on hand: the
	// snapshot flags low stock and the expiry pass suggests a 50%
	// markdown that lands below cost.
	expiry := time.Now().AddDate(0, 0, 5).Format("2006-01-02")
	request := models.AnalyzeRequest{
		Products: []models.Product{
			{ID: "P1", Name: "Leite Integral", Price: 10, Cost: 6, Category: "laticínios", NextExpiryDate: expiry},
		},
		Stock: []models.StockSnapshot{
			{ProductID: "P1", Quantity: 3, Timestamp: time.Now().Format(time.RFC3339)},
		},
		Sales: []models.DailySale{},
	}

	w := postJSON(t, router, "/api/v1/analyze", request)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.AnalyzeResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	assert.True(t, response.Success)
	assert.NotEmpty(t, response.ReportID)
	assert.Len(t, response.Metrics, 2)

	assert.Equal(t, models.RiskTypeStockout, response.Metrics[0].Type)
	assert.Equal(t, models.SeverityHigh, response.Metrics[0].Severity)

	validity := response.Metrics[1]
	assert.Equal(t, models.RiskTypeValidity, validity.Type)
	assert.Equal(t, models.SeverityHigh, validity.Severity)
	if assert.NotNil(t, validity.Days) {
		assert.Equal(t, 5, *validity.Days)
	}

	assert.Len(t, response.Insights.Recommendations, 1)
	rec := response.Insights.Recommendations[0]
	assert.Equal(t, "P1", rec.ProductID)
	assert.Equal(t, 0.5, rec.Discount)
	assert.Contains(t, rec.Suggestion, "50% OFF")
	assert.Contains(t, rec.Suggestion, "R$ 5.00")
	assert.Contains(t, rec.Suggestion, "Venda abaixo do custo")
}

func TestAnalyzeEmptyInput(t *testing.T) {
	router := newTestRouter()

	request := models.AnalyzeRequest{
		Products: []models.Product{},
		Stock:    []models.StockSnapshot{},
		Sales:    []models.DailySale{},
	}

	w := postJSON(t, router, "/api/v1/analyze", request)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.AnalyzeResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	assert.Empty(t, response.Metrics)
	assert.Equal(t, "Found 0 risks. Everything looks good.", response.Insights.Summary)
	assert.Empty(t, response.Insights.Recommendations)
}

func TestAnalyzeMalformedBody(t *testing.T) {
	router := newTestRouter()

	req, err := http.NewRequest("POST", "/api/v1/analyze", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestDashboardMetricsEndpoint(t *testing.T) {
	router := newTestRouter()

	request := models.AnalyzeRequest{
		Products: []models.Product{{ID: "P1", Name: "Café"}},
		Stock:    []models.StockSnapshot{{ProductID: "P1", Quantity: 40, Timestamp: "t1"}},
		Sales: []models.DailySale{
			{ProductID: "P1", Date: time.Now().AddDate(0, 0, -1).Format("2006-01-02"), Quantity: 3, TotalAmount: 30},
		},
	}

	w := postJSON(t, router, "/api/v1/dashboard/metrics", request)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"success\":true")
	assert.Contains(t, w.Body.String(), "\"totalProducts\":1")
	assert.Contains(t, w.Body.String(), "\"totalRevenue\":30")
}

func TestDashboardValidityEndpoint(t *testing.T) {
	router := newTestRouter()

	request := models.AnalyzeRequest{
		Products: []models.Product{
			{ID: "P1", Name: "Iogurte", NextExpiryDate: time.Now().AddDate(0, 0, 3).Format("2006-01-02")},
		},
		Stock: []models.StockSnapshot{{ProductID: "P1", Quantity: 5, Timestamp: "t1"}},
	}

	w := postJSON(t, router, "/api/v1/dashboard/alerts/validity", request)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"count\":1")
	assert.Contains(t, w.Body.String(), "Vence em")
}

func TestDashboardSalesHistoryEndpoint(t *testing.T) {
	router := newTestRouter()

	date := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
	request := models.AnalyzeRequest{
		Sales: []models.DailySale{
			{ProductID: "P1", Date: date, Quantity: 3, TotalAmount: 30},
			{ProductID: "P2", Date: date, Quantity: 1, TotalAmount: 12.5},
		},
	}

	w := postJSON(t, router, "/api/v1/dashboard/sales-history?days=7", request)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"count\":1")
	assert.Contains(t, w.Body.String(), "\"total\":42.5")
}
