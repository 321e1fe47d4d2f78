package main

import (
	"log"
	"net/http"

	config "gondola-insights-api/configs"
	"gondola-insights-api/pkg/handlers"
	"gondola-insights-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.LoadConfig()

	r := gin.Default()

	// Services
	monitoringService := services.NewMonitoringService()
	riskService := services.NewRiskService()
	insightsService := services.NewInsightsService()
	dashboardService := services.NewDashboardService()

	// Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(riskService, insightsService)
	uploadHandler := handlers.NewUploadHandler(riskService, insightsService, cfg.MaxUploadMB)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// Middleware
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.Default())

	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" || apiKey == "default_secret_key" {
				c.Next()
				return
			}
			providedKey := c.GetHeader("X-API-KEY")
			if providedKey != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	r.GET("/health", handlers.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		// Risk analysis pipeline
		v1.POST("/analyze", analyzeHandler.Analyze)
		v1.POST("/analyze/upload", uploadHandler.AnalyzeUpload)

		// Store dashboard over a submitted snapshot
		dashboard := v1.Group("/dashboard")
		{
			dashboard.POST("/metrics", dashboardHandler.GetMetrics)
			dashboard.POST("/alerts/rupture", dashboardHandler.GetRuptureAlerts)
			dashboard.POST("/alerts/excess", dashboardHandler.GetExcessAlerts)
			dashboard.POST("/alerts/validity", dashboardHandler.GetValidityAlerts)
			dashboard.POST("/sales-history", dashboardHandler.GetSalesHistory)
		}

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	log.Printf("Starting Gondola Insights API server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
