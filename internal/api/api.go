// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/api/handlers"
	"github.com/andresuchdata/supplyops/backend-go/internal/api/middleware"
	"github.com/andresuchdata/supplyops/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ReplenishmentService *service.ReplenishmentService
	ExceptionService     *service.ExceptionService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Actor-ID", "X-Org-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.ReplenishmentService != nil {
			replenishmentHandler := handlers.NewReplenishmentHandler(services.ReplenishmentService)
			replenishmentGroup := apiGroup.Group("/replenishment")
			{
				replenishmentGroup.POST("/run", replenishmentHandler.RunBatch)
				replenishmentGroup.GET("/plans", replenishmentHandler.GetPlans)
				replenishmentGroup.GET("/plans/summary", replenishmentHandler.GetSummary)
			}
		}

		if services.ExceptionService != nil {
			exceptionHandler := handlers.NewExceptionHandler(services.ExceptionService)

			shipmentGroup := apiGroup.Group("/shipments")
			{
				shipmentGroup.POST("/:id/evaluate", exceptionHandler.EvaluateShipment)
				shipmentGroup.POST("/:id/costs", exceptionHandler.RecordCost)
			}

			exceptionGroup := apiGroup.Group("/exceptions")
			{
				exceptionGroup.GET("", exceptionHandler.GetExceptions)
				exceptionGroup.POST("/:id/resolve", exceptionHandler.ResolveException)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
