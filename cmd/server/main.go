// backend-go/cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/api"
	"github.com/andresuchdata/supplyops/backend-go/internal/cache"
	"github.com/andresuchdata/supplyops/backend-go/internal/config"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/supplyops/backend-go/internal/service"
	"github.com/andresuchdata/supplyops/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize cache; a broken cache config must not keep the API down
	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Plan cache unavailable, falling back to no-op cache")
		planCache = cache.NewNoopPlanCache()
	}

	// Initialize repositories
	policyRepo := postgres.NewPolicyRepository(db.DB)
	demandRepo := postgres.NewDemandRepository(db.DB)
	snapshotRepo := postgres.NewSnapshotRepository(db.DB)
	planRepo := postgres.NewPlanRepository(db.DB)
	shipmentRepo := postgres.NewShipmentRepository(db)
	exceptionRepo := postgres.NewExceptionRepository(db.DB)
	auditRepo := postgres.NewAuditRepository(db.DB)

	// Initialize services
	replenishmentService := service.NewReplenishmentService(
		policyRepo,
		demandRepo,
		snapshotRepo,
		planRepo,
		exceptionRepo,
		auditRepo,
		planCache,
		cfg.Planning.HorizonDays,
	)
	exceptionService := service.NewExceptionService(shipmentRepo, exceptionRepo, auditRepo)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		ReplenishmentService: replenishmentService,
		ExceptionService:     exceptionService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
