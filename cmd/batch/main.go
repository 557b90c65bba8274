// backend-go/cmd/batch/main.go
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/andresuchdata/supplyops/backend-go/internal/cache"
	"github.com/andresuchdata/supplyops/backend-go/internal/config"
	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/supplyops/backend-go/internal/service"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// The batch runner is an internal-only binary. Schedulers (cron, Airflow)
// hit it directly without going through the public gateway, so callers are
// trusted and the run executes under a per-scope system actor.
func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize Database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		log.Printf("Plan cache unavailable, continuing without it: %v", err)
		planCache = cache.NewNoopPlanCache()
	}

	// Initialize repositories and the batch service
	replenishmentService := service.NewReplenishmentService(
		postgres.NewPolicyRepository(db.DB),
		postgres.NewDemandRepository(db.DB),
		postgres.NewSnapshotRepository(db.DB),
		postgres.NewPlanRepository(db.DB),
		postgres.NewExceptionRepository(db.DB),
		postgres.NewAuditRepository(db.DB),
		planCache,
		cfg.Planning.HorizonDays,
	)

	exceptionService := service.NewExceptionService(
		postgres.NewShipmentRepository(db),
		postgres.NewExceptionRepository(db.DB),
		postgres.NewAuditRepository(db.DB),
	)

	// Create router
	r := mux.NewRouter()

	r.HandleFunc("/internal/replenishment/run", func(w http.ResponseWriter, req *http.Request) {
		scope := strings.TrimSpace(req.URL.Query().Get("scope"))
		if scope == "" {
			http.Error(w, "scope query parameter is required", http.StatusBadRequest)
			return
		}

		actor := domain.Actor{ID: "batch-runner", OrgID: scope}
		result, err := replenishmentService.Run(req.Context(), actor, scope)
		if err != nil {
			log.Printf("Batch run failed for scope %s: %v", scope, err)
			http.Error(w, "batch run failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Printf("Failed to write run result: %v", err)
		}
	}).Methods("POST")

	r.HandleFunc("/internal/exceptions/sweep", func(w http.ResponseWriter, req *http.Request) {
		scope := strings.TrimSpace(req.URL.Query().Get("scope"))
		if scope == "" {
			http.Error(w, "scope query parameter is required", http.StatusBadRequest)
			return
		}

		actor := domain.Actor{ID: "batch-runner", OrgID: scope}
		result, err := exceptionService.Sweep(req.Context(), actor, scope)
		if err != nil {
			log.Printf("Exception sweep failed for scope %s: %v", scope, err)
			http.Error(w, "exception sweep failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Printf("Failed to write sweep result: %v", err)
		}
	}).Methods("POST")

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	port := os.Getenv("BATCH_PORT")
	if port == "" {
		port = "8090"
	}
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Batch runner starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
