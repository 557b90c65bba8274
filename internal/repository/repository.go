// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
)

// PolicyRepository reads reorder policies.
type PolicyRepository interface {
	ListActive(ctx context.Context, orgID string) ([]domain.ReorderPolicy, error)
}

// DemandRepository reads the two demand signal sources.
type DemandRepository interface {
	ListForecast(ctx context.Context, itemID, locationID string, horizonDays int) ([]domain.ForecastPoint, error)
	ListIssueQuantities(ctx context.Context, itemID, locationID string, windowDays int) ([]float64, error)
}

// SnapshotRepository reads inventory positions.
type SnapshotRepository interface {
	// Latest returns nil, nil when no snapshot exists for the pair.
	Latest(ctx context.Context, itemID, locationID string) (*domain.InventoryPosition, error)
}

// PlanFilter narrows plan listings.
type PlanFilter struct {
	OrgID       string   `json:"org_id"`
	ItemIDs     []string `json:"item_ids"`
	LocationIDs []string `json:"location_ids"`
	Priorities  []string `json:"priorities"`
	Statuses    []string `json:"statuses"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

// PlanRepository persists replenishment plans.
type PlanRepository interface {
	// Upsert overwrites any prior plan for the same (item, location) pair
	// and returns the plan ID.
	Upsert(ctx context.Context, plan *domain.ReplenishmentPlan) (int64, error)
	List(ctx context.Context, filter PlanFilter) ([]domain.ReplenishmentPlan, int, error)
	Summary(ctx context.Context, orgID string) ([]domain.PlanSummary, error)
}

// ShipmentRepository reads shipments with their relations and writes costs.
type ShipmentRepository interface {
	// GetWithRelations returns nil, nil when the shipment does not exist.
	// Milestones, costs and booking are always loaded.
	GetWithRelations(ctx context.Context, id int64) (*domain.Shipment, error)
	ListIDs(ctx context.Context, orgID string) ([]int64, error)
	// RecordCost upserts one cost line and returns every cost line for the
	// shipment as of the same write, so variance totals never see a torn
	// update.
	RecordCost(ctx context.Context, line *domain.CostLine) ([]domain.CostLine, error)
}

// ExceptionFilter narrows exception listings.
type ExceptionFilter struct {
	OrgID      string   `json:"org_id"`
	ShipmentID *int64   `json:"shipment_id"`
	Types      []string `json:"types"`
	OnlyOpen   bool     `json:"only_open"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// ExceptionRepository persists exceptions. CreateIfAbsent must be atomic with
// respect to the at-most-one-open-per-(ref, type) invariant so concurrent
// evaluations cannot double-create.
type ExceptionRepository interface {
	// CreateIfAbsent inserts the exception unless an open one already exists
	// for the same reference and type; it returns the surviving row and
	// whether this call created it.
	CreateIfAbsent(ctx context.Context, e *domain.Exception) (*domain.Exception, bool, error)
	Get(ctx context.Context, id int64) (*domain.Exception, error)
	List(ctx context.Context, filter ExceptionFilter) ([]domain.Exception, int, error)
	Resolve(ctx context.Context, id int64, at time.Time) error
}

// AuditRepository records mutation traces. Callers treat it fire-and-forget.
type AuditRepository interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}
