// backend-go/internal/domain/models.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor identifies the caller of a core operation. Authentication itself
// happens upstream; the core only checks that the claimed scope matches.
type Actor struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`
}

// ReorderPolicy defines how a single (item, location) pair is replenished.
// Exactly one policy exists per pair.
type ReorderPolicy struct {
	ID               int64         `json:"id" db:"id"`
	OrgID            string        `json:"org_id" db:"org_id"`
	ItemID           string        `json:"item_id" db:"item_id"`
	LocationID       string        `json:"location_id" db:"location_id"`
	Method           ReorderMethod `json:"method" db:"method"`
	SafetyStock      *float64      `json:"safety_stock,omitempty" db:"safety_stock"`
	ReorderPoint     *float64      `json:"reorder_point,omitempty" db:"reorder_point"`
	ReorderQty       float64       `json:"reorder_qty" db:"reorder_qty"`
	LeadTimeDays     *int          `json:"lead_time_days,omitempty" db:"lead_time_days"`
	ReviewPeriodDays *int          `json:"review_period_days,omitempty" db:"review_period_days"`
	ServiceLevelPct  *float64      `json:"service_level_pct,omitempty" db:"service_level_pct"`
	MOQ              float64       `json:"moq" db:"moq"`
	LotMultiple      float64       `json:"lot_multiple" db:"lot_multiple"`
	Active           bool          `json:"active" db:"active"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// ForecastPoint is one point of a demand forecast series.
type ForecastPoint struct {
	ItemID      string    `json:"item_id" db:"item_id"`
	LocationID  string    `json:"location_id" db:"location_id"`
	HorizonDate time.Time `json:"horizon_date" db:"horizon_date"`
	ForecastQty float64   `json:"forecast_qty" db:"forecast_qty"`
}

// Transaction is an inventory movement event. Only issue-typed transactions
// feed the demand fallback; the full set is kept for seeding and reporting.
type Transaction struct {
	ID         int64           `json:"id" db:"id"`
	ItemID     string          `json:"item_id" db:"item_id"`
	LocationID string          `json:"location_id" db:"location_id"`
	Type       TransactionType `json:"type" db:"type"`
	Qty        float64         `json:"qty" db:"qty"`
	OccurredAt time.Time       `json:"occurred_at" db:"occurred_at"`
}

// InventoryPosition is a dated stock snapshot for an (item, location) pair.
type InventoryPosition struct {
	ItemID     string    `json:"item_id" db:"item_id"`
	LocationID string    `json:"location_id" db:"location_id"`
	OnHand     float64   `json:"on_hand" db:"on_hand"`
	Reserved   float64   `json:"reserved" db:"reserved"`
	OnOrder    float64   `json:"on_order" db:"on_order"`
	Backorder  float64   `json:"backorder" db:"backorder"`
	AsOf       time.Time `json:"as_of" db:"as_of"`
}

// Net returns the net inventory position: on hand minus reserved plus on order.
func (p InventoryPosition) Net() float64 {
	return p.OnHand - p.Reserved + p.OnOrder
}

// PlanReason captures every intermediate number behind a recommendation so
// the plan is auditable without re-running the engine.
type PlanReason struct {
	AvgDailyDemand       float64 `json:"avg_daily_demand"`
	SafetyStock          float64 `json:"safety_stock"`
	DemandDuringLeadTime float64 `json:"demand_during_lead_time"`
	ReorderPoint         float64 `json:"reorder_point"`
	NetInventory         float64 `json:"net_inventory"`
	OnHand               float64 `json:"on_hand"`
	Reserved             float64 `json:"reserved"`
	OnOrder              float64 `json:"on_order"`
	DaysOfSupply         float64 `json:"days_of_supply"`
}

// Value implements driver.Valuer so the reason lands in a jsonb column.
func (r PlanReason) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (r *PlanReason) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = PlanReason{}
		return nil
	default:
		return fmt.Errorf("unsupported plan reason type %T", src)
	}
}

// ReplenishmentPlan is the derived purchase recommendation for one
// (item, location) pair. Re-running the batch overwrites the prior plan for
// the same pair; plan lifecycle beyond creation belongs to downstream actions.
type ReplenishmentPlan struct {
	ID             int64        `json:"id" db:"id"`
	OrgID          string       `json:"org_id" db:"org_id"`
	ItemID         string       `json:"item_id" db:"item_id"`
	LocationID     string       `json:"location_id" db:"location_id"`
	RecommendedQty float64      `json:"recommended_qty" db:"recommended_qty"`
	Priority       PlanPriority `json:"priority" db:"priority"`
	Status         PlanStatus   `json:"status" db:"status"`
	Reason         PlanReason   `json:"reason" db:"reason"`
	RunID          uuid.UUID    `json:"run_id" db:"run_id"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// Shipment is the fully-loaded view the exception evaluator works on.
type Shipment struct {
	ID         int64      `json:"id" db:"id"`
	OrgID      string     `json:"org_id" db:"org_id"`
	Reference  string     `json:"reference" db:"reference"`
	PlannedETA *time.Time `json:"planned_eta,omitempty" db:"planned_eta"`
	ActualETA  *time.Time `json:"actual_eta,omitempty" db:"actual_eta"`
	Milestones []Milestone `json:"milestones"`
	Costs      []CostLine  `json:"costs"`
	Booking    *Booking    `json:"booking,omitempty"`
}

// Milestone is a planned vs actual checkpoint on a shipment.
type Milestone struct {
	ID          int64      `json:"id" db:"id"`
	ShipmentID  int64      `json:"shipment_id" db:"shipment_id"`
	Type        string     `json:"type" db:"type"`
	PlannedDate *time.Time `json:"planned_date,omitempty" db:"planned_date"`
	ActualDate  *time.Time `json:"actual_date,omitempty" db:"actual_date"`
}

// CostLine is one planned/actual cost pair on a shipment.
type CostLine struct {
	ID            int64           `json:"id" db:"id"`
	ShipmentID    int64           `json:"shipment_id" db:"shipment_id"`
	CostType      string          `json:"cost_type" db:"cost_type"`
	PlannedAmount decimal.Decimal `json:"planned_amount" db:"planned_amount"`
	ActualAmount  decimal.Decimal `json:"actual_amount" db:"actual_amount"`
	VariancePct   float64         `json:"variance_pct" db:"variance_pct"`
}

// Booking carries the cargo cutoff and vessel sailing dates.
type Booking struct {
	ShipmentID  int64      `json:"shipment_id" db:"shipment_id"`
	CutoffDate  *time.Time `json:"cutoff_date,omitempty" db:"cutoff_date"`
	SailingDate *time.Time `json:"sailing_date,omitempty" db:"sailing_date"`
}

// Exception is an operational alert. Shipment exceptions reference a
// shipment; inventory exceptions reference an (item, location) pair. Amounts
// and severity are fixed at creation; only resolution mutates the record.
type Exception struct {
	ID             int64         `json:"id" db:"id"`
	OrgID          string        `json:"org_id" db:"org_id"`
	ShipmentID     *int64        `json:"shipment_id,omitempty" db:"shipment_id"`
	ItemID         *string       `json:"item_id,omitempty" db:"item_id"`
	LocationID     *string       `json:"location_id,omitempty" db:"location_id"`
	Type           ExceptionType `json:"exception_type" db:"exception_type"`
	Severity       Severity      `json:"severity" db:"severity"`
	Message        string        `json:"message" db:"message"`
	ThresholdValue float64       `json:"threshold_value" db:"threshold_value"`
	ActualValue    float64       `json:"actual_value" db:"actual_value"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// Open reports whether the exception is still unresolved.
func (e Exception) Open() bool {
	return e.ResolvedAt == nil
}

// AuditEntry is a fire-and-forget trace of a core mutation.
type AuditEntry struct {
	Actor      string      `json:"actor"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Action     string      `json:"action"`
	Before     interface{} `json:"before,omitempty"`
	After      interface{} `json:"after,omitempty"`
}

// PlanSummary is one row of the priority breakdown for a scope.
type PlanSummary struct {
	Priority PlanPriority `json:"priority" db:"priority"`
	Count    int          `json:"count" db:"count"`
}
