package planning

import (
	"math"
	"testing"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestCalculate_ZeroDemandNoOverride(t *testing.T) {
	policy := domain.ReorderPolicy{Method: domain.MethodMinMax, LeadTimeDays: intPtr(10)}

	c := Calculate(policy, 0, nil)

	if c.SafetyStock != 0 {
		t.Errorf("safety stock = %v, want 0", c.SafetyStock)
	}
	if c.ReorderPoint != 0 {
		t.Errorf("reorder point = %v, want 0", c.ReorderPoint)
	}
	if c.RecommendedQty != 0 {
		t.Errorf("recommended qty = %v, want 0", c.RecommendedQty)
	}
	if c.DaysOfSupply != NoDemandDaysOfSupply {
		t.Errorf("days of supply = %v, want sentinel %v", c.DaysOfSupply, NoDemandDaysOfSupply)
	}
	if c.Priority != domain.PriorityLow {
		t.Errorf("priority = %v, want low", c.Priority)
	}
}

func TestCalculate_SafetyStockOverrideWins(t *testing.T) {
	policy := domain.ReorderPolicy{
		Method:          domain.MethodSSDLT,
		SafetyStock:     floatPtr(42),
		ServiceLevelPct: floatPtr(95),
		LeadTimeDays:    intPtr(9),
	}

	c := Calculate(policy, 12, nil)

	if c.SafetyStock != 42 {
		t.Errorf("safety stock = %v, want explicit override 42", c.SafetyStock)
	}
}

func TestCalculate_ServiceLevelSafetyStock(t *testing.T) {
	policy := domain.ReorderPolicy{
		Method:          domain.MethodSSDLT,
		ServiceLevelPct: floatPtr(95),
		LeadTimeDays:    intPtr(9),
	}

	c := Calculate(policy, 10, nil)

	// ceil(0.95 * 10 * sqrt(9)) = ceil(28.5) = 29
	if c.SafetyStock != 29 {
		t.Errorf("safety stock = %v, want 29", c.SafetyStock)
	}
	if c.DemandDuringLeadTime != 90 {
		t.Errorf("DLT = %v, want 90", c.DemandDuringLeadTime)
	}
	if c.ReorderPoint != 119 {
		t.Errorf("reorder point = %v, want 119", c.ReorderPoint)
	}
}

func TestCalculate_DefaultLeadTime(t *testing.T) {
	c := Calculate(domain.ReorderPolicy{Method: domain.MethodMinMax}, 5, nil)

	if c.DemandDuringLeadTime != 5*DefaultLeadTimeDays {
		t.Errorf("DLT = %v, want %v", c.DemandDuringLeadTime, 5*DefaultLeadTimeDays)
	}
}

func TestCalculate_PolicyReorderPointOnlyRaisesFloor(t *testing.T) {
	tests := []struct {
		name     string
		override float64
		want     float64
	}{
		{"override above calculated", 100, 100},
		{"override below calculated is ignored", 10, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := domain.ReorderPolicy{
				Method:       domain.MethodMinMax,
				ReorderPoint: floatPtr(tt.override),
				LeadTimeDays: intPtr(7),
			}

			c := Calculate(policy, 10, nil)
			if c.ReorderPoint != tt.want {
				t.Errorf("reorder point = %v, want %v", c.ReorderPoint, tt.want)
			}
		})
	}
}

func TestCalculate_NoPlanWhenNetCoversReorderPoint(t *testing.T) {
	policy := domain.ReorderPolicy{Method: domain.MethodMinMax, LeadTimeDays: intPtr(7)}
	snapshot := &domain.InventoryPosition{OnHand: 100, Reserved: 10, OnOrder: 0}

	c := Calculate(policy, 10, snapshot)

	// ROP = 70, net = 90
	if c.RecommendedQty != 0 {
		t.Errorf("recommended qty = %v, want 0 when net >= reorder point", c.RecommendedQty)
	}
}

func TestCalculate_LotRoundingAndMOQ(t *testing.T) {
	tests := []struct {
		name        string
		lotMultiple float64
		moq         float64
		onHand      float64
		wantQty     float64
	}{
		{"lot rounding only", 25, 0, 40, 50},
		{"moq floor after rounding", 25, 60, 40, 60},
		{"no rounding when multiple is one", 1, 0, 40, 30},
		{"moq floor on small raw", 1, 50, 65, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := domain.ReorderPolicy{
				Method:       domain.MethodMinMax,
				LeadTimeDays: intPtr(7),
				LotMultiple:  tt.lotMultiple,
				MOQ:          tt.moq,
			}
			snapshot := &domain.InventoryPosition{OnHand: tt.onHand}

			c := Calculate(policy, 10, snapshot)
			if c.RecommendedQty != tt.wantQty {
				t.Errorf("recommended qty = %v, want %v", c.RecommendedQty, tt.wantQty)
			}
			if tt.lotMultiple > 1 && c.RecommendedQty > 0 && tt.moq == 0 {
				if math.Mod(c.RecommendedQty, tt.lotMultiple) != 0 {
					t.Errorf("recommended qty %v not a multiple of %v", c.RecommendedQty, tt.lotMultiple)
				}
			}
		})
	}
}

// Mirrors the worked replenishment example: minmax policy, lead time 7,
// MOQ 50, lot multiple 25, demand 10/day, 40 on hand.
func TestCalculate_EndToEnd(t *testing.T) {
	policy := domain.ReorderPolicy{
		Method:       domain.MethodMinMax,
		LeadTimeDays: intPtr(7),
		MOQ:          50,
		LotMultiple:  25,
	}
	snapshot := &domain.InventoryPosition{OnHand: 40, Reserved: 0, OnOrder: 0}

	c := Calculate(policy, 10, snapshot)

	if c.DemandDuringLeadTime != 70 {
		t.Errorf("DLT = %v, want 70", c.DemandDuringLeadTime)
	}
	if c.SafetyStock != 0 {
		t.Errorf("safety stock = %v, want 0", c.SafetyStock)
	}
	if c.ReorderPoint != 70 {
		t.Errorf("reorder point = %v, want 70", c.ReorderPoint)
	}
	if c.NetInventory != 40 {
		t.Errorf("net inventory = %v, want 40", c.NetInventory)
	}
	if c.RecommendedQty != 50 {
		t.Errorf("recommended qty = %v, want 50", c.RecommendedQty)
	}
	if c.DaysOfSupply != 4 {
		t.Errorf("days of supply = %v, want 4", c.DaysOfSupply)
	}
	if c.Priority != domain.PriorityHigh {
		t.Errorf("priority = %v, want high", c.Priority)
	}
}

func TestClassifyPriority_Boundaries(t *testing.T) {
	tests := []struct {
		days float64
		want domain.PlanPriority
	}{
		{0, domain.PriorityHigh},
		{14.99, domain.PriorityHigh},
		{15, domain.PriorityMedium},
		{29.99, domain.PriorityMedium},
		{30, domain.PriorityLow},
		{NoDemandDaysOfSupply, domain.PriorityLow},
	}

	for _, tt := range tests {
		if got := ClassifyPriority(tt.days); got != tt.want {
			t.Errorf("ClassifyPriority(%v) = %v, want %v", tt.days, got, tt.want)
		}
	}
}
