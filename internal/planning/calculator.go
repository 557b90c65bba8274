package planning

import (
	"math"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
)

const (
	// DefaultLeadTimeDays is used when a policy carries no lead time.
	DefaultLeadTimeDays = 7

	// NoDemandDaysOfSupply is the sentinel coverage when demand is zero:
	// no measurable demand means the position is not urgent.
	NoDemandDaysOfSupply = 999

	highPriorityMaxDays   = 15
	mediumPriorityMaxDays = 30
)

// Calculate turns a policy, an estimated daily demand and the latest
// inventory snapshot into a full replenishment computation. A nil snapshot
// is treated as an all-zero position.
func Calculate(policy domain.ReorderPolicy, avgDailyDemand float64, snapshot *domain.InventoryPosition) Computation {
	c := Computation{AvgDailyDemand: avgDailyDemand}

	leadTime := DefaultLeadTimeDays
	if policy.LeadTimeDays != nil && *policy.LeadTimeDays >= 0 {
		leadTime = *policy.LeadTimeDays
	}

	// 1. Safety stock: explicit override wins; ss_dlt derives one from the
	// service level. service_level_pct/100 is a documented stand-in for an
	// inverse-normal service factor and must not be swapped out silently.
	switch {
	case policy.SafetyStock != nil:
		c.SafetyStock = *policy.SafetyStock
	case policy.Method == domain.MethodSSDLT && policy.ServiceLevelPct != nil && avgDailyDemand > 0:
		factor := *policy.ServiceLevelPct / 100
		c.SafetyStock = math.Ceil(factor * avgDailyDemand * math.Sqrt(float64(leadTime)))
	}

	// 2. Demand during lead time and reorder point. An explicit policy
	// reorder point can only raise the floor above the calculated minimum.
	c.DemandDuringLeadTime = avgDailyDemand * float64(leadTime)
	calculated := c.SafetyStock + c.DemandDuringLeadTime
	c.ReorderPoint = calculated
	if policy.ReorderPoint != nil && *policy.ReorderPoint > calculated {
		c.ReorderPoint = *policy.ReorderPoint
	}

	// 3. Net inventory from the latest snapshot
	if snapshot != nil {
		c.OnHand = snapshot.OnHand
		c.Reserved = snapshot.Reserved
		c.OnOrder = snapshot.OnOrder
		c.NetInventory = snapshot.Net()
	}

	// 4. Raw quantity, lot-multiple round-up, then MOQ floor
	raw := math.Max(0, c.ReorderPoint-c.NetInventory)
	if raw > 0 && policy.LotMultiple > 1 {
		raw = math.Ceil(raw/policy.LotMultiple) * policy.LotMultiple
	}
	if raw > 0 && policy.MOQ > 0 && raw < policy.MOQ {
		raw = policy.MOQ
	}
	c.RecommendedQty = raw

	// 5. Days of supply and priority
	if avgDailyDemand > 0 {
		c.DaysOfSupply = c.NetInventory / avgDailyDemand
	} else {
		c.DaysOfSupply = NoDemandDaysOfSupply
	}
	c.Priority = ClassifyPriority(c.DaysOfSupply)

	return c
}

// ClassifyPriority buckets days of supply into urgency tiers. Boundaries are
// half-open: exactly 15 is medium, exactly 30 is low.
func ClassifyPriority(daysOfSupply float64) domain.PlanPriority {
	switch {
	case daysOfSupply < highPriorityMaxDays:
		return domain.PriorityHigh
	case daysOfSupply < mediumPriorityMaxDays:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
