package planning

import "github.com/andresuchdata/supplyops/backend-go/internal/domain"

// Computation holds every intermediate number produced while turning a
// policy into a recommendation. It backs the plan's reason payload.
type Computation struct {
	AvgDailyDemand       float64
	SafetyStock          float64
	DemandDuringLeadTime float64
	ReorderPoint         float64
	NetInventory         float64
	OnHand               float64
	Reserved             float64
	OnOrder              float64
	DaysOfSupply         float64
	RecommendedQty       float64
	Priority             domain.PlanPriority
}

// Reason converts the computation into the persisted reason payload.
func (c Computation) Reason() domain.PlanReason {
	return domain.PlanReason{
		AvgDailyDemand:       c.AvgDailyDemand,
		SafetyStock:          c.SafetyStock,
		DemandDuringLeadTime: c.DemandDuringLeadTime,
		ReorderPoint:         c.ReorderPoint,
		NetInventory:         c.NetInventory,
		OnHand:               c.OnHand,
		Reserved:             c.Reserved,
		OnOrder:              c.OnOrder,
		DaysOfSupply:         c.DaysOfSupply,
	}
}
