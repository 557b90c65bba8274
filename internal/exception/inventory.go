package exception

import (
	"fmt"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/planning"
)

// Inventory-side thresholds.
const (
	OverstockDaysOfSupply = 90.0
)

// EvaluateInventory inspects a policy's computed position for inventory
// alerts. It runs after planning so it can reuse the engine's numbers.
func EvaluateInventory(policy domain.ReorderPolicy, c planning.Computation) []Candidate {
	var candidates []Candidate

	if c.OnHand < 0 {
		candidates = append(candidates, Candidate{
			Type:           domain.ExceptionNegativeOnHand,
			Severity:       domain.SeverityHigh,
			Message:        fmt.Sprintf("on-hand for %s at %s is negative (%.1f)", policy.ItemID, policy.LocationID, c.OnHand),
			ThresholdValue: 0,
			ActualValue:    c.OnHand,
		})
	}

	leadTime := float64(planning.DefaultLeadTimeDays)
	if policy.LeadTimeDays != nil && *policy.LeadTimeDays >= 0 {
		leadTime = float64(*policy.LeadTimeDays)
	}

	// Coverage shorter than the replenishment lead time means the position
	// cannot recover before running dry.
	if c.AvgDailyDemand > 0 && c.DaysOfSupply < leadTime {
		severity := domain.SeverityMedium
		if c.DaysOfSupply < leadTime/2 {
			severity = domain.SeverityHigh
		}
		candidates = append(candidates, Candidate{
			Type:           domain.ExceptionStockoutRisk,
			Severity:       severity,
			Message:        fmt.Sprintf("%s at %s covers %.1f days against a %.0f day lead time", policy.ItemID, policy.LocationID, c.DaysOfSupply, leadTime),
			ThresholdValue: leadTime,
			ActualValue:    c.DaysOfSupply,
		})
	}

	if c.AvgDailyDemand > 0 && c.DaysOfSupply > OverstockDaysOfSupply {
		candidates = append(candidates, Candidate{
			Type:           domain.ExceptionOverstock,
			Severity:       domain.SeverityLow,
			Message:        fmt.Sprintf("%s at %s holds %.1f days of supply", policy.ItemID, policy.LocationID, c.DaysOfSupply),
			ThresholdValue: OverstockDaysOfSupply,
			ActualValue:    c.DaysOfSupply,
		})
	}

	return candidates
}
