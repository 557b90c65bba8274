package exception

import (
	"fmt"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
)

// Fixed rule thresholds. The aggregate cost-variance thresholds are shared
// with the shipment-level aggregator in the service layer.
const (
	ETASlipHours     = 24.0
	ETASlipHighHours = 48.0

	LineVariancePct     = 8.0
	LineVarianceHighPct = 15.0

	AggregateVariancePct     = 8.0
	AggregateVarianceHighPct = 15.0

	FreeTimeLowHours  = 48.0
	FreeTimeHighHours = 24.0
)

// Candidate is a rule firing that has not yet been deduplicated or persisted.
type Candidate struct {
	Type           domain.ExceptionType
	Severity       domain.Severity
	Message        string
	ThresholdValue float64
	ActualValue    float64
}

// Evaluate inspects a fully-loaded shipment against the fixed thresholds and
// returns every firing rule, unfiltered. The rules are independent; all of
// them may fire for one shipment.
func Evaluate(s domain.Shipment) []Candidate {
	var candidates []Candidate

	// ETA slip on the shipment itself
	if s.PlannedETA != nil && s.ActualETA != nil {
		hours := s.ActualETA.Sub(*s.PlannedETA).Hours()
		if hours > ETASlipHours {
			severity := domain.SeverityMedium
			if hours > ETASlipHighHours {
				severity = domain.SeverityHigh
			}
			candidates = append(candidates, Candidate{
				Type:           domain.ExceptionETASlip,
				Severity:       severity,
				Message:        fmt.Sprintf("shipment ETA slipped %.1f hours past plan", hours),
				ThresholdValue: ETASlipHours,
				ActualValue:    hours,
			})
		}
	}

	// Same slip rule applied independently to every dated milestone
	for _, m := range s.Milestones {
		if m.PlannedDate == nil || m.ActualDate == nil {
			continue
		}
		hours := m.ActualDate.Sub(*m.PlannedDate).Hours()
		if hours <= ETASlipHours {
			continue
		}
		severity := domain.SeverityMedium
		if hours > ETASlipHighHours {
			severity = domain.SeverityHigh
		}
		candidates = append(candidates, Candidate{
			Type:           domain.ExceptionETASlip,
			Severity:       severity,
			Message:        fmt.Sprintf("milestone %s slipped %.1f hours past plan", m.Type, hours),
			ThresholdValue: ETASlipHours,
			ActualValue:    hours,
		})
	}

	// Per-line cost variance
	for _, line := range s.Costs {
		variance := line.VariancePct
		abs := variance
		if abs < 0 {
			abs = -abs
		}
		if abs <= LineVariancePct {
			continue
		}
		severity := domain.SeverityMedium
		if abs > LineVarianceHighPct {
			severity = domain.SeverityHigh
		}
		candidates = append(candidates, Candidate{
			Type:           domain.ExceptionCostVariance,
			Severity:       severity,
			Message:        fmt.Sprintf("cost line %s variance %.1f%% exceeds threshold", line.CostType, variance),
			ThresholdValue: LineVariancePct,
			ActualValue:    variance,
		})
	}

	// Free time between cargo cutoff and vessel sailing
	if s.Booking != nil && s.Booking.CutoffDate != nil && s.Booking.SailingDate != nil {
		hours := s.Booking.SailingDate.Sub(*s.Booking.CutoffDate).Hours()
		if hours < FreeTimeLowHours {
			severity := domain.SeverityMedium
			if hours < FreeTimeHighHours {
				severity = domain.SeverityHigh
			}
			candidates = append(candidates, Candidate{
				Type:           domain.ExceptionFreeTimeLow,
				Severity:       severity,
				Message:        fmt.Sprintf("only %.1f hours between cargo cutoff and sailing", hours),
				ThresholdValue: FreeTimeLowHours,
				ActualValue:    hours,
			})
		}
	}

	return candidates
}
