package exception

import (
	"testing"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

func timePtr(t time.Time) *time.Time { return &t }

func findCandidate(cs []Candidate, t domain.ExceptionType) (Candidate, bool) {
	for _, c := range cs {
		if c.Type == t {
			return c, true
		}
	}
	return Candidate{}, false
}

// Mirrors the worked ETA example: planned 2024-01-10T00:00Z, actual
// 2024-01-12T06:00Z, a 54 hour slip, severity high.
func TestEvaluate_ETASlip(t *testing.T) {
	shipment := domain.Shipment{
		PlannedETA: timePtr(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
		ActualETA:  timePtr(time.Date(2024, 1, 12, 6, 0, 0, 0, time.UTC)),
	}

	candidates := Evaluate(shipment)

	c, ok := findCandidate(candidates, domain.ExceptionETASlip)
	if !ok {
		t.Fatal("expected an eta_slip candidate")
	}
	if c.ActualValue != 54 {
		t.Errorf("hours = %v, want 54", c.ActualValue)
	}
	if c.Severity != domain.SeverityHigh {
		t.Errorf("severity = %v, want high", c.Severity)
	}
}

func TestEvaluate_ETASlipSeverityBoundaries(t *testing.T) {
	planned := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hours    float64
		fires    bool
		severity domain.Severity
	}{
		{"below threshold", 24, false, ""},
		{"just over threshold", 25, true, domain.SeverityMedium},
		{"exactly 48 stays medium", 48, true, domain.SeverityMedium},
		{"over 48 is high", 49, true, domain.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := planned.Add(time.Duration(tt.hours * float64(time.Hour)))
			shipment := domain.Shipment{PlannedETA: &planned, ActualETA: &actual}

			candidates := Evaluate(shipment)
			c, ok := findCandidate(candidates, domain.ExceptionETASlip)
			if ok != tt.fires {
				t.Fatalf("fired = %v, want %v", ok, tt.fires)
			}
			if ok && c.Severity != tt.severity {
				t.Errorf("severity = %v, want %v", c.Severity, tt.severity)
			}
		})
	}
}

func TestEvaluate_MissingETAsNeverFire(t *testing.T) {
	actual := time.Now()
	shipments := []domain.Shipment{
		{},
		{PlannedETA: &actual},
		{ActualETA: &actual},
	}

	for i, s := range shipments {
		if got := Evaluate(s); len(got) != 0 {
			t.Errorf("shipment %d: got %d candidates, want 0", i, len(got))
		}
	}
}

func TestEvaluate_MilestoneSlipNamesMilestone(t *testing.T) {
	planned := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	actual := planned.Add(30 * time.Hour)

	shipment := domain.Shipment{
		Milestones: []domain.Milestone{
			{Type: "gate_in", PlannedDate: &planned, ActualDate: &actual},
			{Type: "departed", PlannedDate: &planned}, // no actual, must not fire
		},
	}

	candidates := Evaluate(shipment)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Type != domain.ExceptionETASlip {
		t.Errorf("type = %v, want eta_slip", c.Type)
	}
	if c.Severity != domain.SeverityMedium {
		t.Errorf("severity = %v, want medium", c.Severity)
	}
	if want := "milestone gate_in"; len(c.Message) == 0 || c.Message[:len(want)] != want {
		t.Errorf("message %q does not name the milestone", c.Message)
	}
}

func TestEvaluate_CostLineVariance(t *testing.T) {
	tests := []struct {
		name     string
		variance float64
		fires    bool
		severity domain.Severity
	}{
		{"below threshold", 7.5, false, ""},
		{"exactly 8 does not fire", 8, false, ""},
		{"over 8 is medium", 9, true, domain.SeverityMedium},
		{"negative variance uses absolute value", -12, true, domain.SeverityMedium},
		{"over 15 is high", 20, true, domain.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shipment := domain.Shipment{
				Costs: []domain.CostLine{{
					CostType:      "freight",
					PlannedAmount: decimal.NewFromInt(1000),
					VariancePct:   tt.variance,
				}},
			}

			candidates := Evaluate(shipment)
			c, ok := findCandidate(candidates, domain.ExceptionCostVariance)
			if ok != tt.fires {
				t.Fatalf("fired = %v, want %v", ok, tt.fires)
			}
			if ok && c.Severity != tt.severity {
				t.Errorf("severity = %v, want %v", c.Severity, tt.severity)
			}
		})
	}
}

func TestEvaluate_FreeTimeLow(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hours    float64
		fires    bool
		severity domain.Severity
	}{
		{"plenty of free time", 72, false, ""},
		{"exactly 48 does not fire", 48, false, ""},
		{"under 48 is medium", 36, true, domain.SeverityMedium},
		{"under 24 is high", 12, true, domain.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sailing := cutoff.Add(time.Duration(tt.hours * float64(time.Hour)))
			shipment := domain.Shipment{
				Booking: &domain.Booking{CutoffDate: &cutoff, SailingDate: &sailing},
			}

			candidates := Evaluate(shipment)
			c, ok := findCandidate(candidates, domain.ExceptionFreeTimeLow)
			if ok != tt.fires {
				t.Fatalf("fired = %v, want %v", ok, tt.fires)
			}
			if ok && c.Severity != tt.severity {
				t.Errorf("severity = %v, want %v", c.Severity, tt.severity)
			}
		})
	}
}

func TestEvaluate_AllRulesFireTogether(t *testing.T) {
	planned := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	actual := planned.Add(60 * time.Hour)
	cutoff := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	sailing := cutoff.Add(12 * time.Hour)
	mPlanned := planned
	mActual := planned.Add(26 * time.Hour)

	shipment := domain.Shipment{
		PlannedETA: &planned,
		ActualETA:  &actual,
		Milestones: []domain.Milestone{{Type: "loaded", PlannedDate: &mPlanned, ActualDate: &mActual}},
		Costs:      []domain.CostLine{{CostType: "duty", VariancePct: 22}},
		Booking:    &domain.Booking{CutoffDate: &cutoff, SailingDate: &sailing},
	}

	candidates := Evaluate(shipment)
	if len(candidates) != 4 {
		t.Fatalf("got %d candidates, want 4 (all rules firing)", len(candidates))
	}
}
