package exception

import (
	"testing"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/planning"
)

func leadTime(days int) *int { return &days }

func TestEvaluateInventory(t *testing.T) {
	policy := domain.ReorderPolicy{ItemID: "SKU-1", LocationID: "WH-1", LeadTimeDays: leadTime(10)}

	tests := []struct {
		name string
		comp planning.Computation
		want []domain.ExceptionType
	}{
		{
			name: "healthy position",
			comp: planning.Computation{AvgDailyDemand: 5, DaysOfSupply: 40, OnHand: 200},
			want: nil,
		},
		{
			name: "stockout risk under lead time",
			comp: planning.Computation{AvgDailyDemand: 5, DaysOfSupply: 8, OnHand: 40},
			want: []domain.ExceptionType{domain.ExceptionStockoutRisk},
		},
		{
			name: "negative on hand",
			comp: planning.Computation{AvgDailyDemand: 5, DaysOfSupply: 40, OnHand: -3},
			want: []domain.ExceptionType{domain.ExceptionNegativeOnHand},
		},
		{
			name: "overstock",
			comp: planning.Computation{AvgDailyDemand: 5, DaysOfSupply: 120, OnHand: 600},
			want: []domain.ExceptionType{domain.ExceptionOverstock},
		},
		{
			name: "no demand never flags coverage",
			comp: planning.Computation{AvgDailyDemand: 0, DaysOfSupply: planning.NoDemandDaysOfSupply, OnHand: 10},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateInventory(policy, tt.comp)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d candidates, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.Type != tt.want[i] {
					t.Errorf("candidate %d type = %v, want %v", i, c.Type, tt.want[i])
				}
			}
		})
	}
}

func TestEvaluateInventory_StockoutSeverity(t *testing.T) {
	policy := domain.ReorderPolicy{ItemID: "SKU-1", LocationID: "WH-1", LeadTimeDays: leadTime(10)}

	medium := EvaluateInventory(policy, planning.Computation{AvgDailyDemand: 5, DaysOfSupply: 8})
	if len(medium) != 1 || medium[0].Severity != domain.SeverityMedium {
		t.Errorf("coverage just under lead time should be medium, got %+v", medium)
	}

	high := EvaluateInventory(policy, planning.Computation{AvgDailyDemand: 5, DaysOfSupply: 3})
	if len(high) != 1 || high[0].Severity != domain.SeverityHigh {
		t.Errorf("coverage under half the lead time should be high, got %+v", high)
	}
}
