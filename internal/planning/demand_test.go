package planning

import (
	"testing"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
)

func TestEstimateFromForecast(t *testing.T) {
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	point := func(daysOut int, qty float64) domain.ForecastPoint {
		return domain.ForecastPoint{HorizonDate: asOf.AddDate(0, 0, daysOut), ForecastQty: qty}
	}

	tests := []struct {
		name        string
		points      []domain.ForecastPoint
		horizonDays int
		want        float64
	}{
		{
			name:        "points inside window",
			points:      []domain.ForecastPoint{point(5, 100), point(20, 200)},
			horizonDays: 30,
			want:        10,
		},
		{
			name:        "points outside window ignored",
			points:      []domain.ForecastPoint{point(-3, 500), point(45, 500), point(10, 60)},
			horizonDays: 30,
			want:        2,
		},
		{
			name:        "no data yields zero",
			points:      nil,
			horizonDays: 30,
			want:        0,
		},
		{
			name:        "zero total yields zero",
			points:      []domain.ForecastPoint{point(5, 0)},
			horizonDays: 30,
			want:        0,
		},
		{
			name:        "invalid horizon yields zero",
			points:      []domain.ForecastPoint{point(5, 100)},
			horizonDays: 0,
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateFromForecast(tt.points, tt.horizonDays, asOf)
			if got != tt.want {
				t.Errorf("EstimateFromForecast() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateFromIssues(t *testing.T) {
	tests := []struct {
		name        string
		qtys        []float64
		horizonDays int
		want        float64
	}{
		{"absolute values summed", []float64{-30, -60, 30}, 30, 4},
		{"empty history yields zero", nil, 30, 0},
		{"invalid horizon yields zero", []float64{10}, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateFromIssues(tt.qtys, tt.horizonDays)
			if got != tt.want {
				t.Errorf("EstimateFromIssues() = %v, want %v", got, tt.want)
			}
		})
	}
}
