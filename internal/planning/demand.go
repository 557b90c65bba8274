package planning

import (
	"math"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
)

// EstimateFromForecast returns the average daily demand implied by forecast
// points falling within [asOf, asOf+horizonDays]. Returns 0 when the horizon
// is invalid or the window holds no positive demand.
func EstimateFromForecast(points []domain.ForecastPoint, horizonDays int, asOf time.Time) float64 {
	if horizonDays <= 0 {
		return 0
	}

	end := asOf.AddDate(0, 0, horizonDays)
	total := 0.0
	for _, p := range points {
		if p.HorizonDate.Before(asOf) || p.HorizonDate.After(end) {
			continue
		}
		total += p.ForecastQty
	}

	if total <= 0 {
		return 0
	}

	return total / float64(horizonDays)
}

// EstimateFromIssues returns the average daily consumption from issue
// transaction quantities over a trailing window. Quantities are taken by
// absolute value since issues are often stored negative.
func EstimateFromIssues(qtys []float64, horizonDays int) float64 {
	if horizonDays <= 0 || len(qtys) == 0 {
		return 0
	}

	total := 0.0
	for _, q := range qtys {
		total += math.Abs(q)
	}

	return total / float64(horizonDays)
}
