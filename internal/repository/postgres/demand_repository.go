package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type demandRepository struct {
	db *sqlx.DB
}

func NewDemandRepository(db *sqlx.DB) repository.DemandRepository {
	return &demandRepository{db: db}
}

func (r *demandRepository) ListForecast(ctx context.Context, itemID, locationID string, horizonDays int) ([]domain.ForecastPoint, error) {
	query := `
        SELECT item_id, location_id, horizon_date, forecast_qty
        FROM demand_forecasts
        WHERE item_id = $1
          AND location_id = $2
          AND horizon_date >= current_date
          AND horizon_date <= current_date + ($3 || ' days')::interval
        ORDER BY horizon_date
    `

	var points []domain.ForecastPoint
	if err := r.db.SelectContext(ctx, &points, query, itemID, locationID, horizonDays); err != nil {
		return nil, fmt.Errorf("error listing forecast points: %w", err)
	}

	return points, nil
}

func (r *demandRepository) ListIssueQuantities(ctx context.Context, itemID, locationID string, windowDays int) ([]float64, error) {
	query := `
        SELECT qty
        FROM inventory_transactions
        WHERE item_id = $1
          AND location_id = $2
          AND type = 'issue'
          AND occurred_at >= current_date - ($3 || ' days')::interval
    `

	var qtys []float64
	if err := r.db.SelectContext(ctx, &qtys, query, itemID, locationID, windowDays); err != nil {
		return nil, fmt.Errorf("error listing issue transactions: %w", err)
	}

	return qtys, nil
}
