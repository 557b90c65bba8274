package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
)

type shipmentRepository struct {
	db *DB
}

func NewShipmentRepository(db *DB) repository.ShipmentRepository {
	return &shipmentRepository{db: db}
}

// GetWithRelations loads the shipment together with its milestones, cost
// lines and booking. Returns nil, nil when the shipment does not exist.
func (r *shipmentRepository) GetWithRelations(ctx context.Context, id int64) (*domain.Shipment, error) {
	query := `
        SELECT id, org_id, reference, planned_eta, actual_eta
        FROM shipments
        WHERE id = $1
    `

	var shipment domain.Shipment
	err := r.db.GetContext(ctx, &shipment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting shipment: %w", err)
	}

	milestoneQuery := `
        SELECT id, shipment_id, type, planned_date, actual_date
        FROM shipment_milestones
        WHERE shipment_id = $1
        ORDER BY id
    `
	if err := r.db.SelectContext(ctx, &shipment.Milestones, milestoneQuery, id); err != nil {
		return nil, fmt.Errorf("error listing shipment milestones: %w", err)
	}

	costs, err := r.ListCosts(ctx, id)
	if err != nil {
		return nil, err
	}
	shipment.Costs = costs

	bookingQuery := `
        SELECT shipment_id, cutoff_date, sailing_date
        FROM shipment_bookings
        WHERE shipment_id = $1
    `
	var booking domain.Booking
	err = r.db.GetContext(ctx, &booking, bookingQuery, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no booking yet
	case err != nil:
		return nil, fmt.Errorf("error getting shipment booking: %w", err)
	default:
		shipment.Booking = &booking
	}

	return &shipment, nil
}

func (r *shipmentRepository) ListIDs(ctx context.Context, orgID string) ([]int64, error) {
	query := `
        SELECT id
        FROM shipments
        WHERE org_id = $1
        ORDER BY id
    `

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, orgID); err != nil {
		return nil, fmt.Errorf("error listing shipment ids: %w", err)
	}

	return ids, nil
}

func (r *shipmentRepository) ListCosts(ctx context.Context, shipmentID int64) ([]domain.CostLine, error) {
	query := `
        SELECT id, shipment_id, cost_type, planned_amount, actual_amount, variance_pct
        FROM shipment_costs
        WHERE shipment_id = $1
        ORDER BY id
    `

	var costs []domain.CostLine
	if err := r.db.SelectContext(ctx, &costs, query, shipmentID); err != nil {
		return nil, fmt.Errorf("error listing shipment costs: %w", err)
	}

	return costs, nil
}

// RecordCost writes one cost line keyed by (shipment_id, cost_type) and
// reloads every line for the shipment inside the same transaction. The
// returned slice is the state the upsert committed, so two concurrent cost
// updates cannot hand the caller totals from a torn write.
func (r *shipmentRepository) RecordCost(ctx context.Context, line *domain.CostLine) ([]domain.CostLine, error) {
	upsertQuery := `
        INSERT INTO shipment_costs (shipment_id, cost_type, planned_amount, actual_amount, variance_pct)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (shipment_id, cost_type) DO UPDATE SET
            planned_amount = EXCLUDED.planned_amount,
            actual_amount  = EXCLUDED.actual_amount,
            variance_pct   = EXCLUDED.variance_pct
        RETURNING id
    `

	listQuery := `
        SELECT id, shipment_id, cost_type, planned_amount, actual_amount, variance_pct
        FROM shipment_costs
        WHERE shipment_id = $1
        ORDER BY id
    `

	var costs []domain.CostLine
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, upsertQuery,
			line.ShipmentID, line.CostType, line.PlannedAmount, line.ActualAmount, line.VariancePct,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("error upserting shipment cost: %w", err)
		}

		rows, err := tx.QueryContext(ctx, listQuery, line.ShipmentID)
		if err != nil {
			return fmt.Errorf("error listing shipment costs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c domain.CostLine
			if err := rows.Scan(&c.ID, &c.ShipmentID, &c.CostType,
				&c.PlannedAmount, &c.ActualAmount, &c.VariancePct); err != nil {
				return fmt.Errorf("error scanning shipment cost: %w", err)
			}
			costs = append(costs, c)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return costs, nil
}
