package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type policyRepository struct {
	db *sqlx.DB
}

func NewPolicyRepository(db *sqlx.DB) repository.PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) ListActive(ctx context.Context, orgID string) ([]domain.ReorderPolicy, error) {
	query := `
        SELECT
            id, org_id, item_id, location_id, method, safety_stock,
            reorder_point, reorder_qty, lead_time_days, review_period_days,
            service_level_pct, moq, lot_multiple, active, created_at, updated_at
        FROM reorder_policies
        WHERE org_id = $1 AND active = TRUE
        ORDER BY item_id, location_id
    `

	var policies []domain.ReorderPolicy
	if err := r.db.SelectContext(ctx, &policies, query, orgID); err != nil {
		return nil, fmt.Errorf("error listing active policies: %w", err)
	}

	return policies, nil
}
