package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type planRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

// Upsert overwrites the prior plan for the same (item, location) pair. The
// status resets to 'new' on every run: the plan is always the latest
// snapshot of the engine's recommendation.
func (r *planRepository) Upsert(ctx context.Context, plan *domain.ReplenishmentPlan) (int64, error) {
	query := `
        INSERT INTO replenishment_plans (
            org_id, item_id, location_id, recommended_qty, priority,
            status, reason, run_id, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, 'new', $6, $7, now(), now())
        ON CONFLICT (item_id, location_id) DO UPDATE SET
            recommended_qty = EXCLUDED.recommended_qty,
            priority        = EXCLUDED.priority,
            status          = 'new',
            reason          = EXCLUDED.reason,
            run_id          = EXCLUDED.run_id,
            updated_at      = now()
        RETURNING id
    `

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		plan.OrgID, plan.ItemID, plan.LocationID, plan.RecommendedQty,
		plan.Priority, plan.Reason, plan.RunID)
	if err != nil {
		return 0, fmt.Errorf("error upserting plan: %w", err)
	}

	return id, nil
}

func (r *planRepository) List(ctx context.Context, filter repository.PlanFilter) ([]domain.ReplenishmentPlan, int, error) {
	countQuery := `
        SELECT COUNT(*)
        FROM replenishment_plans
        WHERE org_id = $1
    `

	query := `
        SELECT
            id, org_id, item_id, location_id, recommended_qty, priority,
            status, reason, run_id, created_at, updated_at
        FROM replenishment_plans
        WHERE org_id = $1
    `

	args := []interface{}{filter.OrgID}
	var conditions []string
	argCounter := 2

	if len(filter.ItemIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("item_id = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.ItemIDs))
		argCounter++
	}

	if len(filter.LocationIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("location_id = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.LocationIDs))
		argCounter++
	}

	if len(filter.Priorities) > 0 {
		conditions = append(conditions, fmt.Sprintf("priority = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.Priorities))
		argCounter++
	}

	if len(filter.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.Statuses))
		argCounter++
	}

	if len(conditions) > 0 {
		whereClause := " AND " + strings.Join(conditions, " AND ")
		query += whereClause
		countQuery += whereClause
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("error counting plans: %w", err)
	}

	query += " ORDER BY priority DESC, item_id, location_id"

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.PageSize, offset)
	}

	var plans []domain.ReplenishmentPlan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, 0, fmt.Errorf("error listing plans: %w", err)
	}

	return plans, total, nil
}

func (r *planRepository) Summary(ctx context.Context, orgID string) ([]domain.PlanSummary, error) {
	query := `
        SELECT priority, COUNT(*) as count
        FROM replenishment_plans
        WHERE org_id = $1 AND status = 'new'
        GROUP BY priority
    `

	var summaries []domain.PlanSummary
	if err := r.db.SelectContext(ctx, &summaries, query, orgID); err != nil {
		return nil, fmt.Errorf("error getting plan summary: %w", err)
	}

	return summaries, nil
}
