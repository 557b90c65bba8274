package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type exceptionRepository struct {
	db *sqlx.DB
}

func NewExceptionRepository(db *sqlx.DB) repository.ExceptionRepository {
	return &exceptionRepository{db: db}
}

const exceptionColumns = `
    id, org_id, shipment_id, item_id, location_id, exception_type,
    severity, message, threshold_value, actual_value, resolved_at, created_at
`

// CreateIfAbsent inserts the exception unless an open one already exists for
// the same reference and type. The dedup invariant lives in partial unique
// indexes, so two concurrent evaluations cannot both insert: the loser of
// the race gets a conflict, reads the winner's row back and reports
// created=false.
func (r *exceptionRepository) CreateIfAbsent(ctx context.Context, e *domain.Exception) (*domain.Exception, bool, error) {
	conflictTarget := "(shipment_id, exception_type) WHERE resolved_at IS NULL"
	if e.ShipmentID == nil {
		conflictTarget = "(item_id, location_id, exception_type) WHERE resolved_at IS NULL"
	}

	query := `
        INSERT INTO exceptions (
            org_id, shipment_id, item_id, location_id, exception_type,
            severity, message, threshold_value, actual_value, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
        ON CONFLICT ` + conflictTarget + ` DO NOTHING
        RETURNING ` + exceptionColumns

	var created domain.Exception
	err := r.db.GetContext(ctx, &created, query,
		e.OrgID, e.ShipmentID, e.ItemID, e.LocationID, e.Type,
		e.Severity, e.Message, e.ThresholdValue, e.ActualValue)
	if err == nil {
		return &created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("error creating exception: %w", err)
	}

	// Conflict: an open exception already exists. Return it unchanged.
	existing, err := r.getOpen(ctx, e)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

func (r *exceptionRepository) getOpen(ctx context.Context, e *domain.Exception) (*domain.Exception, error) {
	var (
		query string
		args  []interface{}
	)

	if e.ShipmentID != nil {
		query = `
            SELECT ` + exceptionColumns + `
            FROM exceptions
            WHERE shipment_id = $1 AND exception_type = $2 AND resolved_at IS NULL
        `
		args = []interface{}{*e.ShipmentID, e.Type}
	} else {
		query = `
            SELECT ` + exceptionColumns + `
            FROM exceptions
            WHERE item_id = $1 AND location_id = $2 AND exception_type = $3 AND resolved_at IS NULL
        `
		args = []interface{}{e.ItemID, e.LocationID, e.Type}
	}

	var existing domain.Exception
	if err := r.db.GetContext(ctx, &existing, query, args...); err != nil {
		return nil, fmt.Errorf("error reading open exception after conflict: %w", err)
	}

	return &existing, nil
}

func (r *exceptionRepository) Get(ctx context.Context, id int64) (*domain.Exception, error) {
	query := `
        SELECT ` + exceptionColumns + `
        FROM exceptions
        WHERE id = $1
    `

	var exception domain.Exception
	err := r.db.GetContext(ctx, &exception, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrExceptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting exception: %w", err)
	}

	return &exception, nil
}

func (r *exceptionRepository) List(ctx context.Context, filter repository.ExceptionFilter) ([]domain.Exception, int, error) {
	countQuery := `
        SELECT COUNT(*)
        FROM exceptions
        WHERE org_id = $1
    `

	query := `
        SELECT ` + exceptionColumns + `
        FROM exceptions
        WHERE org_id = $1
    `

	args := []interface{}{filter.OrgID}
	var conditions []string
	argCounter := 2

	if filter.ShipmentID != nil {
		conditions = append(conditions, fmt.Sprintf("shipment_id = $%d", argCounter))
		args = append(args, *filter.ShipmentID)
		argCounter++
	}

	if len(filter.Types) > 0 {
		conditions = append(conditions, fmt.Sprintf("exception_type = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.Types))
		argCounter++
	}

	if filter.OnlyOpen {
		conditions = append(conditions, "resolved_at IS NULL")
	}

	if len(conditions) > 0 {
		whereClause := " AND " + strings.Join(conditions, " AND ")
		query += whereClause
		countQuery += whereClause
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("error counting exceptions: %w", err)
	}

	query += " ORDER BY created_at DESC"

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.PageSize, offset)
	}

	var exceptions []domain.Exception
	if err := r.db.SelectContext(ctx, &exceptions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("error listing exceptions: %w", err)
	}

	return exceptions, total, nil
}

// Resolve closes an exception exactly once. Resolving an already-resolved
// exception is reported, not silently absorbed.
func (r *exceptionRepository) Resolve(ctx context.Context, id int64, at time.Time) error {
	query := `
        UPDATE exceptions
        SET resolved_at = $2
        WHERE id = $1 AND resolved_at IS NULL
    `

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("error resolving exception: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error resolving exception: %w", err)
	}
	if affected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return domain.ErrAlreadyResolved
	}

	return nil
}
