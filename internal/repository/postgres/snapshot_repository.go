package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type snapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Latest(ctx context.Context, itemID, locationID string) (*domain.InventoryPosition, error) {
	query := `
        SELECT item_id, location_id, on_hand, reserved, on_order, backorder, as_of
        FROM inventory_snapshots
        WHERE item_id = $1 AND location_id = $2
        ORDER BY as_of DESC
        LIMIT 1
    `

	var snapshot domain.InventoryPosition
	err := r.db.GetContext(ctx, &snapshot, query, itemID, locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting latest snapshot: %w", err)
	}

	return &snapshot, nil
}
