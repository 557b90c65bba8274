package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	before, err := json.Marshal(entry.Before)
	if err != nil {
		return fmt.Errorf("error encoding audit before state: %w", err)
	}
	after, err := json.Marshal(entry.After)
	if err != nil {
		return fmt.Errorf("error encoding audit after state: %w", err)
	}

	query := `
        INSERT INTO audit_log (actor, entity_type, entity_id, action, before, after, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6, now())
    `

	if _, err := r.db.ExecContext(ctx, query, entry.Actor, entry.EntityType, entry.EntityID, entry.Action, before, after); err != nil {
		return fmt.Errorf("error recording audit entry: %w", err)
	}

	return nil
}
