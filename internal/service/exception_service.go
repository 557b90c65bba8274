// backend-go/internal/service/exception_service.go
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/exception"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EvaluationResult splits an evaluation into exceptions this call created
// and open ones that already existed for the same (shipment, type).
type EvaluationResult struct {
	ShipmentID int64              `json:"shipment_id"`
	Created    []domain.Exception `json:"created"`
	Existing   []domain.Exception `json:"existing"`
}

// CostUpdateResult reports the recomputed shipment-level totals after a cost
// upsert, plus the variance exception if one applies.
type CostUpdateResult struct {
	ShipmentID   int64             `json:"shipment_id"`
	PlannedTotal decimal.Decimal   `json:"planned_total"`
	ActualTotal  decimal.Decimal   `json:"actual_total"`
	VariancePct  float64           `json:"variance_pct"`
	Exception    *domain.Exception `json:"exception,omitempty"`
	Created      bool              `json:"created"`
}

type ExceptionService struct {
	shipments  repository.ShipmentRepository
	exceptions repository.ExceptionRepository
	audit      repository.AuditRepository
}

func NewExceptionService(
	shipments repository.ShipmentRepository,
	exceptions repository.ExceptionRepository,
	audit repository.AuditRepository,
) *ExceptionService {
	return &ExceptionService{
		shipments:  shipments,
		exceptions: exceptions,
		audit:      audit,
	}
}

// EvaluateShipment runs every exception rule against a fully-loaded shipment
// and persists the firing ones, deduplicated against open exceptions. A
// missing shipment is a hard failure of this call.
func (s *ExceptionService) EvaluateShipment(ctx context.Context, actor domain.Actor, shipmentID int64) (*EvaluationResult, error) {
	shipment, err := s.loadShipment(ctx, actor, shipmentID)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{ShipmentID: shipmentID}

	for _, cand := range exception.Evaluate(*shipment) {
		e := s.buildShipmentException(shipment, cand)

		surviving, created, err := s.exceptions.CreateIfAbsent(ctx, e)
		if err != nil {
			return nil, fmt.Errorf("failed to persist exception: %w", err)
		}

		if created {
			result.Created = append(result.Created, *surviving)
			s.recordAudit(ctx, actor, domain.AuditEntry{
				EntityType: "exception",
				EntityID:   fmt.Sprintf("%d", surviving.ID),
				Action:     "create",
				After:      surviving,
			})
		} else {
			result.Existing = append(result.Existing, *surviving)
		}
	}

	return result, nil
}

// RecordCost upserts one cost line and recomputes the shipment-level
// variance. An open cost_variance exception suppresses re-raising: the
// existing one comes back unchanged, with no severity upgrade. A variance
// back under threshold never auto-resolves anything.
func (s *ExceptionService) RecordCost(ctx context.Context, actor domain.Actor, shipmentID int64, line domain.CostLine) (*CostUpdateResult, error) {
	shipment, err := s.loadShipment(ctx, actor, shipmentID)
	if err != nil {
		return nil, err
	}

	line.ShipmentID = shipment.ID
	line.VariancePct = lineVariancePct(line)

	costs, err := s.shipments.RecordCost(ctx, &line)
	if err != nil {
		return nil, fmt.Errorf("failed to record cost line: %w", err)
	}

	plannedTotal := decimal.Zero
	actualTotal := decimal.Zero
	for _, c := range costs {
		plannedTotal = plannedTotal.Add(c.PlannedAmount)
		actualTotal = actualTotal.Add(c.ActualAmount)
	}

	result := &CostUpdateResult{
		ShipmentID:   shipmentID,
		PlannedTotal: plannedTotal,
		ActualTotal:  actualTotal,
	}

	// Zero planned total means variance is undefined; treat as no variance.
	if plannedTotal.IsZero() {
		return result, nil
	}

	variance, _ := actualTotal.Sub(plannedTotal).
		Div(plannedTotal).
		Mul(decimal.NewFromInt(100)).
		Float64()
	result.VariancePct = variance

	if math.Abs(variance) < exception.AggregateVariancePct {
		return result, nil
	}

	severity := domain.SeverityMedium
	if math.Abs(variance) >= exception.AggregateVarianceHighPct {
		severity = domain.SeverityHigh
	}

	e := &domain.Exception{
		OrgID:      shipment.OrgID,
		ShipmentID: &shipment.ID,
		Type:       domain.ExceptionCostVariance,
		Severity:   severity,
		Message: fmt.Sprintf("shipment cost variance %.1f%% (planned %s, actual %s)",
			variance, plannedTotal.StringFixed(2), actualTotal.StringFixed(2)),
		ThresholdValue: exception.AggregateVariancePct,
		ActualValue:    variance,
	}

	surviving, created, err := s.exceptions.CreateIfAbsent(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("failed to persist cost variance exception: %w", err)
	}

	result.Exception = surviving
	result.Created = created

	if created {
		s.recordAudit(ctx, actor, domain.AuditEntry{
			EntityType: "exception",
			EntityID:   fmt.Sprintf("%d", surviving.ID),
			Action:     "create",
			After:      surviving,
		})
	}

	return result, nil
}

const sweepWorkerCount = 4

// SweepResult summarizes one bulk evaluation over every shipment in a scope.
type SweepResult struct {
	Evaluated int `json:"evaluated"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// Sweep evaluates every shipment in the scope using a small worker pool.
// A failure on one shipment is logged and counted, never fatal to the sweep.
func (s *ExceptionService) Sweep(ctx context.Context, actor domain.Actor, scope string) (*SweepResult, error) {
	if actor.OrgID != scope {
		return nil, domain.ErrScopeMismatch
	}

	ids, err := s.shipments.ListIDs(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}

	result := &SweepResult{}
	var mu sync.Mutex

	idChan := make(chan int64, len(ids))
	var wg sync.WaitGroup

	for i := 0; i < sweepWorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idChan {
				evaluation, err := s.EvaluateShipment(ctx, actor, id)

				mu.Lock()
				if err != nil {
					result.Failed++
					mu.Unlock()
					log.Error().Err(err).Int64("shipment_id", id).Msg("sweep evaluation failed")
					continue
				}
				result.Evaluated++
				result.Created += len(evaluation.Created)
				mu.Unlock()
			}
		}()
	}

	for _, id := range ids {
		select {
		case <-ctx.Done():
			close(idChan)
			wg.Wait()
			return nil, ctx.Err()
		case idChan <- id:
		}
	}
	close(idChan)
	wg.Wait()

	log.Info().
		Str("scope", scope).
		Int("evaluated", result.Evaluated).
		Int("created", result.Created).
		Int("failed", result.Failed).
		Msg("exception sweep completed")

	return result, nil
}

// Resolve closes an exception. Resolution is the only mutation an exception
// ever sees after creation.
func (s *ExceptionService) Resolve(ctx context.Context, actor domain.Actor, id int64) (*domain.Exception, error) {
	existing, err := s.exceptions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OrgID != actor.OrgID {
		return nil, domain.ErrScopeMismatch
	}

	if err := s.exceptions.Resolve(ctx, id, time.Now()); err != nil {
		return nil, err
	}

	resolved, err := s.exceptions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, domain.AuditEntry{
		EntityType: "exception",
		EntityID:   fmt.Sprintf("%d", id),
		Action:     "resolve",
		Before:     existing,
		After:      resolved,
	})

	return resolved, nil
}

// List returns exceptions for a scope with filters applied.
func (s *ExceptionService) List(ctx context.Context, filter repository.ExceptionFilter) ([]domain.Exception, int, error) {
	return s.exceptions.List(ctx, filter)
}

func (s *ExceptionService) loadShipment(ctx context.Context, actor domain.Actor, shipmentID int64) (*domain.Shipment, error) {
	shipment, err := s.shipments.GetWithRelations(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}
	if shipment == nil {
		return nil, domain.ErrShipmentNotFound
	}
	if shipment.OrgID != actor.OrgID {
		return nil, domain.ErrScopeMismatch
	}

	return shipment, nil
}

func (s *ExceptionService) buildShipmentException(shipment *domain.Shipment, cand exception.Candidate) *domain.Exception {
	return &domain.Exception{
		OrgID:          shipment.OrgID,
		ShipmentID:     &shipment.ID,
		Type:           cand.Type,
		Severity:       cand.Severity,
		Message:        cand.Message,
		ThresholdValue: cand.ThresholdValue,
		ActualValue:    cand.ActualValue,
	}
}

func (s *ExceptionService) recordAudit(ctx context.Context, actor domain.Actor, entry domain.AuditEntry) {
	entry.Actor = actor.ID
	if err := s.audit.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("entity_id", entry.EntityID).Msg("audit record failed")
	}
}

func lineVariancePct(line domain.CostLine) float64 {
	if line.PlannedAmount.IsZero() {
		return 0
	}
	variance, _ := line.ActualAmount.Sub(line.PlannedAmount).
		Div(line.PlannedAmount).
		Mul(decimal.NewFromInt(100)).
		Float64()
	return variance
}
