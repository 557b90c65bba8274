// backend-go/internal/service/replenishment_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/cache"
	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/exception"
	"github.com/andresuchdata/supplyops/backend-go/internal/planning"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RunResult is what a batch run hands back to the caller: identifiers of
// every plan written plus a per-policy failure record. It always reflects
// what actually succeeded, even under partial failure.
type RunResult struct {
	RunID       uuid.UUID       `json:"run_id"`
	PlanIDs     []int64         `json:"plan_ids"`
	Processed   int             `json:"processed"`
	Failures    []PolicyFailure `json:"failures,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
}

// PolicyFailure records one skipped policy.
type PolicyFailure struct {
	PolicyID   int64  `json:"policy_id"`
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Reason     string `json:"reason"`
}

type ReplenishmentService struct {
	policies    repository.PolicyRepository
	demand      repository.DemandRepository
	snapshots   repository.SnapshotRepository
	plans       repository.PlanRepository
	exceptions  repository.ExceptionRepository
	audit       repository.AuditRepository
	cache       cache.PlanCache
	horizonDays int
}

func NewReplenishmentService(
	policies repository.PolicyRepository,
	demand repository.DemandRepository,
	snapshots repository.SnapshotRepository,
	plans repository.PlanRepository,
	exceptions repository.ExceptionRepository,
	audit repository.AuditRepository,
	cacheImpl cache.PlanCache,
	horizonDays int,
) *ReplenishmentService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPlanCache()
	}
	if horizonDays <= 0 {
		horizonDays = 30
	}
	return &ReplenishmentService{
		policies:    policies,
		demand:      demand,
		snapshots:   snapshots,
		plans:       plans,
		exceptions:  exceptions,
		audit:       audit,
		cache:       cacheImpl,
		horizonDays: horizonDays,
	}
}

// Run executes one replenishment batch for a scope. Policies are processed
// sequentially; a failure on one policy is recorded and skipped so it cannot
// abort the batch. A scope mismatch aborts before any work starts.
func (s *ReplenishmentService) Run(ctx context.Context, actor domain.Actor, scope string) (*RunResult, error) {
	if actor.OrgID != scope {
		return nil, domain.ErrScopeMismatch
	}

	policies, err := s.policies.ListActive(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}

	result := &RunResult{
		RunID:     uuid.New(),
		PlanIDs:   make([]int64, 0, len(policies)),
		StartedAt: time.Now(),
	}

	for _, policy := range policies {
		planID, written, err := s.runPolicy(ctx, actor, policy, result.RunID)
		if err != nil {
			log.Error().Err(err).
				Int64("policy_id", policy.ID).
				Str("item_id", policy.ItemID).
				Str("location_id", policy.LocationID).
				Msg("replenishment: policy failed, skipping")
			result.Failures = append(result.Failures, PolicyFailure{
				PolicyID:   policy.ID,
				ItemID:     policy.ItemID,
				LocationID: policy.LocationID,
				Reason:     err.Error(),
			})
			continue
		}

		result.Processed++
		if written {
			result.PlanIDs = append(result.PlanIDs, planID)
		}
	}

	result.CompletedAt = time.Now()

	if err := s.cache.InvalidateSummary(ctx, scope); err != nil {
		log.Warn().Err(err).Str("org_id", scope).Msg("replenishment: cache invalidation failed")
	}

	log.Info().
		Str("run_id", result.RunID.String()).
		Int("processed", result.Processed).
		Int("plans", len(result.PlanIDs)).
		Int("failures", len(result.Failures)).
		Msg("replenishment: batch run completed")

	return result, nil
}

// runPolicy runs the full pipeline for one policy: demand estimation,
// reorder computation, inventory alerts, plan upsert. A zero recommended
// quantity is an idempotent no-op, not an error.
func (s *ReplenishmentService) runPolicy(ctx context.Context, actor domain.Actor, policy domain.ReorderPolicy, runID uuid.UUID) (int64, bool, error) {
	today := time.Now().UTC()

	forecast, err := s.demand.ListForecast(ctx, policy.ItemID, policy.LocationID, s.horizonDays)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load forecast: %w", err)
	}

	avgDailyDemand := planning.EstimateFromForecast(forecast, s.horizonDays, today)
	if avgDailyDemand == 0 {
		issues, err := s.demand.ListIssueQuantities(ctx, policy.ItemID, policy.LocationID, s.horizonDays)
		if err != nil {
			return 0, false, fmt.Errorf("failed to load issue history: %w", err)
		}
		avgDailyDemand = planning.EstimateFromIssues(issues, s.horizonDays)
	}

	snapshot, err := s.snapshots.Latest(ctx, policy.ItemID, policy.LocationID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	comp := planning.Calculate(policy, avgDailyDemand, snapshot)

	s.raiseInventoryExceptions(ctx, policy, comp)

	if comp.RecommendedQty <= 0 {
		return 0, false, nil
	}

	plan := &domain.ReplenishmentPlan{
		OrgID:          policy.OrgID,
		ItemID:         policy.ItemID,
		LocationID:     policy.LocationID,
		RecommendedQty: comp.RecommendedQty,
		Priority:       comp.Priority,
		Status:         domain.PlanStatusNew,
		Reason:         comp.Reason(),
		RunID:          runID,
	}

	id, err := s.plans.Upsert(ctx, plan)
	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert plan: %w", err)
	}
	plan.ID = id

	s.recordAudit(ctx, actor, domain.AuditEntry{
		EntityType: "replenishment_plan",
		EntityID:   fmt.Sprintf("%d", id),
		Action:     "upsert",
		After:      plan,
	})

	return id, true, nil
}

// raiseInventoryExceptions writes inventory alerts for the policy's position.
// Failures here never fail the policy run.
func (s *ReplenishmentService) raiseInventoryExceptions(ctx context.Context, policy domain.ReorderPolicy, comp planning.Computation) {
	for _, cand := range exception.EvaluateInventory(policy, comp) {
		itemID := policy.ItemID
		locationID := policy.LocationID
		e := &domain.Exception{
			OrgID:          policy.OrgID,
			ItemID:         &itemID,
			LocationID:     &locationID,
			Type:           cand.Type,
			Severity:       cand.Severity,
			Message:        cand.Message,
			ThresholdValue: cand.ThresholdValue,
			ActualValue:    cand.ActualValue,
		}

		if _, _, err := s.exceptions.CreateIfAbsent(ctx, e); err != nil {
			log.Warn().Err(err).
				Str("item_id", policy.ItemID).
				Str("location_id", policy.LocationID).
				Str("type", string(cand.Type)).
				Msg("replenishment: inventory exception write failed")
		}
	}
}

func (s *ReplenishmentService) recordAudit(ctx context.Context, actor domain.Actor, entry domain.AuditEntry) {
	entry.Actor = actor.ID
	if err := s.audit.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("entity_id", entry.EntityID).Msg("audit record failed")
	}
}

// ListPlans returns plans for a scope with filters applied.
func (s *ReplenishmentService) ListPlans(ctx context.Context, filter repository.PlanFilter) ([]domain.ReplenishmentPlan, int, error) {
	return s.plans.List(ctx, filter)
}

// PlanSummary returns the cached priority breakdown for a scope.
func (s *ReplenishmentService) PlanSummary(ctx context.Context, orgID string) ([]domain.PlanSummary, error) {
	if summaries, ok, err := s.cache.GetSummary(ctx, orgID); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("replenishment: cache get summary failed")
	}

	summaries, err := s.plans.Summary(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, orgID, summaries); err != nil {
		log.Warn().Err(err).Msg("replenishment: cache set summary failed")
	}

	return summaries, nil
}
