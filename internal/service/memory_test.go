package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
)

// In-memory repository fakes for service tests. Error maps are keyed by
// "item|location" so single policies can be made to fail.

func pairKey(itemID, locationID string) string {
	return itemID + "|" + locationID
}

type memPolicyRepo struct {
	policies []domain.ReorderPolicy
	err      error
}

func (r *memPolicyRepo) ListActive(ctx context.Context, orgID string) ([]domain.ReorderPolicy, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.ReorderPolicy
	for _, p := range r.policies {
		if p.OrgID == orgID && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

type memDemandRepo struct {
	forecast map[string][]domain.ForecastPoint
	issues   map[string][]float64
	errs     map[string]error
}

func (r *memDemandRepo) ListForecast(ctx context.Context, itemID, locationID string, horizonDays int) ([]domain.ForecastPoint, error) {
	key := pairKey(itemID, locationID)
	if err := r.errs[key]; err != nil {
		return nil, err
	}
	return r.forecast[key], nil
}

func (r *memDemandRepo) ListIssueQuantities(ctx context.Context, itemID, locationID string, windowDays int) ([]float64, error) {
	key := pairKey(itemID, locationID)
	if err := r.errs[key]; err != nil {
		return nil, err
	}
	return r.issues[key], nil
}

type memSnapshotRepo struct {
	snapshots map[string]*domain.InventoryPosition
	errs      map[string]error
}

func (r *memSnapshotRepo) Latest(ctx context.Context, itemID, locationID string) (*domain.InventoryPosition, error) {
	key := pairKey(itemID, locationID)
	if err := r.errs[key]; err != nil {
		return nil, err
	}
	return r.snapshots[key], nil
}

type memPlanRepo struct {
	plans  map[string]*domain.ReplenishmentPlan
	nextID int64
	errs   map[string]error
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[string]*domain.ReplenishmentPlan)}
}

func (r *memPlanRepo) Upsert(ctx context.Context, plan *domain.ReplenishmentPlan) (int64, error) {
	key := pairKey(plan.ItemID, plan.LocationID)
	if err := r.errs[key]; err != nil {
		return 0, err
	}
	if existing, ok := r.plans[key]; ok {
		plan.ID = existing.ID
	} else {
		r.nextID++
		plan.ID = r.nextID
	}
	plan.Status = domain.PlanStatusNew
	cp := *plan
	r.plans[key] = &cp
	return plan.ID, nil
}

func (r *memPlanRepo) List(ctx context.Context, filter repository.PlanFilter) ([]domain.ReplenishmentPlan, int, error) {
	var out []domain.ReplenishmentPlan
	for _, p := range r.plans {
		if p.OrgID == filter.OrgID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (r *memPlanRepo) Summary(ctx context.Context, orgID string) ([]domain.PlanSummary, error) {
	counts := make(map[domain.PlanPriority]int)
	for _, p := range r.plans {
		if p.OrgID == orgID && p.Status == domain.PlanStatusNew {
			counts[p.Priority]++
		}
	}
	var out []domain.PlanSummary
	for priority, count := range counts {
		out = append(out, domain.PlanSummary{Priority: priority, Count: count})
	}
	return out, nil
}

// memExceptionRepo is locked because the sweep evaluates shipments from
// multiple goroutines.
type memExceptionRepo struct {
	mu         sync.Mutex
	exceptions []*domain.Exception
	nextID     int64
	createErr  error
}

func (r *memExceptionRepo) openKey(e *domain.Exception) string {
	if e.ShipmentID != nil {
		return fmt.Sprintf("shipment:%d:%s", *e.ShipmentID, e.Type)
	}
	item, location := "", ""
	if e.ItemID != nil {
		item = *e.ItemID
	}
	if e.LocationID != nil {
		location = *e.LocationID
	}
	return fmt.Sprintf("inventory:%s:%s:%s", item, location, e.Type)
}

func (r *memExceptionRepo) findOpen(e *domain.Exception) *domain.Exception {
	key := r.openKey(e)
	for _, existing := range r.exceptions {
		if existing.ResolvedAt == nil && r.openKey(existing) == key {
			return existing
		}
	}
	return nil
}

func (r *memExceptionRepo) CreateIfAbsent(ctx context.Context, e *domain.Exception) (*domain.Exception, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, false, r.createErr
	}
	if existing := r.findOpen(e); existing != nil {
		cp := *existing
		return &cp, false, nil
	}
	r.nextID++
	cp := *e
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.exceptions = append(r.exceptions, &cp)
	out := cp
	return &out, true, nil
}

func (r *memExceptionRepo) Get(ctx context.Context, id int64) (*domain.Exception, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.exceptions {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrExceptionNotFound
}

func (r *memExceptionRepo) List(ctx context.Context, filter repository.ExceptionFilter) ([]domain.Exception, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Exception
	for _, e := range r.exceptions {
		if e.OrgID != filter.OrgID {
			continue
		}
		if filter.OnlyOpen && e.ResolvedAt != nil {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (r *memExceptionRepo) Resolve(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.exceptions {
		if e.ID == id {
			if e.ResolvedAt != nil {
				return domain.ErrAlreadyResolved
			}
			e.ResolvedAt = &at
			return nil
		}
	}
	return domain.ErrExceptionNotFound
}

func (r *memExceptionRepo) openOfType(t domain.ExceptionType) []*domain.Exception {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Exception
	for _, e := range r.exceptions {
		if e.ResolvedAt == nil && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type memShipmentRepo struct {
	shipments map[int64]*domain.Shipment
	getErr    error
}

func (r *memShipmentRepo) GetWithRelations(ctx context.Context, id int64) (*domain.Shipment, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.shipments[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memShipmentRepo) ListIDs(ctx context.Context, orgID string) ([]int64, error) {
	var ids []int64
	for id, s := range r.shipments {
		if s.OrgID == orgID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memShipmentRepo) RecordCost(ctx context.Context, line *domain.CostLine) ([]domain.CostLine, error) {
	s, ok := r.shipments[line.ShipmentID]
	if !ok {
		return nil, fmt.Errorf("shipment %d missing", line.ShipmentID)
	}
	replaced := false
	for i, c := range s.Costs {
		if c.CostType == line.CostType {
			line.ID = c.ID
			s.Costs[i] = *line
			replaced = true
			break
		}
	}
	if !replaced {
		line.ID = int64(len(s.Costs) + 1)
		s.Costs = append(s.Costs, *line)
	}
	return append([]domain.CostLine(nil), s.Costs...), nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *memAuditRepo) Record(ctx context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}
