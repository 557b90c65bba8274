package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/supplyops/backend-go/internal/config"
	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const planSummaryKeyPrefix = "plans:summary"

// PlanCache caches the per-scope priority breakdown of open plans. The batch
// runner invalidates it after every run, which doubles as the "data changed"
// signal for pollers.
type PlanCache interface {
	GetSummary(ctx context.Context, orgID string) ([]domain.PlanSummary, bool, error)
	SetSummary(ctx context.Context, orgID string, summaries []domain.PlanSummary) error
	InvalidateSummary(ctx context.Context, orgID string) error
}

type redisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPlanCache struct{}

func NewPlanCache(cfg config.CacheConfig) (PlanCache, error) {
	if !cfg.Enabled {
		return &noopPlanCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPlanCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPlanCache() PlanCache {
	return &noopPlanCache{}
}

func (c *redisPlanCache) GetSummary(ctx context.Context, orgID string) ([]domain.PlanSummary, bool, error) {
	key := buildPlanSummaryKey(orgID)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.PlanSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode plan summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisPlanCache) SetSummary(ctx context.Context, orgID string, summaries []domain.PlanSummary) error {
	key := buildPlanSummaryKey(orgID)
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode plan summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPlanCache) InvalidateSummary(ctx context.Context, orgID string) error {
	return c.client.Del(ctx, buildPlanSummaryKey(orgID)).Err()
}

func (n *noopPlanCache) GetSummary(ctx context.Context, orgID string) ([]domain.PlanSummary, bool, error) {
	return nil, false, nil
}

func (n *noopPlanCache) SetSummary(ctx context.Context, orgID string, summaries []domain.PlanSummary) error {
	return nil
}

func (n *noopPlanCache) InvalidateSummary(ctx context.Context, orgID string) error {
	return nil
}

func buildPlanSummaryKey(orgID string) string {
	return fmt.Sprintf("%s:%s", planSummaryKeyPrefix, orgID)
}
