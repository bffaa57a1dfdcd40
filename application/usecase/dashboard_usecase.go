package usecase

import (
	"context"
	"time"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/application/port/outbound"
)

// DashboardUseCase serves fleet-level counts. Results are cached with a
// short TTL; a cache failure degrades to a direct query, never to an error.
type DashboardUseCase struct {
	assets outbound.AssetRepository
	cache  outbound.Cache
	ttl    time.Duration
	logger outbound.Logger
	now    func() time.Time
}

func NewDashboardUseCase(assets outbound.AssetRepository, cache outbound.Cache, ttl time.Duration, log outbound.Logger) *DashboardUseCase {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DashboardUseCase{
		assets: assets,
		cache:  cache,
		ttl:    ttl,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func dashboardCacheKey(companyID string) string {
	return "ativus:dashboard:" + companyID
}

// GetDashboard returns counts by status and by type for the company fleet.
func (uc *DashboardUseCase) GetDashboard(ctx context.Context, companyID string) (*inbound.DashboardResponse, error) {
	key := dashboardCacheKey(companyID)

	if uc.cache != nil {
		var cached inbound.DashboardResponse
		if hit, err := uc.cache.Get(ctx, key, &cached); err != nil {
			uc.logger.Warn(ctx, "dashboard cache read failed", map[string]interface{}{"key": key})
		} else if hit {
			return &cached, nil
		}
	}

	byStatus, err := uc.assets.CountByStatus(ctx, companyID)
	if err != nil {
		return nil, err
	}
	byType, err := uc.assets.CountByType(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := &inbound.DashboardResponse{
		CompanyID: companyID,
		ByStatus:  map[string]int{},
		ByType:    byType,
		CachedAt:  uc.now(),
	}
	for status, count := range byStatus {
		resp.ByStatus[string(status)] = count
		resp.Total += count
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, resp, uc.ttl); err != nil {
			uc.logger.Warn(ctx, "dashboard cache write failed", map[string]interface{}{"key": key})
		}
	}
	return resp, nil
}
