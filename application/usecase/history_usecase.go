package usecase

import (
	"context"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
)

// HistoryUseCase aggregates over the audit trail. Read-only: nothing here
// writes to the projection or the log, so every answer can be recomputed.
type HistoryUseCase struct {
	events     outbound.AuditRepository
	store      outbound.LifecycleStore
	holders    outbound.HolderRepository
	workOrders outbound.WorkOrderResolver
	logger     outbound.Logger
}

func NewHistoryUseCase(
	events outbound.AuditRepository,
	store outbound.LifecycleStore,
	holders outbound.HolderRepository,
	workOrders outbound.WorkOrderResolver,
	log outbound.Logger,
) *HistoryUseCase {
	return &HistoryUseCase{
		events:     events,
		store:      store,
		holders:    holders,
		workOrders: workOrders,
		logger:     log,
	}
}

// GetHistory returns one page of the asset's ordered event sequence.
func (uc *HistoryUseCase) GetHistory(ctx context.Context, req inbound.HistoryRequest) (*inbound.HistoryResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 200 {
		req.Limit = 50
	}

	events, total, err := uc.events.ListByAsset(ctx, req.CompanyID, req.AssetID, (req.Page-1)*req.Limit, req.Limit)
	if err != nil {
		return nil, err
	}
	return &inbound.HistoryResponse{Events: events, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

// GetSummary folds the full history into the per-asset counters.
func (uc *HistoryUseCase) GetSummary(ctx context.Context, companyID, assetID string) (*inbound.HistorySummary, error) {
	events, err := uc.events.ListAllByAsset(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.ErrAssetNotFound
	}

	summary := &inbound.HistorySummary{
		AssetID:      assetID,
		EventCount:   len(events),
		RegisteredAt: events[0].CreatedAt,
	}

	workOrders := map[string]struct{}{}
	for _, e := range events {
		if e.Payload.WorkOrderID != "" {
			workOrders[e.Payload.WorkOrderID] = struct{}{}
		}
		if e.Type == domain.EventMaintenanceStarted {
			summary.MaintenanceCycles++
		}
	}
	summary.WorkOrderCount = len(workOrders)

	last := events[len(events)-1].CreatedAt
	summary.LastEventAt = &last
	return summary, nil
}

// GetTimeline returns the chronological history enriched with holder names
// and work-order references. Holder links are soft: a holder that no longer
// resolves is shown as unknown rather than failing the whole view.
func (uc *HistoryUseCase) GetTimeline(ctx context.Context, companyID, assetID string) (*inbound.TimelineResponse, error) {
	events, err := uc.events.ListAllByAsset(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.ErrAssetNotFound
	}

	holderNames := map[string]string{}
	entries := make([]*inbound.TimelineEntry, 0, len(events))
	for _, e := range events {
		entry := &inbound.TimelineEntry{Event: e}

		if e.To.HolderID != nil {
			entry.HolderName = uc.holderName(ctx, companyID, *e.To.HolderID, holderNames)
		}

		if e.Payload.WorkOrderID != "" && uc.workOrders != nil {
			ref, err := uc.workOrders.Resolve(ctx, companyID, e.Payload.WorkOrderID)
			if err != nil {
				uc.logger.Warn(ctx, "work order lookup failed", map[string]interface{}{
					"work_order_id": e.Payload.WorkOrderID,
				})
			} else if ref != nil {
				entry.WorkOrder = &inbound.WorkOrderView{ID: ref.ID, Number: ref.Number, Title: ref.Title}
			}
		}

		entries = append(entries, entry)
	}

	return &inbound.TimelineResponse{AssetID: assetID, Entries: entries}, nil
}

func (uc *HistoryUseCase) holderName(ctx context.Context, companyID, holderID string, cache map[string]string) string {
	if name, ok := cache[holderID]; ok {
		return name
	}
	name := "unknown holder"
	if holder, err := uc.holders.FindByID(ctx, companyID, holderID); err == nil {
		name = holder.Name
	}
	cache[holderID] = name
	return name
}

// VerifyProjection replays the full event sequence and compares the result
// with the stored projection. The two disagreeing means the subsystem's core
// invariant is broken for that asset.
func (uc *HistoryUseCase) VerifyProjection(ctx context.Context, companyID, assetID string) (*inbound.IntegrityReport, error) {
	stored, err := uc.store.GetState(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	events, err := uc.events.ListAllByAsset(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}

	replayed, err := domain.Replay(events)
	if err != nil {
		return nil, err
	}

	report := &inbound.IntegrityReport{
		AssetID:    assetID,
		Consistent: stored.Equivalent(replayed),
		Stored:     stored,
		Replayed:   replayed,
	}
	if !report.Consistent {
		uc.logger.Error(ctx, "projection diverged from audit history", domain.ErrCorruptedHistory, map[string]interface{}{
			"asset_id":         assetID,
			"stored_version":   stored.Version,
			"replayed_version": replayed.Version,
		})
	}
	return report, nil
}
