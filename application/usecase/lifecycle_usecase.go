package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
)

// LifecycleUseCase implements the lifecycle command surface. Every command
// follows the same shape: load the projection, validate the transition
// against it, build the audit event plus the next projection, and hand both
// to the store as one atomic write gated on the projection version.
type LifecycleUseCase struct {
	store   outbound.LifecycleStore
	assets  outbound.AssetRepository
	holders outbound.HolderRepository
	tickets outbound.MaintenanceRepository
	machine *MaintenanceMachine
	feed    outbound.EventPublisher
	logger  outbound.Logger
	now     func() time.Time
}

func NewLifecycleUseCase(
	store outbound.LifecycleStore,
	assets outbound.AssetRepository,
	holders outbound.HolderRepository,
	tickets outbound.MaintenanceRepository,
	log outbound.Logger,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		store:   store,
		assets:  assets,
		holders: holders,
		tickets: tickets,
		machine: NewMaintenanceMachine(),
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the command clock. Used by tests.
func (uc *LifecycleUseCase) WithClock(now func() time.Time) *LifecycleUseCase {
	uc.now = now
	return uc
}

// WithPublisher attaches a live feed for appended events.
func (uc *LifecycleUseCase) WithPublisher(feed outbound.EventPublisher) *LifecycleUseCase {
	uc.feed = feed
	return uc
}

func (uc *LifecycleUseCase) publish(event *domain.AuditEvent) {
	if uc.feed != nil {
		uc.feed.Publish(event)
	}
}

// Register creates the asset, its initial projection and the CREATED event.
func (uc *LifecycleUseCase) Register(ctx context.Context, req inbound.RegisterAssetRequest) (*inbound.AssetResponse, error) {
	asset, err := domain.NewAsset(req.CompanyID, req.SerialNumber, req.Type)
	if err != nil {
		return nil, err
	}
	asset.Manufacturer = req.Manufacturer
	asset.Model = req.Model
	asset.AcquiredAt = req.AcquiredAt
	asset.CostCents = req.CostCents
	asset.WarrantyMonths = req.WarrantyMonths
	asset.InvoiceRef = req.InvoiceRef

	if req.DepotID != nil {
		if _, err := uc.holders.Resolve(ctx, req.CompanyID, domain.HolderDepot, *req.DepotID); err != nil {
			return nil, fmt.Errorf("%w: depot %s", domain.ErrInvalidDestination, *req.DepotID)
		}
	}

	now := uc.now()
	asset.CreatedAt = now
	state := domain.InitialState(req.CompanyID, asset.ID, req.DepotID)
	state.UpdatedAt = now

	event := domain.NewAuditEvent(
		req.CompanyID, asset.ID, state.Version,
		domain.EventCreated, req.ActorID,
		domain.StateSnapshot{HolderKind: domain.HolderNone},
		state.Snapshot(),
		domain.EventPayload{Notes: "registered " + asset.SerialNumber},
	)
	event.CreatedAt = now

	if err := uc.store.Register(ctx, asset, state, event); err != nil {
		return nil, err
	}

	uc.publish(event)
	uc.logger.Info(ctx, "asset registered", map[string]interface{}{
		"asset_id": asset.ID,
		"serial":   asset.SerialNumber,
		"company":  asset.CompanyID,
	})
	return &inbound.AssetResponse{Asset: asset, State: state}, nil
}

// Transfer moves the asset to a resolvable destination. Depots make it
// disponivel, technicians and clients make it em_uso.
func (uc *LifecycleUseCase) Transfer(ctx context.Context, req inbound.TransferRequest) (*inbound.StateResponse, error) {
	switch req.DestinationKind {
	case domain.HolderDepot, domain.HolderTechnician, domain.HolderClient:
	default:
		return nil, domain.NewValidationError("destination_kind", "must be depot, technician or client")
	}

	state, err := uc.loadState(ctx, req.CompanyID, req.AssetID)
	if err != nil {
		return nil, err
	}
	if state.Terminal() {
		return nil, fmt.Errorf("%w: asset %s is decommissioned", domain.ErrInvalidTransition, req.AssetID)
	}
	if state.Status == domain.StatusMaintenance {
		return nil, fmt.Errorf("%w: asset %s is under maintenance and not assignable", domain.ErrInvalidTransition, req.AssetID)
	}
	if err := uc.checkVersion(state, req.IfVersion); err != nil {
		return nil, err
	}

	holder, err := uc.holders.Resolve(ctx, req.CompanyID, req.DestinationKind, req.DestinationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrInvalidDestination, req.DestinationKind, req.DestinationID)
	}

	to := domain.StateSnapshot{
		Status:     domain.StatusForHolder(holder.Kind),
		HolderKind: holder.Kind,
		HolderID:   &holder.ID,
	}
	if !domain.CanTransition(state.Status, to.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, state.Status, to.Status)
	}

	state2, event, err := uc.apply(ctx, state, domain.EventTransferred, req.ActorID, to, domain.EventPayload{
		Reason:      req.Reason,
		WorkOrderID: req.WorkOrderID,
	}, nil, nil)
	if err != nil {
		return nil, err
	}

	uc.logger.Info(ctx, "asset transferred", map[string]interface{}{
		"asset_id":    req.AssetID,
		"destination": string(holder.Kind) + ":" + holder.ID,
		"status":      string(state2.Status),
		"version":     state2.Version,
	})
	return &inbound.StateResponse{State: state2, Event: event}, nil
}

// StartMaintenance opens a ticket and moves the asset into em_manutencao.
// The current holder is retained for provenance.
func (uc *LifecycleUseCase) StartMaintenance(ctx context.Context, req inbound.StartMaintenanceRequest) (*inbound.MaintenanceResponse, error) {
	state, err := uc.loadState(ctx, req.CompanyID, req.AssetID)
	if err != nil {
		return nil, err
	}
	if state.Terminal() {
		return nil, fmt.Errorf("%w: asset %s is decommissioned", domain.ErrInvalidTransition, req.AssetID)
	}
	if state.Status == domain.StatusMaintenance {
		return nil, fmt.Errorf("%w: asset %s", domain.ErrTicketAlreadyOpen, req.AssetID)
	}
	if err := uc.checkVersion(state, req.IfVersion); err != nil {
		return nil, err
	}

	ticket, err := domain.NewMaintenanceTicket(req.CompanyID, req.AssetID, req.ActorID, req.DefectReport)
	if err != nil {
		return nil, err
	}
	ticket.PromisedReturnAt = req.PromisedReturnAt
	ticket.OpenedAt = uc.now()

	to := domain.StateSnapshot{
		Status:     domain.StatusMaintenance,
		HolderKind: state.HolderKind,
		HolderID:   state.HolderID,
	}
	state2, event, err := uc.apply(ctx, state, domain.EventMaintenanceStarted, req.ActorID, to, domain.EventPayload{
		Notes:       req.DefectReport,
		TicketID:    ticket.ID,
		WorkOrderID: req.WorkOrderID,
	}, ticket, nil)
	if err != nil {
		return nil, err
	}

	uc.logger.Info(ctx, "maintenance started", map[string]interface{}{
		"asset_id":  req.AssetID,
		"ticket_id": ticket.ID,
	})
	return &inbound.MaintenanceResponse{State: state2, Ticket: ticket, Event: event}, nil
}

// EndMaintenance closes the open ticket. A repaired asset returns to
// disponivel (keeping a depot holder when it had one); a scrapped asset is
// decommissioned in the same command.
func (uc *LifecycleUseCase) EndMaintenance(ctx context.Context, req inbound.EndMaintenanceRequest) (*inbound.MaintenanceResponse, error) {
	if !domain.ValidOutcome(req.Outcome) {
		return nil, domain.NewValidationError("outcome", "must be repaired or scrapped")
	}

	state, err := uc.loadState(ctx, req.CompanyID, req.AssetID)
	if err != nil {
		return nil, err
	}
	if state.Status != domain.StatusMaintenance {
		return nil, fmt.Errorf("%w: asset %s", domain.ErrNoOpenTicket, req.AssetID)
	}
	if err := uc.checkVersion(state, req.IfVersion); err != nil {
		return nil, err
	}

	ticket, err := uc.tickets.FindOpenByAsset(ctx, req.CompanyID, req.AssetID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return nil, fmt.Errorf("%w: asset %s", domain.ErrNoOpenTicket, req.AssetID)
		}
		return nil, err
	}

	now := uc.now()
	if err := uc.machine.Close(ticket, &closeArgs{
		Outcome:      req.Outcome,
		ClosingNotes: req.ClosingNotes,
		ActorID:      req.ActorID,
		Now:          now,
	}); err != nil {
		return nil, err
	}

	var to domain.StateSnapshot
	if req.Outcome == domain.OutcomeRepaired {
		to = domain.StateSnapshot{Status: domain.StatusAvailable, HolderKind: domain.HolderNone}
		if state.HolderKind == domain.HolderDepot {
			to.HolderKind = domain.HolderDepot
			to.HolderID = state.HolderID
		}
	} else {
		to = domain.StateSnapshot{Status: domain.StatusDecommissioned, HolderKind: domain.HolderNone}
	}

	state2, event, err := uc.apply(ctx, state, domain.EventMaintenanceEnded, req.ActorID, to, domain.EventPayload{
		Reason:   string(req.Outcome),
		Notes:    req.ClosingNotes,
		TicketID: ticket.ID,
	}, nil, ticket)
	if err != nil {
		return nil, err
	}

	uc.logger.Info(ctx, "maintenance ended", map[string]interface{}{
		"asset_id":  req.AssetID,
		"ticket_id": ticket.ID,
		"outcome":   string(req.Outcome),
	})
	return &inbound.MaintenanceResponse{State: state2, Ticket: ticket, Event: event}, nil
}

// Decommission retires the asset permanently. When the asset is under
// maintenance the open ticket is closed as scrapped in the same write, so
// the "one open ticket iff em_manutencao" invariant survives.
func (uc *LifecycleUseCase) Decommission(ctx context.Context, req inbound.DecommissionRequest) (*inbound.StateResponse, error) {
	if req.Reason == "" {
		return nil, domain.NewValidationError("reason", "decommission reason is required")
	}

	state, err := uc.loadState(ctx, req.CompanyID, req.AssetID)
	if err != nil {
		return nil, err
	}
	if state.Terminal() {
		return nil, fmt.Errorf("%w: asset %s is already decommissioned", domain.ErrInvalidTransition, req.AssetID)
	}
	if err := uc.checkVersion(state, req.IfVersion); err != nil {
		return nil, err
	}

	var closing *domain.MaintenanceTicket
	if state.Status == domain.StatusMaintenance {
		ticket, err := uc.tickets.FindOpenByAsset(ctx, req.CompanyID, req.AssetID)
		if err != nil && !errors.Is(err, domain.ErrTicketNotFound) {
			return nil, err
		}
		if ticket != nil {
			if err := uc.machine.Close(ticket, &closeArgs{
				Outcome:      domain.OutcomeScrapped,
				ClosingNotes: req.Reason,
				ActorID:      req.ActorID,
				Now:          uc.now(),
			}); err != nil {
				return nil, err
			}
			closing = ticket
		}
	}

	to := domain.StateSnapshot{Status: domain.StatusDecommissioned, HolderKind: domain.HolderNone}
	state2, event, err := uc.apply(ctx, state, domain.EventDecommissioned, req.ActorID, to, domain.EventPayload{
		Reason: req.Reason,
	}, nil, closing)
	if err != nil {
		return nil, err
	}

	uc.logger.Info(ctx, "asset decommissioned", map[string]interface{}{
		"asset_id": req.AssetID,
		"reason":   req.Reason,
	})
	return &inbound.StateResponse{State: state2, Event: event}, nil
}

// MarkUnavailable parks the asset with no holder until someone brings it
// back into circulation with a transfer.
func (uc *LifecycleUseCase) MarkUnavailable(ctx context.Context, req inbound.MarkUnavailableRequest) (*inbound.StateResponse, error) {
	if req.Reason == "" {
		return nil, domain.NewValidationError("reason", "reason is required")
	}

	state, err := uc.loadState(ctx, req.CompanyID, req.AssetID)
	if err != nil {
		return nil, err
	}
	if state.Terminal() {
		return nil, fmt.Errorf("%w: asset %s is decommissioned", domain.ErrInvalidTransition, req.AssetID)
	}
	if state.Status == domain.StatusMaintenance {
		return nil, fmt.Errorf("%w: end maintenance before marking unavailable", domain.ErrInvalidTransition)
	}
	if err := uc.checkVersion(state, req.IfVersion); err != nil {
		return nil, err
	}

	to := domain.StateSnapshot{Status: domain.StatusUnavailable, HolderKind: domain.HolderNone}
	state2, event, err := uc.apply(ctx, state, domain.EventAdjustment, req.ActorID, to, domain.EventPayload{
		Reason: req.Reason,
	}, nil, nil)
	if err != nil {
		return nil, err
	}

	uc.logger.Info(ctx, "asset marked unavailable", map[string]interface{}{
		"asset_id": req.AssetID,
		"reason":   req.Reason,
	})
	return &inbound.StateResponse{State: state2, Event: event}, nil
}

// RecordObservation appends an event without changing status or holder. It
// works on any asset, decommissioned ones included.
func (uc *LifecycleUseCase) RecordObservation(ctx context.Context, req inbound.ObservationRequest) (*inbound.ObservationResponse, error) {
	if req.Note == "" {
		return nil, domain.NewValidationError("note", "observation note is required")
	}

	state, err := uc.loadState(ctx, req.CompanyID, req.AssetID)
	if err != nil {
		return nil, err
	}

	_, event, err := uc.apply(ctx, state, domain.EventObservation, req.ActorID, state.Snapshot(), domain.EventPayload{
		Notes:       req.Note,
		Category:    req.Category,
		WorkOrderID: req.WorkOrderID,
	}, nil, nil)
	if err != nil {
		return nil, err
	}

	return &inbound.ObservationResponse{Event: event}, nil
}

// GetAsset returns the asset record together with its current projection.
func (uc *LifecycleUseCase) GetAsset(ctx context.Context, companyID, assetID string) (*inbound.AssetResponse, error) {
	asset, err := uc.assets.FindByID(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	state, err := uc.store.GetState(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	return &inbound.AssetResponse{Asset: asset, State: state}, nil
}

// ListAssets pages through the registry with optional filters.
func (uc *LifecycleUseCase) ListAssets(ctx context.Context, req inbound.ListAssetsRequest) (*inbound.ListAssetsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	filter := domain.AssetFilter{
		Offset: (req.Page - 1) * req.Limit,
		Limit:  req.Limit,
	}
	if req.Status != "" {
		s := domain.Status(req.Status)
		if !domain.ValidStatus(s) {
			return nil, domain.NewValidationError("status", "unknown status "+req.Status)
		}
		filter.Status = &s
	}
	if req.Type != "" {
		filter.Type = &req.Type
	}
	if req.HolderKind != "" {
		k := domain.HolderKind(req.HolderKind)
		if !domain.ValidHolderKind(k) {
			return nil, domain.NewValidationError("holder_kind", "unknown holder kind "+req.HolderKind)
		}
		filter.HolderKind = &k
	}
	if req.HolderID != "" {
		filter.HolderID = &req.HolderID
	}

	assets, total, err := uc.assets.FindAll(ctx, req.CompanyID, filter)
	if err != nil {
		return nil, err
	}
	return &inbound.ListAssetsResponse{Assets: assets, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

func (uc *LifecycleUseCase) loadState(ctx context.Context, companyID, assetID string) (*domain.LifecycleState, error) {
	if assetID == "" {
		return nil, domain.NewValidationError("asset_id", "asset id is required")
	}
	state, err := uc.store.GetState(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// checkVersion enforces the caller-supplied optimistic precondition before
// the store-level CAS runs.
func (uc *LifecycleUseCase) checkVersion(state *domain.LifecycleState, ifVersion *int64) error {
	if ifVersion != nil && *ifVersion != state.Version {
		return fmt.Errorf("%w: expected version %d, current is %d",
			domain.ErrConcurrentModification, *ifVersion, state.Version)
	}
	return nil
}

// apply builds the event plus next projection and writes both atomically.
func (uc *LifecycleUseCase) apply(
	ctx context.Context,
	state *domain.LifecycleState,
	eventType domain.EventType,
	actorID string,
	to domain.StateSnapshot,
	payload domain.EventPayload,
	openTicket, closeTicket *domain.MaintenanceTicket,
) (*domain.LifecycleState, *domain.AuditEvent, error) {
	now := uc.now()
	next := state.Next(to, now)

	event := domain.NewAuditEvent(state.CompanyID, state.AssetID, next.Version, eventType, actorID, state.Snapshot(), to, payload)
	event.CreatedAt = now

	err := uc.store.Apply(ctx, outbound.TransitionWrite{
		Event:           event,
		State:           next,
		ExpectedVersion: state.Version,
		OpenTicket:      openTicket,
		CloseTicket:     closeTicket,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			uc.logger.Warn(ctx, "lifecycle command lost version race", map[string]interface{}{
				"asset_id": state.AssetID,
				"expected": state.Version,
			})
		} else {
			uc.logger.Error(ctx, "lifecycle command failed", err, map[string]interface{}{
				"asset_id": state.AssetID,
				"event":    string(eventType),
			})
		}
		return nil, nil, err
	}
	uc.publish(event)
	return next, event, nil
}
