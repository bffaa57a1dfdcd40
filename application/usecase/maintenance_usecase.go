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

// MaintenanceUseCase handles the in-ticket workflow. It only ever writes
// ticket fields; lifecycle status stays untouched here.
type MaintenanceUseCase struct {
	tickets outbound.MaintenanceRepository
	machine *MaintenanceMachine
	logger  outbound.Logger
	now     func() time.Time
}

func NewMaintenanceUseCase(tickets outbound.MaintenanceRepository, log outbound.Logger) *MaintenanceUseCase {
	return &MaintenanceUseCase{
		tickets: tickets,
		machine: NewMaintenanceMachine(),
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Diagnose records the technician's diagnosis and cost estimate on the open
// ticket, moving it from opened to diagnosed.
func (uc *MaintenanceUseCase) Diagnose(ctx context.Context, req inbound.DiagnoseRequest) (*inbound.TicketResponse, error) {
	if req.Diagnosis == "" {
		return nil, domain.NewValidationError("diagnosis", "diagnosis is required")
	}
	if req.EstimatedCents < 0 {
		return nil, domain.NewValidationError("estimated_cents", "estimate cannot be negative")
	}

	ticket, err := uc.tickets.FindOpenByAsset(ctx, req.CompanyID, req.AssetID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return nil, fmt.Errorf("%w: asset %s", domain.ErrNoOpenTicket, req.AssetID)
		}
		return nil, err
	}

	if err := uc.machine.Diagnose(ticket, &diagnoseArgs{
		Diagnosis:        req.Diagnosis,
		EstimatedCents:   req.EstimatedCents,
		PromisedReturnAt: req.PromisedReturnAt,
		Now:              uc.now(),
	}); err != nil {
		return nil, err
	}

	if err := uc.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	uc.logger.Info(ctx, "ticket diagnosed", map[string]interface{}{
		"ticket_id":       ticket.ID,
		"asset_id":        ticket.AssetID,
		"estimated_cents": ticket.EstimatedCents,
	})
	return &inbound.TicketResponse{Ticket: ticket}, nil
}

// GetOpenTicket returns the asset's currently open ticket, if any.
func (uc *MaintenanceUseCase) GetOpenTicket(ctx context.Context, companyID, assetID string) (*inbound.TicketResponse, error) {
	ticket, err := uc.tickets.FindOpenByAsset(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	return &inbound.TicketResponse{Ticket: ticket}, nil
}

// ListTickets returns every maintenance cycle of the asset, newest first.
func (uc *MaintenanceUseCase) ListTickets(ctx context.Context, companyID, assetID string) (*inbound.ListTicketsResponse, error) {
	tickets, err := uc.tickets.FindAllByAsset(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	return &inbound.ListTicketsResponse{Tickets: tickets}, nil
}
