package inbound

import (
	"context"
	"time"

	"github.com/ativus/ativus/domain"
)

// Diagnose
type DiagnoseRequest struct {
	CompanyID string `json:"-"`
	ActorID   string `json:"-"`
	AssetID   string `json:"-"`

	Diagnosis        string     `json:"diagnosis" validate:"required"`
	EstimatedCents   int64      `json:"estimated_cents,omitempty"`
	PromisedReturnAt *time.Time `json:"promised_return_at,omitempty"`
}

type TicketResponse struct {
	Ticket *domain.MaintenanceTicket `json:"ticket"`
}

type ListTicketsResponse struct {
	Tickets []*domain.MaintenanceTicket `json:"tickets"`
}

// MaintenanceUseCase manages the sub-lifecycle of a maintenance cycle.
// Opening and closing tickets run through LifecycleUseCase; the diagnose
// step lives here because it never touches the top-level state machine.
type MaintenanceUseCase interface {
	Diagnose(ctx context.Context, req DiagnoseRequest) (*TicketResponse, error)
	GetOpenTicket(ctx context.Context, companyID, assetID string) (*TicketResponse, error)
	ListTickets(ctx context.Context, companyID, assetID string) (*ListTicketsResponse, error)
}
