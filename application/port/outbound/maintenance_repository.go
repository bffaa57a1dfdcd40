package outbound

import (
	"context"

	"github.com/ativus/ativus/domain"
)

// MaintenanceRepository reads and amends maintenance tickets. Ticket
// creation and closing travel inside LifecycleStore.Apply; only the
// diagnose step writes here directly.
type MaintenanceRepository interface {
	FindOpenByAsset(ctx context.Context, companyID, assetID string) (*domain.MaintenanceTicket, error)
	FindByID(ctx context.Context, companyID, ticketID string) (*domain.MaintenanceTicket, error)
	FindAllByAsset(ctx context.Context, companyID, assetID string) ([]*domain.MaintenanceTicket, error)

	// Update persists diagnosis fields and state on a still-open ticket.
	Update(ctx context.Context, ticket *domain.MaintenanceTicket) error
}
