package outbound

import (
	"context"

	"github.com/ativus/ativus/domain"
)

// HolderRepository is the location/holder directory: the set of depots,
// technicians and clients an asset can be transferred to. It owns no
// lifecycle logic.
type HolderRepository interface {
	Create(ctx context.Context, holder *domain.Holder) error
	FindByID(ctx context.Context, companyID, id string) (*domain.Holder, error)
	FindAll(ctx context.Context, companyID string, kind *domain.HolderKind) ([]*domain.Holder, error)

	// Resolve validates a transfer destination: the holder must exist,
	// be of the given kind and be active.
	Resolve(ctx context.Context, companyID string, kind domain.HolderKind, id string) (*domain.Holder, error)
}
