package outbound

import (
	"context"

	"github.com/ativus/ativus/domain"
)

// AssetRepository owns asset identity records. Registration is handled by
// LifecycleStore.Register so the creation event, the initial projection and
// the asset row share one transaction.
type AssetRepository interface {
	FindByID(ctx context.Context, companyID, id string) (*domain.Asset, error)
	FindBySerial(ctx context.Context, companyID, serial string) (*domain.Asset, error)
	FindAll(ctx context.Context, companyID string, filter domain.AssetFilter) ([]*domain.Asset, int, error)
	CountByStatus(ctx context.Context, companyID string) (map[domain.Status]int, error)
	CountByType(ctx context.Context, companyID string) (map[string]int, error)
}
