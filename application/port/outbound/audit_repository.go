package outbound

import (
	"context"

	"github.com/ativus/ativus/domain"
)

// AuditRepository is the read side of the audit trail. Events are appended
// only through LifecycleStore; nothing may update or delete them.
type AuditRepository interface {
	// ListByAsset returns one page of events in sequence order plus the
	// total event count.
	ListByAsset(ctx context.Context, companyID, assetID string, offset, limit int) ([]*domain.AuditEvent, int, error)

	// ListAllByAsset returns the complete ordered history, for replay and
	// aggregation.
	ListAllByAsset(ctx context.Context, companyID, assetID string) ([]*domain.AuditEvent, error)
}
