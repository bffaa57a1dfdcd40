package outbound

import (
	"context"

	"github.com/ativus/ativus/domain"
)

// TransitionWrite is one atomic lifecycle command: the audit event to
// append, the projection it produces, and the optional maintenance ticket
// side effects. Implementations apply all of it in a single unit of work or
// none of it.
type TransitionWrite struct {
	// Event to append. Event.Sequence must equal State.Version.
	Event *domain.AuditEvent

	// State is the projection after the event.
	State *domain.LifecycleState

	// ExpectedVersion gates the write: if the stored projection no longer
	// holds this version the command fails with ErrConcurrentModification.
	ExpectedVersion int64

	// OpenTicket inserts a new maintenance ticket (MAINTENANCE_STARTED).
	OpenTicket *domain.MaintenanceTicket

	// CloseTicket persists the closed ticket (MAINTENANCE_ENDED).
	CloseTicket *domain.MaintenanceTicket
}

// LifecycleStore is the write side of the lifecycle subsystem.
type LifecycleStore interface {
	// Register creates the asset row, the initial projection and the
	// CREATED event transactionally. A serial collision returns
	// ErrDuplicateSerial.
	Register(ctx context.Context, asset *domain.Asset, state *domain.LifecycleState, event *domain.AuditEvent) error

	// GetState loads the current projection.
	GetState(ctx context.Context, companyID, assetID string) (*domain.LifecycleState, error)

	// Apply executes one validated transition atomically.
	Apply(ctx context.Context, w TransitionWrite) error
}
