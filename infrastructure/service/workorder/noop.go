package workorder

import (
	"context"

	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/infrastructure/service/logger"
)

// noopResolver is used when no work-order system is configured. Every
// lookup resolves to nothing, so timelines show raw work order IDs.
type noopResolver struct {
	logger logger.Logger
}

// NewNoopResolver builds a resolver that never resolves anything.
func NewNoopResolver(log logger.Logger) outbound.WorkOrderResolver {
	return &noopResolver{logger: log}
}

func (r *noopResolver) Resolve(ctx context.Context, companyID, workOrderID string) (*outbound.WorkOrderRef, error) {
	return nil, nil
}
