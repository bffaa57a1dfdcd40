package outbound

import "context"

// WorkOrderRef is the subset of an external work order shown on timelines.
type WorkOrderRef struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Title  string `json:"title,omitempty"`
}

// WorkOrderResolver looks up work orders referenced by audit events in the
// external work-order system. A failed lookup is not an error for the
// timeline; the reference is shown unresolved.
type WorkOrderResolver interface {
	Resolve(ctx context.Context, companyID, workOrderID string) (*WorkOrderRef, error)
}
