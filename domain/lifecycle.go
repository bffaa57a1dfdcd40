package domain

import (
	"fmt"
	"time"
)

// LifecycleState is the current projection for one asset: a materialized
// view of its audit history. It is mutated only through audit events; Replay
// over the full event sequence must reproduce it exactly.
type LifecycleState struct {
	AssetID    string     `json:"asset_id"`
	CompanyID  string     `json:"company_id"`
	Status     Status     `json:"status"`
	HolderKind HolderKind `json:"holder_kind"`
	HolderID   *string    `json:"holder_id,omitempty"`
	Version    int64      `json:"version"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// InitialState is the projection right after registration: available, held
// by the default depot when one was supplied.
func InitialState(companyID, assetID string, depotID *string) *LifecycleState {
	kind := HolderNone
	if depotID != nil {
		kind = HolderDepot
	}
	return &LifecycleState{
		AssetID:    assetID,
		CompanyID:  companyID,
		Status:     StatusAvailable,
		HolderKind: kind,
		HolderID:   depotID,
		Version:    1,
		UpdatedAt:  time.Now().UTC(),
	}
}

// Snapshot returns the status/holder pair for embedding in audit events.
func (s *LifecycleState) Snapshot() StateSnapshot {
	return StateSnapshot{Status: s.Status, HolderKind: s.HolderKind, HolderID: s.HolderID}
}

// Terminal reports whether the asset is decommissioned.
func (s *LifecycleState) Terminal() bool {
	return s.Status == StatusDecommissioned
}

// Next returns the projection after applying the given target snapshot. The
// version advances by one; the caller assigns the same number to the event's
// sequence.
func (s *LifecycleState) Next(to StateSnapshot, now time.Time) *LifecycleState {
	return &LifecycleState{
		AssetID:    s.AssetID,
		CompanyID:  s.CompanyID,
		Status:     to.Status,
		HolderKind: to.HolderKind,
		HolderID:   to.HolderID,
		Version:    s.Version + 1,
		UpdatedAt:  now,
	}
}

// Replay folds an ordered audit event sequence into the projection it
// produces. It is the from-scratch counterpart of the incremental write-time
// update and exists so stored projections can be verified and repaired.
//
// The sequence must start at 1 with a CREATED event and be gap-free;
// anything else is corruption.
func Replay(events []*AuditEvent) (*LifecycleState, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: empty event sequence", ErrCorruptedHistory)
	}
	first := events[0]
	if first.Sequence != 1 || first.Type != EventCreated {
		return nil, fmt.Errorf("%w: history must begin with CREATED at sequence 1, got %s at %d",
			ErrCorruptedHistory, first.Type, first.Sequence)
	}

	state := &LifecycleState{
		AssetID:   first.AssetID,
		CompanyID: first.CompanyID,
	}
	for i, e := range events {
		if e.Sequence != int64(i)+1 {
			return nil, fmt.Errorf("%w: sequence gap at position %d (got %d)", ErrCorruptedHistory, i, e.Sequence)
		}
		if e.AssetID != state.AssetID {
			return nil, fmt.Errorf("%w: event %s belongs to asset %s", ErrCorruptedHistory, e.ID, e.AssetID)
		}
		state.apply(e)
	}
	return state, nil
}

func (s *LifecycleState) apply(e *AuditEvent) {
	s.Status = e.To.Status
	s.HolderKind = e.To.HolderKind
	s.HolderID = e.To.HolderID
	s.Version = e.Sequence
	s.UpdatedAt = e.CreatedAt
}

// Equivalent reports whether two projections agree on everything a replay
// reproduces. UpdatedAt is excluded: the stored projection carries the write
// clock while a replayed one carries event timestamps.
func (s *LifecycleState) Equivalent(o *LifecycleState) bool {
	if s.AssetID != o.AssetID || s.Status != o.Status || s.HolderKind != o.HolderKind || s.Version != o.Version {
		return false
	}
	if (s.HolderID == nil) != (o.HolderID == nil) {
		return false
	}
	return s.HolderID == nil || *s.HolderID == *o.HolderID
}
