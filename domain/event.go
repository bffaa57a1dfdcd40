package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies one audit event. The set is closed; free-form entries
// use OBSERVATION or ADJUSTMENT.
type EventType string

const (
	EventCreated            EventType = "CREATED"
	EventTransferred        EventType = "TRANSFERRED"
	EventMaintenanceStarted EventType = "MAINTENANCE_STARTED"
	EventMaintenanceEnded   EventType = "MAINTENANCE_ENDED"
	EventDecommissioned     EventType = "DECOMMISSIONED"
	EventObservation        EventType = "OBSERVATION"
	EventAdjustment         EventType = "ADJUSTMENT"
)

// EventPayload carries the free-text details of an audit event. Persisted as
// a JSON document alongside the structured columns.
type EventPayload struct {
	Reason      string `json:"reason,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Category    string `json:"category,omitempty"`
	WorkOrderID string `json:"work_order_id,omitempty"`
	TicketID    string `json:"ticket_id,omitempty"`
}

// StateSnapshot is the status/holder pair recorded on both sides of an
// audit event.
type StateSnapshot struct {
	Status     Status     `json:"status"`
	HolderKind HolderKind `json:"holder_kind"`
	HolderID   *string    `json:"holder_id,omitempty"`
}

// AuditEvent is one immutable, ordered record of something that happened to
// an asset. Identity is (asset_id, sequence); the sequence is assigned in
// the same transaction that bumps LifecycleState.Version, so it is gap-free
// and strictly increasing by construction.
type AuditEvent struct {
	ID        string        `json:"id"`
	CompanyID string        `json:"company_id"`
	AssetID   string        `json:"asset_id"`
	Sequence  int64         `json:"sequence"`
	Type      EventType     `json:"type"`
	ActorID   string        `json:"actor_id"`
	From      StateSnapshot `json:"from"`
	To        StateSnapshot `json:"to"`
	Payload   EventPayload  `json:"payload"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewAuditEvent builds an event for the transition from -> to. The sequence
// must be the version the projection will hold after the event is applied.
func NewAuditEvent(companyID, assetID string, seq int64, t EventType, actorID string, from, to StateSnapshot, payload EventPayload) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		AssetID:   assetID,
		Sequence:  seq,
		Type:      t,
		ActorID:   actorID,
		From:      from,
		To:        to,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// StateChanging reports whether the event moves status or holder. OBSERVATION
// events never do; ADJUSTMENT events may.
func (e *AuditEvent) StateChanging() bool {
	if e.From.Status != e.To.Status || e.From.HolderKind != e.To.HolderKind {
		return true
	}
	if (e.From.HolderID == nil) != (e.To.HolderID == nil) {
		return true
	}
	return e.From.HolderID != nil && *e.From.HolderID != *e.To.HolderID
}
