package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicketState is the sub-lifecycle of one maintenance cycle, nested inside
// the em_manutencao status.
type TicketState string

const (
	TicketOpened    TicketState = "opened"
	TicketDiagnosed TicketState = "diagnosed"
	TicketClosed    TicketState = "closed"
)

// MaintenanceOutcome classifies how a maintenance cycle ended and selects
// the lifecycle transition that follows: repaired returns the asset to
// disponivel, scrapped decommissions it.
type MaintenanceOutcome string

const (
	OutcomeRepaired MaintenanceOutcome = "repaired"
	OutcomeScrapped MaintenanceOutcome = "scrapped"
)

// MaintenanceTicket records one maintenance cycle. At most one ticket per
// asset may be in a non-closed state at any time.
type MaintenanceTicket struct {
	ID        string      `json:"id"`
	CompanyID string      `json:"company_id"`
	AssetID   string      `json:"asset_id"`
	State     TicketState `json:"state"`

	DefectReport     string     `json:"defect_report"`
	Diagnosis        string     `json:"diagnosis,omitempty"`
	EstimatedCents   int64      `json:"estimated_cents,omitempty"`
	PromisedReturnAt *time.Time `json:"promised_return_at,omitempty"`

	Outcome      MaintenanceOutcome `json:"outcome,omitempty"`
	ClosingNotes string             `json:"closing_notes,omitempty"`

	OpenedAt    time.Time  `json:"opened_at"`
	OpenedBy    string     `json:"opened_by"`
	DiagnosedAt *time.Time `json:"diagnosed_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ClosedBy    string     `json:"closed_by,omitempty"`
}

// NewMaintenanceTicket opens a ticket for the asset. The defect report is
// mandatory: it is what the technician has to work from.
func NewMaintenanceTicket(companyID, assetID, actorID, defectReport string) (*MaintenanceTicket, error) {
	if strings.TrimSpace(defectReport) == "" {
		return nil, NewValidationError("defect_report", "defect report is required")
	}
	return &MaintenanceTicket{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		AssetID:      assetID,
		State:        TicketOpened,
		DefectReport: strings.TrimSpace(defectReport),
		OpenedAt:     time.Now().UTC(),
		OpenedBy:     actorID,
	}, nil
}

// Open reports whether the ticket still holds the asset in maintenance.
func (t *MaintenanceTicket) Open() bool {
	return t.State != TicketClosed
}

// ValidOutcome reports whether o is a known closing classification.
func ValidOutcome(o MaintenanceOutcome) bool {
	return o == OutcomeRepaired || o == OutcomeScrapped
}
