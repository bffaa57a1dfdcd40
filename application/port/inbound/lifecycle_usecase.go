package inbound

import (
	"context"
	"time"

	"github.com/ativus/ativus/domain"
)

// Register
type RegisterAssetRequest struct {
	CompanyID string `json:"-"`
	ActorID   string `json:"-"`

	SerialNumber   string     `json:"serial_number" validate:"required,min=1,max=64"`
	Type           string     `json:"type" validate:"required,min=1,max=64"`
	Manufacturer   string     `json:"manufacturer,omitempty"`
	Model          string     `json:"model,omitempty"`
	AcquiredAt     *time.Time `json:"acquired_at,omitempty"`
	CostCents      int64      `json:"cost_cents,omitempty"`
	WarrantyMonths int        `json:"warranty_months,omitempty"`
	InvoiceRef     string     `json:"invoice_ref,omitempty"`

	// DepotID optionally places the asset in a default depot on creation.
	DepotID *string `json:"depot_id,omitempty"`
}

type AssetResponse struct {
	Asset *domain.Asset          `json:"asset"`
	State *domain.LifecycleState `json:"state"`
}

// Transfer
type TransferRequest struct {
	CompanyID string `json:"-"`
	ActorID   string `json:"-"`
	AssetID   string `json:"-"`

	DestinationKind domain.HolderKind `json:"destination_kind" validate:"required"`
	DestinationID   string            `json:"destination_id" validate:"required"`
	Reason          string            `json:"reason,omitempty"`
	WorkOrderID     string            `json:"work_order_id,omitempty"`

	// IfVersion lets the caller assert the projection version it last saw.
	// When nil the current version is used for the optimistic check.
	IfVersion *int64 `json:"if_version,omitempty"`
}

type StateResponse struct {
	State *domain.LifecycleState `json:"state"`
	Event *domain.AuditEvent     `json:"event"`
}

// Maintenance
type StartMaintenanceRequest struct {
	CompanyID string `json:"-"`
	ActorID   string `json:"-"`
	AssetID   string `json:"-"`

	DefectReport     string     `json:"defect_report" validate:"required"`
	WorkOrderID      string     `json:"work_order_id,omitempty"`
	PromisedReturnAt *time.Time `json:"promised_return_at,omitempty"`
	IfVersion        *int64     `json:"if_version,omitempty"`
}

type EndMaintenanceRequest struct {
	CompanyID string `json:"-"`
	ActorID   string `json:"-"`
	AssetID   string `json:"-"`

	Outcome      domain.MaintenanceOutcome `json:"outcome" validate:"required"`
	ClosingNotes string                    `json:"closing_notes,omitempty"`
	IfVersion    *int64                    `json:"if_version,omitempty"`
}

type MaintenanceResponse struct {
	State  *domain.LifecycleState    `json:"state"`
	Ticket *domain.MaintenanceTicket `json:"ticket"`
	Event  *domain.AuditEvent        `json:"event"`
}

// Decommission
type DecommissionRequest struct {
	CompanyID string `json:"-"`
	ActorID   string `json:"-"`
	AssetID   string `json:"-"`

	Reason    string `json:"reason" validate:"required"`
	IfVersion *int64 `json:"if_version,omitempty"`
}

// MarkUnavailable takes the asset out of circulation without a holder.
type MarkUnavailableRequest struct {
	CompanyID string `json:"-"`
	ActorID   string `json:"-"`
	AssetID   string `json:"-"`

	Reason    string `json:"reason" validate:"required"`
	IfVersion *int64 `json:"if_version,omitempty"`
}

// Observation
type ObservationRequest struct {
	CompanyID string `json:"-"`
	ActorID   string `json:"-"`
	AssetID   string `json:"-"`

	Note        string `json:"note" validate:"required"`
	Category    string `json:"category,omitempty"`
	WorkOrderID string `json:"work_order_id,omitempty"`
}

type ObservationResponse struct {
	Event *domain.AuditEvent `json:"event"`
}

// Listing
type ListAssetsRequest struct {
	CompanyID  string `json:"-"`
	Status     string `json:"status,omitempty"`
	Type       string `json:"type,omitempty"`
	HolderKind string `json:"holder_kind,omitempty"`
	HolderID   string `json:"holder_id,omitempty"`
	Page       int    `json:"page" validate:"min=1"`
	Limit      int    `json:"limit" validate:"min=1,max=100"`
}

type ListAssetsResponse struct {
	Assets []*domain.Asset `json:"assets"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// LifecycleUseCase is the command surface of the equipment lifecycle core
// plus the registry reads. Every command is atomic: either the audit event
// and the projection update both land, or neither does.
type LifecycleUseCase interface {
	Register(ctx context.Context, req RegisterAssetRequest) (*AssetResponse, error)
	Transfer(ctx context.Context, req TransferRequest) (*StateResponse, error)
	StartMaintenance(ctx context.Context, req StartMaintenanceRequest) (*MaintenanceResponse, error)
	EndMaintenance(ctx context.Context, req EndMaintenanceRequest) (*MaintenanceResponse, error)
	Decommission(ctx context.Context, req DecommissionRequest) (*StateResponse, error)
	MarkUnavailable(ctx context.Context, req MarkUnavailableRequest) (*StateResponse, error)
	RecordObservation(ctx context.Context, req ObservationRequest) (*ObservationResponse, error)

	GetAsset(ctx context.Context, companyID, assetID string) (*AssetResponse, error)
	ListAssets(ctx context.Context, req ListAssetsRequest) (*ListAssetsResponse, error)
}
