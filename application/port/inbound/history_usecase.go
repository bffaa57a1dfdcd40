package inbound

import (
	"context"
	"time"

	"github.com/ativus/ativus/domain"
)

// History page
type HistoryRequest struct {
	CompanyID string `json:"-"`
	AssetID   string `json:"-"`
	Page      int    `json:"page" validate:"min=1"`
	Limit     int    `json:"limit" validate:"min=1,max=200"`
}

type HistoryResponse struct {
	Events []*domain.AuditEvent `json:"events"`
	Total  int                  `json:"total"`
	Page   int                  `json:"page"`
	Limit  int                  `json:"limit"`
}

// Summary aggregates
type HistorySummary struct {
	AssetID           string     `json:"asset_id"`
	EventCount        int        `json:"event_count"`
	WorkOrderCount    int        `json:"work_order_count"`
	MaintenanceCycles int        `json:"maintenance_cycles"`
	RegisteredAt      time.Time  `json:"registered_at"`
	LastEventAt       *time.Time `json:"last_event_at,omitempty"`
}

// TimelineEntry is one audit event enriched with resolved collaborator data
// for display.
type TimelineEntry struct {
	Event      *domain.AuditEvent `json:"event"`
	HolderName string             `json:"holder_name,omitempty"`
	WorkOrder  *WorkOrderView     `json:"work_order,omitempty"`
}

type WorkOrderView struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Title  string `json:"title,omitempty"`
}

type TimelineResponse struct {
	AssetID string           `json:"asset_id"`
	Entries []*TimelineEntry `json:"entries"`
}

// IntegrityReport is the result of replaying an asset's history against its
// stored projection.
type IntegrityReport struct {
	AssetID    string                 `json:"asset_id"`
	Consistent bool                   `json:"consistent"`
	Stored     *domain.LifecycleState `json:"stored"`
	Replayed   *domain.LifecycleState `json:"replayed"`
}

// HistoryUseCase is the read-only aggregation over the audit trail. It never
// writes; everything it returns can be recomputed at any time.
type HistoryUseCase interface {
	GetHistory(ctx context.Context, req HistoryRequest) (*HistoryResponse, error)
	GetSummary(ctx context.Context, companyID, assetID string) (*HistorySummary, error)
	GetTimeline(ctx context.Context, companyID, assetID string) (*TimelineResponse, error)
	VerifyProjection(ctx context.Context, companyID, assetID string) (*IntegrityReport, error)
}

// Dashboard
type DashboardResponse struct {
	CompanyID string         `json:"company_id"`
	ByStatus  map[string]int `json:"by_status"`
	ByType    map[string]int `json:"by_type"`
	Total     int            `json:"total"`
	CachedAt  time.Time      `json:"cached_at"`
}

type DashboardUseCase interface {
	GetDashboard(ctx context.Context, companyID string) (*DashboardResponse, error)
}
