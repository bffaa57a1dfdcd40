package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Asset represents one tracked physical equipment unit. Identity fields are
// immutable after registration; the asset is never deleted, only
// decommissioned through the lifecycle.
type Asset struct {
	ID           string `json:"id"`
	CompanyID    string `json:"company_id"`
	SerialNumber string `json:"serial_number"`
	Type         string `json:"type"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`

	// Acquisition metadata
	AcquiredAt     *time.Time `json:"acquired_at,omitempty"`
	CostCents      int64      `json:"cost_cents,omitempty"`
	WarrantyMonths int        `json:"warranty_months,omitempty"`
	InvoiceRef     string     `json:"invoice_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewAsset builds a registered asset. Serial numbers are normalized to
// uppercase so uniqueness checks are case-insensitive.
func NewAsset(companyID, serial, assetType string) (*Asset, error) {
	serial = strings.ToUpper(strings.TrimSpace(serial))
	if companyID == "" {
		return nil, NewValidationError("company_id", "company id is required")
	}
	if serial == "" {
		return nil, NewValidationError("serial_number", "serial number is required")
	}
	if strings.TrimSpace(assetType) == "" {
		return nil, NewValidationError("type", "asset type is required")
	}

	return &Asset{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		SerialNumber: serial,
		Type:         strings.TrimSpace(assetType),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// AssetFilter narrows asset listings.
type AssetFilter struct {
	Status     *Status
	Type       *string
	HolderKind *HolderKind
	HolderID   *string
	Serial     *string
	Offset     int
	Limit      int
}
