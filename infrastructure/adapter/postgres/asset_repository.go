package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
)

type AssetRepositoryAdapter struct {
	db *sql.DB
}

func NewAssetRepositoryAdapter(db *sql.DB) outbound.AssetRepository {
	return &AssetRepositoryAdapter{db: db}
}

const assetColumns = `id, company_id, serial_number, type, manufacturer, model,
	acquired_at, cost_cents, warranty_months, invoice_ref, created_at`

func (r *AssetRepositoryAdapter) FindByID(ctx context.Context, companyID, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE company_id = $1 AND id = $2`
	return r.scanOne(ctx, query, companyID, id)
}

func (r *AssetRepositoryAdapter) FindBySerial(ctx context.Context, companyID, serial string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE company_id = $1 AND serial_number = $2`
	return r.scanOne(ctx, query, companyID, strings.ToUpper(strings.TrimSpace(serial)))
}

func (r *AssetRepositoryAdapter) scanOne(ctx context.Context, query string, args ...interface{}) (*domain.Asset, error) {
	var asset domain.Asset
	var acquiredAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&asset.ID, &asset.CompanyID, &asset.SerialNumber, &asset.Type, &asset.Manufacturer, &asset.Model,
		&acquiredAt, &asset.CostCents, &asset.WarrantyMonths, &asset.InvoiceRef, &asset.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("find asset: %w", err)
	}
	if acquiredAt.Valid {
		asset.AcquiredAt = &acquiredAt.Time
	}
	return &asset, nil
}

// FindAll joins the projection so status and holder filters apply without a
// second round trip.
func (r *AssetRepositoryAdapter) FindAll(ctx context.Context, companyID string, filter domain.AssetFilter) ([]*domain.Asset, int, error) {
	where := []string{"a.company_id = $1"}
	args := []interface{}{companyID}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != nil {
		addArg("s.status = $%d", string(*filter.Status))
	}
	if filter.Type != nil {
		addArg("a.type = $%d", *filter.Type)
	}
	if filter.HolderKind != nil {
		addArg("s.holder_kind = $%d", string(*filter.HolderKind))
	}
	if filter.HolderID != nil {
		addArg("s.holder_id = $%d", *filter.HolderID)
	}
	if filter.Serial != nil {
		addArg("a.serial_number = $%d", strings.ToUpper(strings.TrimSpace(*filter.Serial)))
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM assets a
		JOIN lifecycle_states s ON s.asset_id = a.id
		WHERE ` + whereClause
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	listQuery := `
		SELECT a.id, a.company_id, a.serial_number, a.type, a.manufacturer, a.model,
			a.acquired_at, a.cost_cents, a.warranty_months, a.invoice_ref, a.created_at
		FROM assets a
		JOIN lifecycle_states s ON s.asset_id = a.id
		WHERE ` + whereClause + `
		ORDER BY a.created_at DESC, a.id
		LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(filter.Offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		var asset domain.Asset
		var acquiredAt sql.NullTime
		if err := rows.Scan(
			&asset.ID, &asset.CompanyID, &asset.SerialNumber, &asset.Type, &asset.Manufacturer, &asset.Model,
			&acquiredAt, &asset.CostCents, &asset.WarrantyMonths, &asset.InvoiceRef, &asset.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan asset: %w", err)
		}
		if acquiredAt.Valid {
			asset.AcquiredAt = &acquiredAt.Time
		}
		assets = append(assets, &asset)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	return assets, total, nil
}

func (r *AssetRepositoryAdapter) CountByStatus(ctx context.Context, companyID string) (map[domain.Status]int, error) {
	const query = `
		SELECT status, COUNT(*)
		FROM lifecycle_states
		WHERE company_id = $1
		GROUP BY status
	`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Status]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[domain.Status(status)] = count
	}
	return counts, rows.Err()
}

func (r *AssetRepositoryAdapter) CountByType(ctx context.Context, companyID string) (map[string]int, error) {
	const query = `
		SELECT type, COUNT(*)
		FROM assets
		WHERE company_id = $1
		GROUP BY type
	`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var assetType string
		var count int
		if err := rows.Scan(&assetType, &count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		counts[assetType] = count
	}
	return counts, rows.Err()
}
