package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
)

// AuditRepositoryAdapter reads the append-only event log. There is no write
// path here on purpose: appends only happen inside LifecycleStore
// transactions.
type AuditRepositoryAdapter struct {
	db *sql.DB
}

func NewAuditRepositoryAdapter(db *sql.DB) outbound.AuditRepository {
	return &AuditRepositoryAdapter{db: db}
}

const eventColumns = `id, company_id, asset_id, sequence, type, actor_id,
	from_status, from_holder_kind, from_holder_id,
	to_status, to_holder_kind, to_holder_id,
	payload, created_at`

func (r *AuditRepositoryAdapter) ListByAsset(ctx context.Context, companyID, assetID string, offset, limit int) ([]*domain.AuditEvent, int, error) {
	const countQuery = `SELECT COUNT(*) FROM audit_events WHERE company_id = $1 AND asset_id = $2`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, companyID, assetID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + eventColumns + `
		FROM audit_events
		WHERE company_id = $1 AND asset_id = $2
		ORDER BY sequence
		LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)

	events, err := r.queryEvents(ctx, query, companyID, assetID)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *AuditRepositoryAdapter) ListAllByAsset(ctx context.Context, companyID, assetID string) ([]*domain.AuditEvent, error) {
	query := `SELECT ` + eventColumns + `
		FROM audit_events
		WHERE company_id = $1 AND asset_id = $2
		ORDER BY sequence`
	return r.queryEvents(ctx, query, companyID, assetID)
}

func (r *AuditRepositoryAdapter) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*domain.AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (*domain.AuditEvent, error) {
	var event domain.AuditEvent
	var fromHolderID, toHolderID sql.NullString
	var payload []byte
	err := rows.Scan(
		&event.ID, &event.CompanyID, &event.AssetID, &event.Sequence, &event.Type, &event.ActorID,
		&event.From.Status, &event.From.HolderKind, &fromHolderID,
		&event.To.Status, &event.To.HolderKind, &toHolderID,
		&payload, &event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan audit event: %w", err)
	}
	if fromHolderID.Valid {
		event.From.HolderID = &fromHolderID.String
	}
	if toHolderID.Valid {
		event.To.HolderID = &toHolderID.String
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &event.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
	}
	return &event, nil
}
