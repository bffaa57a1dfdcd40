package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
)

type MaintenanceRepositoryAdapter struct {
	db *sql.DB
}

func NewMaintenanceRepositoryAdapter(db *sql.DB) outbound.MaintenanceRepository {
	return &MaintenanceRepositoryAdapter{db: db}
}

const ticketColumns = `id, company_id, asset_id, state, defect_report,
	diagnosis, estimated_cents, promised_return_at, outcome, closing_notes,
	opened_at, opened_by, diagnosed_at, closed_at, closed_by`

func (r *MaintenanceRepositoryAdapter) FindOpenByAsset(ctx context.Context, companyID, assetID string) (*domain.MaintenanceTicket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM maintenance_tickets
		WHERE company_id = $1 AND asset_id = $2 AND state <> 'closed'`
	return r.scanOne(r.db.QueryRowContext(ctx, query, companyID, assetID))
}

func (r *MaintenanceRepositoryAdapter) FindByID(ctx context.Context, companyID, ticketID string) (*domain.MaintenanceTicket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM maintenance_tickets
		WHERE company_id = $1 AND id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, companyID, ticketID))
}

func (r *MaintenanceRepositoryAdapter) FindAllByAsset(ctx context.Context, companyID, assetID string) ([]*domain.MaintenanceTicket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM maintenance_tickets
		WHERE company_id = $1 AND asset_id = $2
		ORDER BY opened_at DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID, assetID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.MaintenanceTicket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// Update only touches open tickets; a closed ticket is immutable.
func (r *MaintenanceRepositoryAdapter) Update(ctx context.Context, t *domain.MaintenanceTicket) error {
	const update = `
		UPDATE maintenance_tickets
		SET state = $1, diagnosis = $2, estimated_cents = $3, promised_return_at = $4, diagnosed_at = $5
		WHERE company_id = $6 AND id = $7 AND state <> 'closed'
	`
	res, err := r.db.ExecContext(ctx, update,
		string(t.State), t.Diagnosis, t.EstimatedCents, t.PromisedReturnAt, t.DiagnosedAt,
		t.CompanyID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update maintenance ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update maintenance ticket: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTicketNotFound, t.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *MaintenanceRepositoryAdapter) scanOne(row rowScanner) (*domain.MaintenanceTicket, error) {
	ticket, err := scanTicket(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func scanTicket(row rowScanner) (*domain.MaintenanceTicket, error) {
	var t domain.MaintenanceTicket
	var promisedAt, diagnosedAt, closedAt sql.NullTime
	var outcome, closedBy sql.NullString
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.AssetID, &t.State, &t.DefectReport,
		&t.Diagnosis, &t.EstimatedCents, &promisedAt, &outcome, &t.ClosingNotes,
		&t.OpenedAt, &t.OpenedBy, &diagnosedAt, &closedAt, &closedBy,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan maintenance ticket: %w", err)
	}
	if promisedAt.Valid {
		t.PromisedReturnAt = &promisedAt.Time
	}
	if diagnosedAt.Valid {
		t.DiagnosedAt = &diagnosedAt.Time
	}
	if closedAt.Valid {
		t.ClosedAt = &closedAt.Time
	}
	if outcome.Valid {
		t.Outcome = domain.MaintenanceOutcome(outcome.String)
	}
	if closedBy.Valid {
		t.ClosedBy = closedBy.String
	}
	return &t, nil
}
