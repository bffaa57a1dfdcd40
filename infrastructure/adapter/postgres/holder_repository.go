package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
)

type HolderRepositoryAdapter struct {
	db *sql.DB
}

func NewHolderRepositoryAdapter(db *sql.DB) outbound.HolderRepository {
	return &HolderRepositoryAdapter{db: db}
}

const holderColumns = `id, company_id, kind, name, document, email, phone, active`

func (r *HolderRepositoryAdapter) Create(ctx context.Context, holder *domain.Holder) error {
	const insert = `
		INSERT INTO holders (id, company_id, kind, name, document, email, phone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, insert,
		holder.ID, holder.CompanyID, string(holder.Kind), holder.Name,
		holder.Document, holder.Email, holder.Phone, holder.Active,
	)
	if err != nil {
		return fmt.Errorf("insert holder: %w", err)
	}
	return nil
}

func (r *HolderRepositoryAdapter) FindByID(ctx context.Context, companyID, id string) (*domain.Holder, error) {
	query := `SELECT ` + holderColumns + ` FROM holders WHERE company_id = $1 AND id = $2`
	var holder domain.Holder
	err := r.db.QueryRowContext(ctx, query, companyID, id).Scan(
		&holder.ID, &holder.CompanyID, &holder.Kind, &holder.Name,
		&holder.Document, &holder.Email, &holder.Phone, &holder.Active,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrHolderNotFound
		}
		return nil, fmt.Errorf("find holder: %w", err)
	}
	return &holder, nil
}

func (r *HolderRepositoryAdapter) FindAll(ctx context.Context, companyID string, kind *domain.HolderKind) ([]*domain.Holder, error) {
	query := `SELECT ` + holderColumns + ` FROM holders WHERE company_id = $1`
	args := []interface{}{companyID}
	if kind != nil {
		query += ` AND kind = $2`
		args = append(args, string(*kind))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list holders: %w", err)
	}
	defer rows.Close()

	var holders []*domain.Holder
	for rows.Next() {
		var holder domain.Holder
		if err := rows.Scan(
			&holder.ID, &holder.CompanyID, &holder.Kind, &holder.Name,
			&holder.Document, &holder.Email, &holder.Phone, &holder.Active,
		); err != nil {
			return nil, fmt.Errorf("scan holder: %w", err)
		}
		holders = append(holders, &holder)
	}
	return holders, rows.Err()
}

// Resolve validates a transfer destination: the holder must exist under the
// company, match the requested kind and still be active.
func (r *HolderRepositoryAdapter) Resolve(ctx context.Context, companyID string, kind domain.HolderKind, id string) (*domain.Holder, error) {
	holder, err := r.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if holder.Kind != kind || !holder.Active {
		return nil, fmt.Errorf("%w: %s is not an active %s", domain.ErrHolderNotFound, id, kind)
	}
	return holder, nil
}
