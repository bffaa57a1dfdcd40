package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
)

const pqUniqueViolation = "23505"

// LifecycleStoreAdapter persists lifecycle commands. Each command runs in
// one transaction: the projection CAS, the event append and any ticket side
// effect commit together or roll back together.
type LifecycleStoreAdapter struct {
	db *sql.DB
}

func NewLifecycleStoreAdapter(db *sql.DB) outbound.LifecycleStore {
	return &LifecycleStoreAdapter{db: db}
}

func (s *LifecycleStoreAdapter) Register(ctx context.Context, asset *domain.Asset, state *domain.LifecycleState, event *domain.AuditEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register tx: %w", err)
	}
	defer tx.Rollback()

	const insertAsset = `
		INSERT INTO assets (id, company_id, serial_number, type, manufacturer, model,
			acquired_at, cost_cents, warranty_months, invoice_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, insertAsset,
		asset.ID, asset.CompanyID, asset.SerialNumber, asset.Type, asset.Manufacturer, asset.Model,
		asset.AcquiredAt, asset.CostCents, asset.WarrantyMonths, asset.InvoiceRef, asset.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSerial, asset.SerialNumber)
		}
		return fmt.Errorf("insert asset: %w", err)
	}

	const insertState = `
		INSERT INTO lifecycle_states (asset_id, company_id, status, holder_kind, holder_id, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, insertState,
		state.AssetID, state.CompanyID, string(state.Status), string(state.HolderKind), state.HolderID,
		state.Version, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lifecycle state: %w", err)
	}

	if err := insertEvent(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit register tx: %w", err)
	}
	return nil
}

func (s *LifecycleStoreAdapter) GetState(ctx context.Context, companyID, assetID string) (*domain.LifecycleState, error) {
	const query = `
		SELECT asset_id, company_id, status, holder_kind, holder_id, version, updated_at
		FROM lifecycle_states
		WHERE company_id = $1 AND asset_id = $2
	`
	var state domain.LifecycleState
	var holderID sql.NullString
	err := s.db.QueryRowContext(ctx, query, companyID, assetID).Scan(
		&state.AssetID, &state.CompanyID, &state.Status, &state.HolderKind, &holderID,
		&state.Version, &state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, assetID)
		}
		return nil, fmt.Errorf("get lifecycle state: %w", err)
	}
	if holderID.Valid {
		state.HolderID = &holderID.String
	}
	return &state, nil
}

func (s *LifecycleStoreAdapter) Apply(ctx context.Context, w outbound.TransitionWrite) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin apply tx: %w", err)
	}
	defer tx.Rollback()

	// Version-gated projection update. Zero rows means either a lost race
	// or an unknown asset; tell them apart before failing.
	const updateState = `
		UPDATE lifecycle_states
		SET status = $1, holder_kind = $2, holder_id = $3, version = $4, updated_at = $5
		WHERE company_id = $6 AND asset_id = $7 AND version = $8
	`
	res, err := tx.ExecContext(ctx, updateState,
		string(w.State.Status), string(w.State.HolderKind), w.State.HolderID,
		w.State.Version, w.State.UpdatedAt,
		w.State.CompanyID, w.State.AssetID, w.ExpectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update lifecycle state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lifecycle state: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM lifecycle_states WHERE company_id = $1 AND asset_id = $2)`,
			w.State.CompanyID, w.State.AssetID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check lifecycle state: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrAssetNotFound, w.State.AssetID)
		}
		return fmt.Errorf("%w: asset %s version %d", domain.ErrConcurrentModification, w.State.AssetID, w.ExpectedVersion)
	}

	if err := insertEvent(ctx, tx, w.Event); err != nil {
		return err
	}

	if w.OpenTicket != nil {
		if err := insertTicket(ctx, tx, w.OpenTicket); err != nil {
			return err
		}
	}
	if w.CloseTicket != nil {
		if err := updateTicket(ctx, tx, w.CloseTicket); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply tx: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, event *domain.AuditEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	const insert = `
		INSERT INTO audit_events (id, company_id, asset_id, sequence, type, actor_id,
			from_status, from_holder_kind, from_holder_id,
			to_status, to_holder_kind, to_holder_id,
			payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.ExecContext(ctx, insert,
		event.ID, event.CompanyID, event.AssetID, event.Sequence, string(event.Type), event.ActorID,
		string(event.From.Status), string(event.From.HolderKind), event.From.HolderID,
		string(event.To.Status), string(event.To.HolderKind), event.To.HolderID,
		payload, event.CreatedAt,
	)
	if err != nil {
		// The (asset_id, sequence) primary key backs up the version CAS:
		// a duplicate sequence can only mean a concurrent writer.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event sequence %d", domain.ErrConcurrentModification, event.Sequence)
		}
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func insertTicket(ctx context.Context, tx *sql.Tx, t *domain.MaintenanceTicket) error {
	const insert = `
		INSERT INTO maintenance_tickets (id, company_id, asset_id, state, defect_report,
			diagnosis, estimated_cents, promised_return_at, outcome, closing_notes,
			opened_at, opened_by, diagnosed_at, closed_at, closed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := tx.ExecContext(ctx, insert,
		t.ID, t.CompanyID, t.AssetID, string(t.State), t.DefectReport,
		t.Diagnosis, t.EstimatedCents, t.PromisedReturnAt, string(t.Outcome), t.ClosingNotes,
		t.OpenedAt, t.OpenedBy, t.DiagnosedAt, t.ClosedAt, t.ClosedBy,
	)
	if err != nil {
		// Partial unique index on open tickets per asset.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: asset %s", domain.ErrTicketAlreadyOpen, t.AssetID)
		}
		return fmt.Errorf("insert maintenance ticket: %w", err)
	}
	return nil
}

func updateTicket(ctx context.Context, tx *sql.Tx, t *domain.MaintenanceTicket) error {
	const update = `
		UPDATE maintenance_tickets
		SET state = $1, diagnosis = $2, estimated_cents = $3, promised_return_at = $4,
			outcome = $5, closing_notes = $6, diagnosed_at = $7, closed_at = $8, closed_by = $9
		WHERE company_id = $10 AND id = $11
	`
	res, err := tx.ExecContext(ctx, update,
		string(t.State), t.Diagnosis, t.EstimatedCents, t.PromisedReturnAt,
		string(t.Outcome), t.ClosingNotes, t.DiagnosedAt, t.ClosedAt, t.ClosedBy,
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

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}
