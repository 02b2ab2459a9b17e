package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/apperrors"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/models"
)

type LeadRepo struct {
	DB DBTX
}

const createLead = `-- name: CreateLead
INSERT INTO leads (id, name, email, interests)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at, name, email, interests, sync_status, crm_record_id, sync_message
`

func (r *LeadRepo) CreateLead(ctx context.Context, name string, email string, interests []string) (models.Lead, error) {
	if interests == nil {
		interests = []string{}
	}

	rows, _ := r.DB.Query(ctx, createLead, uuid.New(), name, email, interests)
	lead, err := pgx.CollectOneRow(rows, rowToLead)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return lead, apperrors.ErrLeadAlreadyRecorded
		}

		return lead, fmt.Errorf("db error: %w", err)
	}

	return lead, nil
}

const getLeadByEmail = `-- name: GetLeadByEmail
SELECT id, created_at, updated_at, name, email, interests, sync_status, crm_record_id, sync_message
FROM leads
WHERE lower(email) = lower($1)
`

func (r *LeadRepo) GetLeadByEmail(ctx context.Context, email string) (models.Lead, error) {
	rows, _ := r.DB.Query(ctx, getLeadByEmail, email)
	lead, err := pgx.CollectOneRow(rows, rowToLead)

	switch {
	case err == nil:
		return lead, nil
	case errors.Is(err, pgx.ErrNoRows):
		return lead, apperrors.ErrLeadNotFound
	default:
		return lead, fmt.Errorf("db error: %w", err)
	}
}

const setSyncStatus = `-- name: SetSyncStatus
UPDATE leads
SET sync_status = $2, crm_record_id = $3, sync_message = $4, updated_at = now()
WHERE id = $1
RETURNING id, created_at, updated_at, name, email, interests, sync_status, crm_record_id, sync_message
`

func (r *LeadRepo) SetSyncStatus(ctx context.Context, leadID uuid.UUID, status string, recordID string, message string) (models.Lead, error) {
	rows, _ := r.DB.Query(ctx, setSyncStatus, leadID, status, recordID, message)
	lead, err := pgx.CollectOneRow(rows, rowToLead)

	switch {
	case err == nil:
		return lead, nil
	case errors.Is(err, pgx.ErrNoRows):
		return lead, apperrors.ErrLeadNotFound
	default:
		return lead, fmt.Errorf("db error: %w", err)
	}
}

func rowToLead(row pgx.CollectableRow) (models.Lead, error) {
	var l models.Lead
	err := row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt, &l.Name, &l.Email, &l.Interests, &l.SyncStatus, &l.CRMRecordID, &l.SyncMessage)
	return l, err
}
