package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/models"
)

// Lead repository interface
type LeadRepo interface {
	// Record a new lead before it is forwarded to the CRM
	// If a lead with the same email exists already has to return apperrors.ErrLeadAlreadyRecorded
	CreateLead(ctx context.Context, name string, email string, interests []string) (models.Lead, error)

	// Get lead by email (case insensitive)
	// If lead not found must return apperrors.ErrLeadNotFound
	GetLeadByEmail(ctx context.Context, email string) (models.Lead, error)

	// Update the CRM sync bookkeeping after the outcome is known
	// recordID may be empty for duplicate and failed statuses
	SetSyncStatus(ctx context.Context, leadID uuid.UUID, status string, recordID string, message string) (models.Lead, error)
}

// Storage combines all repositories the service uses
type Storage interface {
	Lead() LeadRepo

	// Run fn within a database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
