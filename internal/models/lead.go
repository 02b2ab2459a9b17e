package models

import (
	"time"

	"github.com/google/uuid"
)

// Sync status of a recorded lead against the CRM
const (
	LeadStatusPending   = "pending"
	LeadStatusSynced    = "synced"
	LeadStatusDuplicate = "duplicate"
	LeadStatusFailed    = "failed"
)

type Lead struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	Name      string
	Email     string
	Interests []string

	// CRM sync bookkeeping
	SyncStatus  string
	CRMRecordID string
	SyncMessage string
}
