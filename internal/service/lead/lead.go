package lead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/apperrors"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/logger"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/models"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/repository"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/zoho"
)

// Interests accepts both wire forms the site form has historically sent:
// a JSON array of strings or a single comma separated string
type Interests []string

func (i *Interests) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*i = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*i = strings.Split(joined, ",")
		return nil
	}

	return fmt.Errorf("interests must be a string or an array of strings")
}

// Normalize trims every interest, drops empties and removes duplicates
// preserving the original order
func Normalize(interests []string) []string {
	normalized := make([]string, 0, len(interests))
	seen := make(map[string]bool, len(interests))

	for _, interest := range interests {
		interest = strings.TrimSpace(interest)
		if interest == "" || seen[interest] {
			continue
		}
		seen[interest] = true
		normalized = append(normalized, interest)
	}

	return normalized
}

type crmClient interface {
	CreateRecord(ctx context.Context, fields map[string]any) (zoho.Outcome, error)
}

// Service records a submitted lead locally and forwards it to the CRM.
// The local ledger is an audit trail; the CRM stays the authority on
// duplicates and the final state of every record.
type Service struct {
	storage repository.Storage
	crm     crmClient
	logger  logger.Logger
}

func NewService(storage repository.Storage, crm crmClient, l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Service{
		storage: storage,
		crm:     crm,
		logger:  l,
	}
}

type SubmitResult struct {
	Lead    models.Lead
	Outcome zoho.Outcome
}

// Submit normalizes the interests, records the lead and pushes it to the CRM.
// A lead already present in the ledger is still forwarded: the CRM decides
// whether it is a duplicate.
func (s *Service) Submit(ctx context.Context, name string, email string, interests []string) (SubmitResult, error) {
	var result SubmitResult

	interests = Normalize(interests)

	lead, err := s.storage.Lead().CreateLead(ctx, name, email, interests)
	if errors.Is(err, apperrors.ErrLeadAlreadyRecorded) {
		lead, err = s.storage.Lead().GetLeadByEmail(ctx, email)
	}
	if err != nil {
		return result, fmt.Errorf("can't record lead. Err: %w", err)
	}

	outcome, err := s.crm.CreateRecord(ctx, map[string]any{
		"Name":      name,
		"Email":     email,
		"Interests": interests,
	})
	if err != nil {
		return result, fmt.Errorf("CRM call failed. Err: %w", err)
	}

	lead = s.recordOutcome(ctx, lead, outcome)

	result.Lead = lead
	result.Outcome = outcome
	return result, nil
}

// recordOutcome updates the ledger bookkeeping. Best effort: a ledger update
// failure is logged but never masks the CRM outcome the caller needs.
func (s *Service) recordOutcome(ctx context.Context, lead models.Lead, outcome zoho.Outcome) models.Lead {
	status := models.LeadStatusFailed
	recordID := ""

	switch outcome.Kind {
	case zoho.OutcomeSuccess:
		status = models.LeadStatusSynced
		recordID = outcome.RecordID
	case zoho.OutcomeDuplicate:
		status = models.LeadStatusDuplicate
	}

	updated, err := s.storage.Lead().SetSyncStatus(ctx, lead.ID, status, recordID, outcome.Message)
	if err != nil {
		s.logger.Warn("failed to update lead sync status", "lead_id", lead.ID, "status", status, "error", err.Error())
		return lead
	}

	return updated
}
