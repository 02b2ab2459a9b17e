package lead

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/models"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/repository/postgres"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/zoho"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/testutil"
)

func Test_Interests_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected Interests
		wantErr  bool
	}{
		{
			name:     "array form",
			input:    `["Corporate Advisory", "Disputes"]`,
			expected: Interests{"Corporate Advisory", "Disputes"},
		},
		{
			name:     "comma separated string",
			input:    `"Corporate Advisory,Disputes"`,
			expected: Interests{"Corporate Advisory", "Disputes"},
		},
		{
			name:     "single value string",
			input:    `"Corporate Advisory"`,
			expected: Interests{"Corporate Advisory"},
		},
		{
			name:    "number rejected",
			input:   `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Interests
			err := json.Unmarshal([]byte(tt.input), &got)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func Test_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "trims whitespace",
			input:    []string{"  Corporate Advisory ", "Disputes"},
			expected: []string{"Corporate Advisory", "Disputes"},
		},
		{
			name:     "drops empties",
			input:    []string{"", "  ", "Disputes"},
			expected: []string{"Disputes"},
		},
		{
			name:     "dedupes preserving order",
			input:    []string{"Disputes", "Corporate Advisory", "Disputes"},
			expected: []string{"Disputes", "Corporate Advisory"},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

// outcomeCRM returns canned outcomes and records the fields it was called with
type outcomeCRM struct {
	outcome zoho.Outcome
	fields  []map[string]any
}

func (c *outcomeCRM) CreateRecord(_ context.Context, fields map[string]any) (zoho.Outcome, error) {
	c.fields = append(c.fields, fields)
	return c.outcome, nil
}

func Test_Service_Submit(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("success marks lead synced", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			crm := &outcomeCRM{outcome: zoho.Outcome{Kind: zoho.OutcomeSuccess, RecordID: "101", Message: "record added"}}
			s := NewService(postgres.NewStorage(tx), crm, nil)

			result, err := s.Submit(t.Context(), "Jane Doe", "jane@x.com", []string{" Corporate Advisory ", "Corporate Advisory"})
			require.NoError(t, err)

			assert.Equal(t, zoho.OutcomeSuccess, result.Outcome.Kind)
			assert.Equal(t, models.LeadStatusSynced, result.Lead.SyncStatus)
			assert.Equal(t, "101", result.Lead.CRMRecordID)

			require.Len(t, crm.fields, 1)
			assert.Equal(t, []string{"Corporate Advisory"}, crm.fields[0]["Interests"], "interests should be normalized before the CRM call")
		})
	})

	t.Run("duplicate outcome marks lead duplicate", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			crm := &outcomeCRM{outcome: zoho.Outcome{Kind: zoho.OutcomeDuplicate, DuplicateField: "Email", Message: "duplicate data"}}
			s := NewService(postgres.NewStorage(tx), crm, nil)

			result, err := s.Submit(t.Context(), "Jane Doe", "jane@x.com", nil)
			require.NoError(t, err)

			assert.Equal(t, models.LeadStatusDuplicate, result.Lead.SyncStatus)
			assert.Empty(t, result.Lead.CRMRecordID)
		})
	})

	t.Run("already recorded lead is still forwarded", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			_, err := storage.Lead().CreateLead(t.Context(), "Jane Doe", "jane@x.com", nil)
			require.NoError(t, err)

			crm := &outcomeCRM{outcome: zoho.Outcome{Kind: zoho.OutcomeDuplicate, DuplicateField: "Email"}}
			s := NewService(storage, crm, nil)

			result, err := s.Submit(t.Context(), "Jane Doe", "jane@x.com", nil)
			require.NoError(t, err)

			require.Len(t, crm.fields, 1, "the CRM stays the authority on duplicates")
			assert.Equal(t, models.LeadStatusDuplicate, result.Lead.SyncStatus)
		})
	})

	t.Run("failure outcome marks lead failed", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			crm := &outcomeCRM{outcome: zoho.Outcome{Kind: zoho.OutcomeAuthFailure, Message: "invalid oauth token"}}
			s := NewService(postgres.NewStorage(tx), crm, nil)

			result, err := s.Submit(t.Context(), "Jane Doe", "jane@x.com", nil)
			require.NoError(t, err)

			assert.Equal(t, models.LeadStatusFailed, result.Lead.SyncStatus)
			assert.Equal(t, "invalid oauth token", result.Lead.SyncMessage)
		})
	})
}
