package zoho

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Classify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		body       string
		expected   Outcome
	}{
		{
			name:       "success via structured code",
			statusCode: http.StatusCreated,
			body:       `{"data":[{"code":"SUCCESS","details":{"id":"5843021000000512001"},"message":"record added","status":"success"}]}`,
			expected:   Outcome{Kind: OutcomeSuccess, RecordID: "5843021000000512001", Message: "record added"},
		},
		{
			name:       "success via structured status only",
			statusCode: http.StatusOK,
			body:       `{"data":[{"status":"Success","details":{"id":"42"},"message":"inserted"}]}`,
			expected:   Outcome{Kind: OutcomeSuccess, RecordID: "42", Message: "inserted"},
		},
		{
			name:       "success via free-text phrase",
			statusCode: http.StatusOK,
			body:       `{"data":[{"message":"Record added to module"}]}`,
			expected:   Outcome{Kind: OutcomeSuccess, Message: "Record added to module"},
		},
		{
			name:       "duplicate with structured api_name",
			statusCode: http.StatusBadRequest,
			body:       `{"data":[{"code":"DUPLICATE_DATA","details":{"api_name":"Mobile"},"message":"duplicate data","status":"error"}]}`,
			expected:   Outcome{Kind: OutcomeDuplicate, DuplicateField: "Mobile", Message: "duplicate data"},
		},
		{
			name:       "duplicate field from message keyword",
			statusCode: http.StatusBadRequest,
			body:       `{"data":[{"code":"DUPLICATE_DATA","message":"a record with this Email already exists","status":"error"}]}`,
			expected:   Outcome{Kind: OutcomeDuplicate, DuplicateField: "Email", Message: "a record with this Email already exists"},
		},
		{
			name:       "duplicate without any field signal defaults to Email",
			statusCode: http.StatusBadRequest,
			body:       `{"data":[{"code":"DUPLICATE_DATA","message":"duplicate data","status":"error"}]}`,
			expected:   Outcome{Kind: OutcomeDuplicate, DuplicateField: "Email", Message: "duplicate data"},
		},
		{
			name:       "structured api_name wins over message keyword",
			statusCode: http.StatusBadRequest,
			body:       `{"data":[{"code":"DUPLICATE_DATA","details":{"api_name":"Phone"},"message":"duplicate email","status":"error"}]}`,
			expected:   Outcome{Kind: OutcomeDuplicate, DuplicateField: "Phone", Message: "duplicate email"},
		},
		{
			name:       "auth failure via structured code",
			statusCode: http.StatusUnauthorized,
			body:       `{"code":"INVALID_TOKEN","details":{},"message":"invalid oauth token to access this resource","status":"error"}`,
			expected:   Outcome{Kind: OutcomeAuthFailure, Message: "invalid oauth token to access this resource"},
		},
		{
			name:       "auth failure via keyword in message",
			statusCode: http.StatusBadRequest,
			body:       `{"code":"SOMETHING_ELSE","message":"authentication failed for client","status":"error"}`,
			expected:   Outcome{Kind: OutcomeAuthFailure, Message: "authentication failed for client"},
		},
		{
			name:       "validation error carries field name",
			statusCode: http.StatusBadRequest,
			body:       `{"data":[{"code":"MANDATORY_NOT_FOUND","details":{"api_name":"Last_Name"},"message":"required field not found","status":"error"}]}`,
			expected:   Outcome{Kind: OutcomeValidation, Fields: map[string]string{"Last_Name": "required field not found"}, Message: "required field not found"},
		},
		{
			name:       "unknown failure keeps structured message",
			statusCode: http.StatusInternalServerError,
			body:       `{"code":"INTERNAL_ERROR","message":"something went wrong on our side","status":"error"}`,
			expected:   Outcome{Kind: OutcomeUnknown, Message: "something went wrong on our side"},
		},
		{
			name:       "non-2xx without recognizable payload",
			statusCode: http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			expected:   Outcome{Kind: OutcomeUnknown, Message: "CRM request failed"},
		},
		{
			name:       "2xx with unreadable payload",
			statusCode: http.StatusOK,
			body:       `not json at all`,
			expected:   Outcome{Kind: OutcomeUnknown, Message: "unreadable response from CRM"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.statusCode, []byte(tt.body))

			require.Equal(t, tt.expected, got)
		})
	}

	t.Run("deterministic on identical input", func(t *testing.T) {
		body := []byte(`{"data":[{"code":"DUPLICATE_DATA","message":"duplicate email and phone","status":"error"}]}`)

		first := Classify(http.StatusBadRequest, body)
		second := Classify(http.StatusBadRequest, body)

		assert.Equal(t, first, second, "classifying the same payload twice must yield the same outcome")
		assert.Equal(t, "Email", first.DuplicateField, "email keyword is checked before phone")
	})
}
