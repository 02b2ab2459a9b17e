package zoho

import (
	"encoding/json"
	"strings"
)

// Outcome kinds
const (
	OutcomeSuccess     = "success"
	OutcomeValidation  = "validation_error"
	OutcomeDuplicate   = "duplicate"
	OutcomeAuthFailure = "auth_failure"
	OutcomeUnknown     = "unknown_failure"
)

// A record rejected as duplicate is blamed on this field when the response
// gives no usable signal. Existing site behavior, kept on purpose even
// though it may misattribute conflicts on other unique fields.
const defaultDuplicateField = "Email"

// Outcome is the normalized result of one CRM call
type Outcome struct {
	Kind string

	// Success
	RecordID string

	// ValidationError: field name -> problem
	Fields map[string]string

	// DuplicateConflict
	DuplicateField string

	Message string
}

// Structured codes the CRM is known to send
const (
	codeSuccess       = "SUCCESS"
	codeDuplicateData = "DUPLICATE_DATA"
	codeMandatoryMiss = "MANDATORY_NOT_FOUND"
	codeInvalidData   = "INVALID_DATA"
)

var authFailureCodes = map[string]bool{
	"INVALID_TOKEN":          true,
	"AUTHENTICATION_FAILURE": true,
	"OAUTH_SCOPE_MISMATCH":   true,
	"INVALID_OAUTH":          true,
}

// crmEntry is one record result as the CRM reports it, either inside a
// data array or at the top level of an error response
type crmEntry struct {
	Code    string         `json:"code"`
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// Classify maps a CRM response to an Outcome. Pure and deterministic:
// same status and body always produce the same outcome.
//
// The CRM is not consistent in how it signals results across versions, so
// detection is an ordered list of rules per kind: structured signal first,
// keyword fallback second, fixed default last. The order matters, changing
// it changes which field gets blamed for a duplicate.
func Classify(statusCode int, body []byte) Outcome {
	entry, ok := parseEntry(body)
	if !ok {
		if statusCode >= 200 && statusCode <= 299 {
			return Outcome{Kind: OutcomeUnknown, Message: "unreadable response from CRM"}
		}
		return Outcome{Kind: OutcomeUnknown, Message: "CRM request failed"}
	}

	// Success: structured code, structured status, then free-text phrase
	switch {
	case entry.Code == codeSuccess,
		strings.EqualFold(entry.Status, "success"),
		strings.Contains(strings.ToLower(entry.Message), "record added"):
		return Outcome{
			Kind:     OutcomeSuccess,
			RecordID: detailString(entry.Details, "id"),
			Message:  entry.Message,
		}
	}

	if entry.Code == codeDuplicateData {
		return Outcome{
			Kind:           OutcomeDuplicate,
			DuplicateField: duplicateField(entry),
			Message:        entry.Message,
		}
	}

	if authFailureCodes[entry.Code] || statusCode == 401 || containsAuthKeyword(entry) {
		return Outcome{Kind: OutcomeAuthFailure, Message: entry.Message}
	}

	if entry.Code == codeMandatoryMiss || entry.Code == codeInvalidData {
		fields := map[string]string{}
		if name := detailString(entry.Details, "api_name"); name != "" {
			fields[name] = firstNonEmpty(entry.Message, "invalid value")
		}
		return Outcome{Kind: OutcomeValidation, Fields: fields, Message: entry.Message}
	}

	return Outcome{
		Kind:    OutcomeUnknown,
		Message: firstNonEmpty(entry.Message, "CRM request failed"),
	}
}

// duplicateField resolves which field caused a DUPLICATE_DATA rejection.
// Rule order: structured api_name detail, keyword scan of the message,
// then the fixed default. The caller always gets a field name.
func duplicateField(entry crmEntry) string {
	if name := detailString(entry.Details, "api_name"); name != "" {
		return name
	}

	message := strings.ToLower(entry.Message)
	for _, rule := range []struct {
		keyword string
		field   string
	}{
		{"email", "Email"},
		{"mobile", "Mobile"},
		{"phone", "Phone"},
	} {
		if strings.Contains(message, rule.keyword) {
			return rule.field
		}
	}

	return defaultDuplicateField
}

func containsAuthKeyword(entry crmEntry) bool {
	message := strings.ToLower(entry.Message)
	for _, keyword := range []string{"oauth", "authenticat", "invalid token"} {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}

// parseEntry reads the first record result out of the response body.
// Record results come wrapped in a data array, auth and transport level
// errors come as a bare object.
func parseEntry(body []byte) (crmEntry, bool) {
	var envelope struct {
		Data []crmEntry `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data[0], true
	}

	var entry crmEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return crmEntry{}, false
	}
	if entry.Code == "" && entry.Status == "" && entry.Message == "" {
		return crmEntry{}, false
	}
	return entry, true
}

func detailString(details map[string]any, key string) string {
	if details == nil {
		return ""
	}
	if value, ok := details[key].(string); ok {
		return value
	}
	return ""
}
