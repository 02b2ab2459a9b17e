package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/logger"
)

const (
	// DefaultCRMURL is the Zoho API host matching the accounts DC
	DefaultCRMURL = "https://www.zohoapis.in"

	// DefaultModule is the CRM module website leads are filed under
	DefaultModule = "Leads"

	crmTimeout = 30 * time.Second
)

// tokenSource yields a bearer token for the CRM call, the TokenBroker in production
type tokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

// Client posts records to a Zoho CRM module and classifies the result.
// Every failure becomes an Outcome, not a panic or a raw provider error.
type Client struct {
	baseURL string
	module  string
	source  tokenSource
	client  *http.Client
	logger  logger.Logger
}

func NewClient(baseURL string, module string, source tokenSource, l logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultCRMURL
	}
	if module == "" {
		module = DefaultModule
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Client{
		baseURL: baseURL,
		module:  module,
		source:  source,
		client:  &http.Client{},
		logger:  l,
	}
}

// CreateRecord inserts a single record into the configured module.
// A broker failure surfaces as an AuthFailure outcome, transport problems
// as UnknownFailure. The error return is reserved for request building and
// caller cancellation.
func (c *Client) CreateRecord(ctx context.Context, fields map[string]any) (Outcome, error) {
	token, err := c.source.GetToken(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		c.logger.Warn("cannot obtain zoho token", "error", err.Error())
		return Outcome{Kind: OutcomeAuthFailure, Message: err.Error()}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, crmTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"data": []map[string]any{fields},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crm/v8/"+c.module, bytes.NewReader(payload))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("zoho CRM request failed", "module", c.module, "error", err.Error())
		return Outcome{Kind: OutcomeUnknown, Message: "CRM is unreachable"}, nil
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read zoho CRM response", "error", err.Error())
		return Outcome{Kind: OutcomeUnknown, Message: "unreadable response from CRM"}, nil
	}

	outcome := Classify(resp.StatusCode, body)
	c.logger.Debug("zoho CRM response classified",
		"module", c.module,
		"status_code", resp.StatusCode,
		"outcome", outcome.Kind,
	)

	return outcome, nil
}
