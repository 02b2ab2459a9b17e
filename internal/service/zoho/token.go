package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/apperrors"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/logger"
)

const (
	// DefaultAccountsURL is the Zoho accounts endpoint the site is registered at
	DefaultAccountsURL = "https://accounts.zoho.in"

	// Zoho omits expires_in on some responses, the documented default is an hour
	defaultExpiresIn = 3600 * time.Second

	exchangeTimeout = 15 * time.Second
)

// Config holds the OAuth client registration used for the refresh grant.
// The three credential values are checked on first use, not at startup:
// a missing one is a deployment error, not a transient fault.
type Config struct {
	RefreshToken string
	ClientID     string
	ClientSecret string

	// AccountsURL may be left empty, DefaultAccountsURL is used then
	AccountsURL string
}

func (c Config) validate() error {
	if c.RefreshToken == "" || c.ClientID == "" || c.ClientSecret == "" {
		return apperrors.ErrMissingCredentials
	}
	return nil
}

// TokenBroker is the process wide access point for the Zoho bearer token.
// Any number of goroutines may call GetToken concurrently; at most one of
// them performs the network exchange, the rest await its outcome.
type TokenBroker struct {
	cfg    Config
	store  *CredentialStore
	client *http.Client
	logger logger.Logger

	// now is swappable for tests
	now func() time.Time
}

func NewTokenBroker(cfg Config, l logger.Logger) *TokenBroker {
	if cfg.AccountsURL == "" {
		cfg.AccountsURL = DefaultAccountsURL
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &TokenBroker{
		cfg:    cfg,
		store:  NewCredentialStore(),
		client: &http.Client{},
		logger: l,
		now:    time.Now,
	}
}

// GetToken returns a bearer token valid for at least the safety margin.
// Fast path is a cache read with zero network I/O. On a miss the caller
// either becomes the refresh leader or waits for the current one.
func (b *TokenBroker) GetToken(ctx context.Context) (string, error) {
	if cred, ok := b.store.ReadIfValid(b.now()); ok {
		return cred.Value, nil
	}

	handle, leader := b.store.BeginRefresh()

	if leader {
		cred, err := b.exchange(ctx)
		b.store.Complete(handle, cred, err)
		if err != nil {
			b.logger.Warn("zoho token refresh failed", "error", err.Error())
			return "", err
		}

		b.logger.Debug("zoho token refreshed", "expires_at", cred.ExpiresAt)
		return cred.Value, nil
	}

	// Follower: await the leader, then retry the cache once
	waitErr := handle.Wait(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if cred, ok := b.store.ReadIfValid(b.now()); ok {
		return cred.Value, nil
	}
	if waitErr == nil {
		waitErr = apperrors.ErrTokenExchange
	}

	return "", waitErr
}

// exchange performs the refresh grant against the Zoho accounts token endpoint
func (b *TokenBroker) exchange(ctx context.Context) (Credential, error) {
	var cred Credential

	if err := b.cfg.validate(); err != nil {
		return cred, err
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("refresh_token", b.cfg.RefreshToken)
	form.Set("client_id", b.cfg.ClientID)
	form.Set("client_secret", b.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.AccountsURL+"/oauth/v2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return cred, fmt.Errorf("%w: failed to create request: %v", apperrors.ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return cred, fmt.Errorf("%w: %v", apperrors.ErrTokenExchange, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return cred, fmt.Errorf("%w: unexpected status %d", apperrors.ErrTokenExchange, resp.StatusCode)
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		// 2xx with garbage body: a transport fault for diagnostics,
		// but the caller still just failed to obtain a token
		b.logger.Warn("zoho accounts returned unparsable body", "error", err.Error())
		return cred, fmt.Errorf("%w: failed to decode response: %v", apperrors.ErrTokenExchange, err)
	}

	// Zoho accounts reports some failures with 200 and an error field
	if grant.Error != "" || grant.AccessToken == "" {
		return cred, fmt.Errorf("%w: %s", apperrors.ErrTokenExchange, firstNonEmpty(grant.Error, "no access token in response"))
	}

	ttl := defaultExpiresIn
	if grant.ExpiresIn > 0 {
		ttl = time.Duration(grant.ExpiresIn) * time.Second
	}

	cred = Credential{
		Value:     grant.AccessToken,
		ExpiresAt: b.now().Add(ttl),
	}
	return cred, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
