package payvault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/config"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
)

const providerName = "payvault"

// Client is the outbound adapter to the PayVault wallet API. A single
// bearer token is cached process-wide; concurrent refreshes are
// harmless because a refetch is idempotent.
type Client struct {
	baseURL       string
	clientID      string
	clientSecret  string
	webhookSecret string
	tokenTTL      time.Duration
	httpClient    *http.Client
	logger        *zap.Logger

	// clock is injected so tests can simulate token expiry.
	clock func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a PayVault client from service configuration.
func NewClient(cfg *config.PayVaultConfig, logger *zap.Logger) *Client {
	tokenTTL := cfg.TokenTTL
	if tokenTTL == 0 {
		tokenTTL = 55 * time.Minute
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		webhookSecret: cfg.WebhookSecret,
		tokenTTL:      tokenTTL,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
		clock:         time.Now,
	}
}

// WithClock overrides the client's time source. Intended for tests.
func (c *Client) WithClock(clock func() time.Time) *Client {
	c.clock = clock
	return c
}

// Name returns the channel label recorded on ledger entries.
func (c *Client) Name() string {
	return providerName
}

// Invalidate clears the cached token so the next call performs a fresh
// login.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.tokenExpiry = time.Time{}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// bearerToken returns a valid cached token, logging in when the cache is
// empty or expired.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.clock().Before(c.tokenExpiry) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to prepare login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/token", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewAppError(apperrors.ErrUpstream, "provider login request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewAppError(apperrors.ErrUpstream, "failed to read login response", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("provider login failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return "", apperrors.NewAppError(apperrors.ErrUnauthenticated,
			"provider authentication failed", &provider.ProviderError{
				Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
				Message: "login rejected",
				Details: string(respBody),
			})
	}

	var login loginResponse
	if err := json.Unmarshal(respBody, &login); err != nil {
		return "", apperrors.NewAppError(apperrors.ErrUpstream, "failed to parse login response", err)
	}
	if login.AccessToken == "" {
		// A 200 with no token is still a failed auth; callers must not
		// proceed without a token.
		return "", apperrors.NewAppError(apperrors.ErrUnauthenticated,
			"provider login response missing access token", nil)
	}

	c.mu.Lock()
	c.token = login.AccessToken
	c.tokenExpiry = c.clock().Add(c.tokenTTL)
	c.mu.Unlock()

	c.logger.Debug("provider token refreshed",
		zap.Time("expires_at", c.tokenExpiry))

	return login.AccessToken, nil
}

// request performs a bearer-authenticated JSON call. baseOverride
// substitutes the base URL for endpoints hosted elsewhere; pass ""
// for the default. A 401 clears the token cache and retries once with
// a fresh login, since provider-side revocation is only visible here.
func (c *Client) request(ctx context.Context, method, path string, body interface{}, baseOverride string, out interface{}) error {
	retried := false

	for {
		err := c.doRequest(ctx, method, path, body, baseOverride, out)
		if err == nil {
			return nil
		}

		if !retried && isAuthError(err) {
			retried = true
			c.Invalidate()
			continue
		}
		return err
	}
}

type authRejectedError struct{ err error }

func (e *authRejectedError) Error() string { return e.err.Error() }
func (e *authRejectedError) Unwrap() error { return e.err }

func isAuthError(err error) bool {
	var authErr *authRejectedError
	return apperrors.As(err, &authErr)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, baseOverride string, out interface{}) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	base := c.baseURL
	if baseOverride != "" {
		base = baseOverride
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrUpstream, "provider request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrUpstream, "failed to read provider response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &authRejectedError{err: apperrors.NewAppError(apperrors.ErrUnauthenticated,
			"provider rejected token", &provider.ProviderError{
				Code:    "HTTP_401",
				Message: "token rejected",
				Details: string(respBody),
			})}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp map[string]interface{}
		_ = json.Unmarshal(respBody, &errResp)
		code, _ := errResp["code"].(string)
		message, _ := errResp["message"].(string)

		c.logger.Error("provider call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		return apperrors.NewAppError(apperrors.ErrUpstream, "provider call failed",
			&provider.ProviderError{
				Code:    code,
				Message: message,
				Details: string(respBody),
			})
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperrors.NewAppError(apperrors.ErrUpstream, "failed to parse provider response", err)
		}
	}

	return nil
}
