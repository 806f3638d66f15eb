package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	// cached tokens expire this much earlier than the gateway says
	expirySkew = time.Minute
)

// TokenExchanger turns the service account into a short-lived bearer token.
type TokenExchanger struct {
	account ServiceAccount
	client  *http.Client
	cache   TokenCache
	logger  *zap.Logger
	now     func() time.Time
}

type ExchangerOption func(*TokenExchanger)

func WithHTTPClient(c *http.Client) ExchangerOption {
	return func(e *TokenExchanger) { e.client = c }
}

func WithTokenCache(c TokenCache) ExchangerOption {
	return func(e *TokenExchanger) { e.cache = c }
}

func WithClock(now func() time.Time) ExchangerOption {
	return func(e *TokenExchanger) { e.now = now }
}

func NewTokenExchanger(account ServiceAccount, logger *zap.Logger, opts ...ExchangerOption) *TokenExchanger {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &TokenExchanger{
		account: account,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (e *TokenExchanger) AccessToken(ctx context.Context) (string, error) {
	if e.cache != nil {
		tok, ok, err := e.cache.Get(ctx, e.account.ClientEmail)
		if err != nil {
			e.logger.Warn("push token cache read failed", zap.Error(err))
		} else if ok {
			return tok, nil
		}
	}

	assertion, err := e.account.SignAssertion(e.now())
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.account.tokenURI(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("push: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("push: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("push: read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("push: token exchange failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("push: decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("push: token response without access_token")
	}

	if e.cache != nil && tr.ExpiresIn > 0 {
		ttl := time.Duration(tr.ExpiresIn)*time.Second - expirySkew
		if err := e.cache.Set(ctx, e.account.ClientEmail, tr.AccessToken, ttl); err != nil {
			e.logger.Warn("push token cache write failed", zap.Error(err))
		}
	}

	return tr.AccessToken, nil
}
