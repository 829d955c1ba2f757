package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// expiryMargin is subtracted from the upstream lifetime when a token is
// stored and again when it is checked, so a refresh always happens well
// before the provider actually rejects the token.
const expiryMargin = 60 * time.Second

// AuthError reports a failed OAuth2 token refresh. Status and Body carry
// the upstream response when one was received; Status is 0 for transport
// and decode failures.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token refresh failed: %v", e.Err)
	}
	return fmt.Sprintf("token refresh failed with status %d: %s", e.Status, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// tokenResponse is the OAuth2 token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// TokenManager exchanges a long-lived refresh token for short-lived access
// tokens and hands the current one to concurrent callers. The mutex is held
// across the whole check-and-refresh so that at most one refresh request is
// in flight; every waiting caller observes its outcome.
type TokenManager struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	refreshToken string
	log          *zap.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	// now is swappable in tests.
	now func() time.Time
}

// NewTokenManager creates a TokenManager for the given provider credentials.
// baseURL is the provider root, e.g. "https://api.netatmo.com".
func NewTokenManager(client *http.Client, baseURL, clientID, clientSecret, refreshToken string, log *zap.Logger) *TokenManager {
	return &TokenManager{
		httpClient:   client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		log:          log,
		now:          time.Now,
	}
}

// Token returns a valid access token, refreshing it first when none is held
// or the held one is inside the expiry margin. On refresh failure the stale
// token, if any, is left in place and an *AuthError is returned.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.accessToken != "" && m.now().Before(m.expiresAt.Add(-expiryMargin)) {
		return m.accessToken, nil
	}

	m.log.Info("access token missing or near expiry, refreshing")
	if err := m.refresh(ctx); err != nil {
		return "", err
	}
	return m.accessToken, nil
}

// refresh performs the refresh_token grant. Caller must hold m.mu.
func (m *TokenManager) refresh(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", m.refreshToken)
	form.Set("client_id", m.clientID)
	form.Set("client_secret", m.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.log.Error("token refresh request failed", zap.Error(err))
		return &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		m.log.Error("token refresh rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return &AuthError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tok.AccessToken == "" {
		return &AuthError{Status: resp.StatusCode, Body: string(body), Err: fmt.Errorf("token response missing access_token")}
	}

	m.accessToken = tok.AccessToken
	m.expiresAt = m.now().Add(time.Duration(tok.ExpiresIn) * time.Second).Add(-expiryMargin)
	if tok.RefreshToken != "" {
		// The provider rotates refresh tokens; the old one is invalidated.
		m.refreshToken = tok.RefreshToken
	}

	m.log.Info("refreshed access token", zap.Int("expiresIn", tok.ExpiresIn))
	return nil
}
