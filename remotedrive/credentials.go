package remotedrive

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

	"projectdrive/models"

	"github.com/golang-jwt/jwt/v4"
)

// CredentialProvider hands out the bearer token for remote drive calls.
// The client asks for the current token on every request instead of
// holding one, so a refreshed credential is picked up immediately.
type CredentialProvider interface {
	CurrentToken(ctx context.Context) (string, error)
	Invalidate()
}

// TokenProviderFunc adapts a plain function to a CredentialProvider.
type TokenProviderFunc func(ctx context.Context) (string, error)

func (f TokenProviderFunc) CurrentToken(ctx context.Context) (string, error) {
	return f(ctx)
}

func (f TokenProviderFunc) Invalidate() {}

// expirySafetyMargin is subtracted from the token lifetime so a token is
// never used in its final seconds.
const expirySafetyMargin = 60 * time.Second

type ClientCredentialsOptions struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	HTTPClient   *http.Client
}

// ClientCredentialsProvider fetches tokens from an OAuth2
// client-credentials endpoint and caches them until shortly before
// expiry.
type ClientCredentialsProvider struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	httpClient   *http.Client

	mutex     sync.Mutex
	token     string
	expiresAt time.Time
}

func NewClientCredentialsProvider(opts ClientCredentialsOptions) *ClientCredentialsProvider {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ClientCredentialsProvider{
		tokenURL:     strings.TrimSpace(opts.TokenURL),
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		scope:        opts.Scope,
		httpClient:   httpClient,
	}
}

func (p *ClientCredentialsProvider) CurrentToken(ctx context.Context) (string, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.token != "" && time.Now().Before(p.expiresAt) {
		return p.token, nil
	}

	token, expiresAt, err := p.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	p.token = token
	p.expiresAt = expiresAt
	return token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (p *ClientCredentialsProvider) Invalidate() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.token = ""
	p.expiresAt = time.Time{}
}

func (p *ClientCredentialsProvider) fetchToken(ctx context.Context) (string, time.Time, error) {
	if p.tokenURL == "" {
		return "", time.Time{}, models.NewDomainError(models.KindAuthExpired, "token endpoint is not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	if p.scope != "" {
		form.Set("scope", p.scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, models.WrapDomainError(models.KindAuthExpired,
			fmt.Sprintf("token endpoint unreachable: %v", err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", time.Time{}, models.NewRemoteError(models.KindAuthExpired, "",
			fmt.Sprintf("token request failed with status %d", resp.StatusCode))
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode token response: %v", err)
	}
	if grant.AccessToken == "" {
		return "", time.Time{}, models.NewDomainError(models.KindAuthExpired, "token endpoint returned an empty token")
	}

	expiresAt := tokenExpiry(grant.AccessToken)
	if expiresAt.IsZero() && grant.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	}
	if expiresAt.IsZero() {
		// Provider gave no lifetime at all, assume a short one.
		expiresAt = time.Now().Add(5 * time.Minute)
	}
	return grant.AccessToken, expiresAt.Add(-expirySafetyMargin), nil
}

// tokenExpiry reads the exp claim out of a JWT access token without
// verifying the signature. Opaque tokens return the zero time.
func tokenExpiry(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	if exp, ok := claims["exp"].(float64); ok && exp > 0 {
		return time.Unix(int64(exp), 0)
	}
	return time.Time{}
}
