package google

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

// ErrOAuthNotConfigured is returned when the OAuth client id/secret are not set.
var ErrOAuthNotConfigured = errors.New("oauth client credentials not configured: set RANKPANEL_OAUTH_CLIENT_ID and RANKPANEL_OAUTH_CLIENT_SECRET")

// googleTokenURL is Google's OAuth2 token endpoint (the only part of the
// authorization server the refresh grant touches).
const googleTokenURL = "https://oauth2.googleapis.com/token"

// Compile-time interface satisfaction check.
var _ driven.TokenRefresher = (*TokenClient)(nil)

// TokenClient implements the TokenRefresher port with the oauth2 refresh-token
// grant. No retry: a failed exchange propagates to the caller as-is.
type TokenClient struct {
	cfg oauth2.Config
}

// NewTokenClient creates a TokenClient for Google's token endpoint.
// Returns ErrOAuthNotConfigured if either client credential is empty.
func NewTokenClient(clientID, clientSecret string) (*TokenClient, error) {
	return newTokenClient(clientID, clientSecret, googleTokenURL)
}

// NewTokenClientWithTokenURL creates a TokenClient against a custom token
// endpoint. Intended for tests with an httptest server.
func NewTokenClientWithTokenURL(clientID, clientSecret, tokenURL string) (*TokenClient, error) {
	return newTokenClient(clientID, clientSecret, tokenURL)
}

func newTokenClient(clientID, clientSecret, tokenURL string) (*TokenClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrOAuthNotConfigured
	}
	return &TokenClient{
		cfg: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		},
	}, nil
}

// DisabledRefresher is wired when OAuth client credentials are absent: the
// process starts normally and every sync reports ErrOAuthNotConfigured
// instead of refusing to boot.
type DisabledRefresher struct{}

// Refresh always fails with ErrOAuthNotConfigured.
func (DisabledRefresher) Refresh(context.Context, string) (string, string, time.Time, error) {
	return "", "", time.Time{}, ErrOAuthNotConfigured
}

// Refresh exchanges the refresh token for a fresh access token. Google only
// rotates refresh tokens in rare cases; when the response omits one, the
// input refresh token is returned so the caller can persist it unchanged.
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
	src := c.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	tok, err := src.Token()
	if err != nil {
		return "", "", time.Time{}, err
	}

	newRefresh := tok.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}

	return tok.AccessToken, newRefresh, tok.Expiry, nil
}
