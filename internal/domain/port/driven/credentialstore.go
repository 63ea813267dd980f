// Package driven defines the outbound port interfaces the application layer
// depends on. Adapters under internal/adapter/driven implement them.
package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// RANKPANEL_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set RANKPANEL_SECRET_KEY")

// ErrNotConnected is returned when a user has no stored refresh token, i.e.
// has never completed the OAuth connection flow (or disconnected).
var ErrNotConnected = errors.New("user has not connected a search analytics account")

// CredentialStore persists per-user OAuth tokens. The adapter layer is
// responsible for at-rest encryption; this interface operates on plaintext
// values at the domain boundary.
type CredentialStore interface {
	// Get retrieves the credential for the given user.
	// Returns (nil, nil) if the user has no credential row.
	Get(ctx context.Context, userID int64) (*model.Credential, error)

	// SaveTokens unconditionally overwrites the user's access token, refresh
	// token, and expiry. Used by both the initial OAuth exchange and refresh.
	SaveTokens(ctx context.Context, userID int64, access, refresh string, expiry time.Time) error

	// UpdateAccessToken overwrites only the access token and expiry, keeping
	// the stored refresh token. Used by the refresh path when the token
	// endpoint does not rotate the refresh token.
	UpdateAccessToken(ctx context.Context, userID int64, access string, expiry time.Time) error
}
