// Package model contains the core domain types shared across ports and adapters.
package model

import "time"

// Credential holds a user's OAuth tokens for the search analytics API.
// AccessToken and Expiry form a time-bounded cache: while Expiry is set and in
// the future, the access token is assumed usable without a network call.
// RefreshToken is required for any refresh; a credential without one is
// treated as not connected.
type Credential struct {
	UserID       int64
	AccessToken  string
	RefreshToken string
	Expiry       time.Time // Zero value means no known expiry (token treated as expired).
	UpdatedAt    time.Time
}

// HasValidAccessToken reports whether the cached access token can be used
// without a refresh at the given instant.
func (c Credential) HasValidAccessToken(now time.Time) bool {
	return c.AccessToken != "" && !c.Expiry.IsZero() && c.Expiry.After(now)
}
