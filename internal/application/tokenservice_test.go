package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/rankpanel/internal/application"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

func TestTokenService_CacheHit_NoNetworkCall(t *testing.T) {
	creds := newMockCredentialStore()
	refresher := &mockRefresher{access: "should-not-be-used"}
	svc := application.NewTokenService(creds, refresher)

	creds.seed(7, "cached-access", "refresh-xyz", time.Now().Add(30*time.Minute))

	token, err := svc.GetValidAccessToken(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "cached-access", token)
	assert.Zero(t, refresher.callCount(), "valid cached token must not trigger a refresh")
}

func TestTokenService_ExpiredToken_RefreshesOnce(t *testing.T) {
	creds := newMockCredentialStore()
	refresher := &mockRefresher{access: "fresh-access", expiry: time.Now().Add(time.Hour)}
	svc := application.NewTokenService(creds, refresher)

	creds.seed(7, "stale-access", "refresh-xyz", time.Now().Add(-time.Minute))

	token, err := svc.GetValidAccessToken(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "fresh-access", token)
	assert.Equal(t, 1, refresher.callCount())

	stored, err := creds.Get(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "fresh-access", stored.AccessToken, "refreshed token must be persisted")
	assert.Equal(t, "refresh-xyz", stored.RefreshToken)
}

func TestTokenService_AbsentExpiry_Refreshes(t *testing.T) {
	creds := newMockCredentialStore()
	refresher := &mockRefresher{access: "fresh-access", expiry: time.Now().Add(time.Hour)}
	svc := application.NewTokenService(creds, refresher)

	creds.seed(7, "", "refresh-xyz", time.Time{})

	token, err := svc.GetValidAccessToken(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", token)
	assert.Equal(t, 1, refresher.callCount())
}

func TestTokenService_NotConnected(t *testing.T) {
	creds := newMockCredentialStore()
	svc := application.NewTokenService(creds, &mockRefresher{})

	_, err := svc.GetValidAccessToken(context.Background(), 42)
	assert.ErrorIs(t, err, driven.ErrNotConnected)
}

func TestTokenService_RefreshFailure_Propagates(t *testing.T) {
	creds := newMockCredentialStore()
	refreshErr := errors.New("invalid_grant")
	refresher := &mockRefresher{err: refreshErr}
	svc := application.NewTokenService(creds, refresher)

	creds.seed(7, "", "expired-refresh", time.Time{})

	_, err := svc.GetValidAccessToken(context.Background(), 7)
	assert.ErrorIs(t, err, refreshErr, "refresh failure must propagate unwrapped")
}

func TestTokenService_RotatedRefreshToken_Persisted(t *testing.T) {
	creds := newMockCredentialStore()
	refresher := &mockRefresher{access: "fresh-access", refresh: "rotated-refresh", expiry: time.Now().Add(time.Hour)}
	svc := application.NewTokenService(creds, refresher)

	creds.seed(7, "", "old-refresh", time.Time{})

	_, err := svc.GetValidAccessToken(context.Background(), 7)
	require.NoError(t, err)

	stored, err := creds.Get(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "rotated-refresh", stored.RefreshToken)
}

func TestTokenService_ConcurrentCallers_ShareOneRefresh(t *testing.T) {
	creds := newMockCredentialStore()
	refresher := &mockRefresher{
		access: "fresh-access",
		expiry: time.Now().Add(time.Hour),
		delay:  20 * time.Millisecond,
	}
	svc := application.NewTokenService(creds, refresher)

	creds.seed(7, "", "refresh-xyz", time.Time{})

	const callers = 8
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := svc.GetValidAccessToken(context.Background(), 7)
			require.NoError(t, err)
			tokens[i] = tok
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, refresher.callCount(), "losers of the race must reuse the winner's token")
	for _, tok := range tokens {
		assert.Equal(t, "fresh-access", tok)
	}
}

func TestTokenService_SaveTokens_ComputesExpiry(t *testing.T) {
	creds := newMockCredentialStore()
	svc := application.NewTokenService(creds, &mockRefresher{})

	before := time.Now()
	require.NoError(t, svc.SaveTokens(context.Background(), 7, "access", "refresh", time.Hour))

	stored, err := creds.Get(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.WithinDuration(t, before.Add(time.Hour), stored.Expiry, 5*time.Second)
}
