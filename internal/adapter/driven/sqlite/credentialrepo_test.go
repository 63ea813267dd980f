package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

func TestCredentialRepo_SaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveTokens(ctx, 7, "access-abc", "refresh-xyz", expiry))

	cred, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, cred)

	assert.Equal(t, int64(7), cred.UserID)
	assert.Equal(t, "access-abc", cred.AccessToken)
	assert.Equal(t, "refresh-xyz", cred.RefreshToken)
	assert.True(t, cred.Expiry.Equal(expiry))
	assert.False(t, cred.UpdatedAt.IsZero())
}

func TestCredentialRepo_Get_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())

	cred, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestCredentialRepo_SaveTokens_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.SaveTokens(ctx, 7, "old-access", "old-refresh", time.Now().UTC()))
	newExpiry := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveTokens(ctx, 7, "new-access", "new-refresh", newExpiry))

	cred, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, cred)

	assert.Equal(t, "new-access", cred.AccessToken)
	assert.Equal(t, "new-refresh", cred.RefreshToken)
	assert.True(t, cred.Expiry.Equal(newExpiry))
}

func TestCredentialRepo_UpdateAccessToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.SaveTokens(ctx, 7, "old-access", "refresh-xyz", time.Time{}))

	expiry := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateAccessToken(ctx, 7, "fresh-access", expiry))

	cred, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, cred)

	assert.Equal(t, "fresh-access", cred.AccessToken)
	assert.Equal(t, "refresh-xyz", cred.RefreshToken, "refresh token must be kept")
	assert.True(t, cred.Expiry.Equal(expiry))
}

func TestCredentialRepo_UpdateAccessToken_NoRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())

	err := repo.UpdateAccessToken(context.Background(), 99, "access", time.Now().UTC())
	assert.ErrorIs(t, err, driven.ErrNotConnected)
}

func TestCredentialRepo_NilExpiryAndAccess(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	// Initial OAuth exchange may store only a refresh token.
	require.NoError(t, repo.SaveTokens(ctx, 7, "", "refresh-xyz", time.Time{}))

	cred, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, cred)

	assert.Empty(t, cred.AccessToken)
	assert.True(t, cred.Expiry.IsZero())
	assert.False(t, cred.HasValidAccessToken(time.Now()))
}

func TestCredentialRepo_NoEncryptionKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, nil)

	_, err := repo.Get(context.Background(), 7)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	err = repo.SaveTokens(context.Background(), 7, "a", "r", time.Time{})
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestCredentialRepo_TokensEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.SaveTokens(ctx, 7, "access-abc", "refresh-xyz", time.Now().UTC()))

	var access, refresh string
	err := db.Reader.QueryRowContext(ctx, `SELECT access_token, refresh_token FROM credentials WHERE user_id = 7`).Scan(&access, &refresh)
	require.NoError(t, err)

	assert.NotEqual(t, "access-abc", access)
	assert.NotEqual(t, "refresh-xyz", refresh)
}
