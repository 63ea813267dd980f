// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

// TokenService is the credential lifecycle manager. It serves access tokens
// from the time-bounded cache in the credential row and refreshes through the
// token endpoint when the cache misses. Refreshes for the same user are
// serialized so concurrent callers share one exchange.
type TokenService struct {
	credStore driven.CredentialStore
	refresher driven.TokenRefresher
	now       func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewTokenService creates a TokenService.
func NewTokenService(credStore driven.CredentialStore, refresher driven.TokenRefresher) *TokenService {
	return &TokenService{
		credStore: credStore,
		refresher: refresher,
		now:       time.Now,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// GetValidAccessToken returns a currently valid access token for the user.
// Returns driven.ErrNotConnected when the user has no stored refresh token.
// A cached token with expiry strictly after now is returned without any
// network call; otherwise one refresh is performed and persisted. Refresh
// failures propagate unwrapped.
func (s *TokenService) GetValidAccessToken(ctx context.Context, userID int64) (string, error) {
	cred, err := s.credStore.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load credential for user %d: %w", userID, err)
	}
	if cred == nil || cred.RefreshToken == "" {
		return "", driven.ErrNotConnected
	}

	if cred.HasValidAccessToken(s.now()) {
		return cred.AccessToken, nil
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: a concurrent caller may have refreshed while we
	// waited, in which case we reuse its token instead of a second exchange.
	cred, err = s.credStore.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("reload credential for user %d: %w", userID, err)
	}
	if cred == nil || cred.RefreshToken == "" {
		return "", driven.ErrNotConnected
	}
	if cred.HasValidAccessToken(s.now()) {
		return cred.AccessToken, nil
	}

	access, refresh, expiry, err := s.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return "", err
	}

	if refresh != cred.RefreshToken {
		err = s.credStore.SaveTokens(ctx, userID, access, refresh, expiry)
	} else {
		err = s.credStore.UpdateAccessToken(ctx, userID, access, expiry)
	}
	if err != nil {
		return "", fmt.Errorf("persist refreshed token for user %d: %w", userID, err)
	}

	slog.Info("access token refreshed", "user", userID, "expiry", expiry.UTC().Format(time.RFC3339))
	return access, nil
}

// SaveTokens unconditionally overwrites the user's token set, computing
// expiry = now + expiresIn. Used by the initial OAuth exchange and available
// to the refresh path.
func (s *TokenService) SaveTokens(ctx context.Context, userID int64, access, refresh string, expiresIn time.Duration) error {
	expiry := s.now().Add(expiresIn)
	if err := s.credStore.SaveTokens(ctx, userID, access, refresh, expiry); err != nil {
		return fmt.Errorf("save tokens for user %d: %w", userID, err)
	}
	return nil
}

func (s *TokenService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
