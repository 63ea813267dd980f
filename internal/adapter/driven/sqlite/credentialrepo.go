package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// Token values are encrypted with AES-256-GCM before write and decrypted after read.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when encryption is disabled.
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes for AES-256-GCM,
// or nil to disable credential storage (all operations will return ErrEncryptionKeyNotSet).
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

// Get retrieves the credential for the given user.
// Returns (nil, nil) if the user has no credential row.
func (r *CredentialRepo) Get(ctx context.Context, userID int64) (*model.Credential, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT access_token, refresh_token, expiry, updated_at FROM credentials WHERE user_id = ?`

	var access, expiry sql.NullString
	var refresh, updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, userID).Scan(&access, &refresh, &expiry, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential for user %d: %w", userID, err)
	}

	cred := model.Credential{UserID: userID}

	if cred.RefreshToken, err = r.decrypt(refresh); err != nil {
		return nil, fmt.Errorf("decrypt refresh token for user %d: %w", userID, err)
	}
	if access.Valid && access.String != "" {
		if cred.AccessToken, err = r.decrypt(access.String); err != nil {
			return nil, fmt.Errorf("decrypt access token for user %d: %w", userID, err)
		}
	}
	if expiry.Valid && expiry.String != "" {
		if cred.Expiry, err = parseTime(expiry.String); err != nil {
			return nil, fmt.Errorf("parse expiry for user %d: %w", userID, err)
		}
	}
	if cred.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for user %d: %w", userID, err)
	}

	return &cred, nil
}

// SaveTokens stores or replaces the user's full token set. expiry may be the
// zero time, stored as NULL.
func (r *CredentialRepo) SaveTokens(ctx context.Context, userID int64, access, refresh string, expiry time.Time) error {
	encAccess, err := r.encryptNullable(access)
	if err != nil {
		return err
	}
	encRefresh, err := r.encrypt(refresh)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO credentials (user_id, access_token, refresh_token, expiry, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP`

	_, err = r.db.Writer.ExecContext(ctx, query, userID, encAccess, encRefresh, nullableTime(expiry))
	if err != nil {
		return fmt.Errorf("save tokens for user %d: %w", userID, err)
	}
	return nil
}

// UpdateAccessToken overwrites only the access token and expiry, keeping the
// stored refresh token.
func (r *CredentialRepo) UpdateAccessToken(ctx context.Context, userID int64, access string, expiry time.Time) error {
	encAccess, err := r.encryptNullable(access)
	if err != nil {
		return err
	}

	const query = `UPDATE credentials SET access_token = ?, expiry = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, encAccess, nullableTime(expiry), userID)
	if err != nil {
		return fmt.Errorf("update access token for user %d: %w", userID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update access token for user %d: %w", userID, driven.ErrNotConnected)
	}

	return nil
}

// nullableTime maps the zero time to NULL, otherwise RFC3339 UTC.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// encryptNullable maps an empty value to NULL instead of encrypting it.
func (r *CredentialRepo) encryptNullable(plaintext string) (any, error) {
	if plaintext == "" {
		return nil, nil
	}
	return r.encrypt(plaintext)
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}
