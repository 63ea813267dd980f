package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KeywordStore = (*KeywordRepo)(nil)

// KeywordRepo is the SQLite implementation of the KeywordStore port interface.
type KeywordRepo struct {
	db *DB
}

// NewKeywordRepo creates a new KeywordRepo backed by the given DB.
func NewKeywordRepo(db *DB) *KeywordRepo {
	return &KeywordRepo{db: db}
}

// GetOrCreate returns the existing keyword for (domainID, text), creating it
// attributed to userID if absent. The select-then-insert is not guarded by a
// storage constraint; the sequential sync loop is the only writer.
func (r *KeywordRepo) GetOrCreate(ctx context.Context, domainID, userID int64, text string) (*model.Keyword, error) {
	const selectQuery = `SELECT id, domain_id, user_id, keyword, added_at FROM keywords WHERE domain_id = ? AND keyword = ?`

	kw, err := scanKeyword(r.db.Reader.QueryRowContext(ctx, selectQuery, domainID, text))
	if err == nil {
		return kw, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get keyword %q for domain %d: %w", text, domainID, err)
	}

	const insertQuery = `INSERT INTO keywords (domain_id, user_id, keyword, added_at) VALUES (?, ?, ?, ?)`

	addedAt := time.Now().UTC()
	result, err := r.db.Writer.ExecContext(ctx, insertQuery, domainID, userID, text, addedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("create keyword %q for domain %d: %w", text, domainID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &model.Keyword{
		ID:       id,
		DomainID: domainID,
		UserID:   userID,
		Text:     text,
		AddedAt:  addedAt,
	}, nil
}

// ListByDomain returns all keywords tracked for a domain, ordered by text.
func (r *KeywordRepo) ListByDomain(ctx context.Context, domainID int64) ([]model.Keyword, error) {
	const query = `SELECT id, domain_id, user_id, keyword, added_at FROM keywords WHERE domain_id = ? ORDER BY keyword`

	rows, err := r.db.Reader.QueryContext(ctx, query, domainID)
	if err != nil {
		return nil, fmt.Errorf("list keywords for domain %d: %w", domainID, err)
	}
	defer rows.Close()

	var keywords []model.Keyword
	for rows.Next() {
		kw, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, *kw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keywords: %w", err)
	}

	return keywords, nil
}

func scanKeyword(s scanner) (*model.Keyword, error) {
	var kw model.Keyword
	var addedAt string

	err := s.Scan(&kw.ID, &kw.DomainID, &kw.UserID, &kw.Text, &addedAt)
	if err != nil {
		return nil, err
	}

	kw.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, fmt.Errorf("parse added_at: %w", err)
	}

	return &kw, nil
}
