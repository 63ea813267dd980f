package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.HistoryStore = (*HistoryRepo)(nil)

// HistoryRepo is the SQLite implementation of the HistoryStore port interface.
// Writes are ON CONFLICT upserts keyed by (entity, day) so a repeated sync for
// the same day replaces the snapshot.
type HistoryRepo struct {
	db *DB
}

// NewHistoryRepo creates a new HistoryRepo backed by the given DB.
func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// UpsertDomainDay writes the aggregate snapshot for one domain and day.
func (r *HistoryRepo) UpsertDomainDay(ctx context.Context, domainID int64, day model.Day, m model.SearchMetrics) error {
	const query = `
		INSERT INTO domain_history (domain_id, day, clicks, impressions, position, ctr)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (domain_id, day) DO UPDATE SET
			clicks = excluded.clicks,
			impressions = excluded.impressions,
			position = excluded.position,
			ctr = excluded.ctr`

	_, err := r.db.Writer.ExecContext(ctx, query, domainID, day.String(), m.Clicks, m.Impressions, m.Position, m.CTR)
	if err != nil {
		return fmt.Errorf("upsert domain history for domain %d day %s: %w", domainID, day, err)
	}
	return nil
}

// UpsertKeywordDay writes the snapshot for one keyword and day.
func (r *HistoryRepo) UpsertKeywordDay(ctx context.Context, keywordID int64, day model.Day, m model.SearchMetrics) error {
	const query = `
		INSERT INTO keyword_history (keyword_id, day, clicks, impressions, position, ctr)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (keyword_id, day) DO UPDATE SET
			clicks = excluded.clicks,
			impressions = excluded.impressions,
			position = excluded.position,
			ctr = excluded.ctr`

	_, err := r.db.Writer.ExecContext(ctx, query, keywordID, day.String(), m.Clicks, m.Impressions, m.Position, m.CTR)
	if err != nil {
		return fmt.Errorf("upsert keyword history for keyword %d day %s: %w", keywordID, day, err)
	}
	return nil
}

// ListDomainHistory returns snapshots for a domain, newest first.
func (r *HistoryRepo) ListDomainHistory(ctx context.Context, domainID int64, limit int) ([]model.DomainHistory, error) {
	const query = `
		SELECT id, domain_id, day, clicks, impressions, position, ctr, created_at
		FROM domain_history WHERE domain_id = ? ORDER BY day DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, domainID, limit)
	if err != nil {
		return nil, fmt.Errorf("list domain history for domain %d: %w", domainID, err)
	}
	defer rows.Close()

	var history []model.DomainHistory
	for rows.Next() {
		var h model.DomainHistory
		var day, createdAt string
		if err := rows.Scan(&h.ID, &h.DomainID, &day, &h.Metrics.Clicks, &h.Metrics.Impressions, &h.Metrics.Position, &h.Metrics.CTR, &createdAt); err != nil {
			return nil, fmt.Errorf("scan domain history: %w", err)
		}
		h.Day = model.Day(day)
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domain history: %w", err)
	}

	return history, nil
}

// ListKeywordHistory returns snapshots for a keyword, newest first.
func (r *HistoryRepo) ListKeywordHistory(ctx context.Context, keywordID int64, limit int) ([]model.KeywordHistory, error) {
	const query = `
		SELECT id, keyword_id, day, clicks, impressions, position, ctr, created_at
		FROM keyword_history WHERE keyword_id = ? ORDER BY day DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, keywordID, limit)
	if err != nil {
		return nil, fmt.Errorf("list keyword history for keyword %d: %w", keywordID, err)
	}
	defer rows.Close()

	var history []model.KeywordHistory
	for rows.Next() {
		var h model.KeywordHistory
		var day, createdAt string
		if err := rows.Scan(&h.ID, &h.KeywordID, &day, &h.Metrics.Clicks, &h.Metrics.Impressions, &h.Metrics.Position, &h.Metrics.CTR, &createdAt); err != nil {
			return nil, fmt.Errorf("scan keyword history: %w", err)
		}
		h.Day = model.Day(day)
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyword history: %w", err)
	}

	return history, nil
}
