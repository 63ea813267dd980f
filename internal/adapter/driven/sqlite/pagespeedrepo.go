package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PageSpeedStore = (*PageSpeedRepo)(nil)

// PageSpeedRepo is the SQLite implementation of the PageSpeedStore port interface.
type PageSpeedRepo struct {
	db *DB
}

// NewPageSpeedRepo creates a new PageSpeedRepo backed by the given DB.
func NewPageSpeedRepo(db *DB) *PageSpeedRepo {
	return &PageSpeedRepo{db: db}
}

// UpsertSnapshot writes one (domain, url, strategy, day) snapshot, replacing
// any earlier snapshot for the same key.
func (r *PageSpeedRepo) UpsertSnapshot(ctx context.Context, snap model.PageSpeedHistory) error {
	const query = `
		INSERT INTO pagespeed_history (
			domain_id, url, strategy, day,
			performance, accessibility, best_practices, seo,
			lcp_ms, fid_ms, cls, fcp_ms, ttfb_ms, speed_index_ms, tbt_ms,
			raw_payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (domain_id, url, strategy, day) DO UPDATE SET
			performance = excluded.performance,
			accessibility = excluded.accessibility,
			best_practices = excluded.best_practices,
			seo = excluded.seo,
			lcp_ms = excluded.lcp_ms,
			fid_ms = excluded.fid_ms,
			cls = excluded.cls,
			fcp_ms = excluded.fcp_ms,
			ttfb_ms = excluded.ttfb_ms,
			speed_index_ms = excluded.speed_index_ms,
			tbt_ms = excluded.tbt_ms,
			raw_payload = excluded.raw_payload`

	m := snap.Metrics
	_, err := r.db.Writer.ExecContext(ctx, query,
		snap.DomainID, snap.URL, snap.Strategy, snap.Day.String(),
		m.Performance, m.Accessibility, m.BestPractices, m.SEO,
		m.LCPMs, m.FIDMs, m.CLS, m.FCPMs, m.TTFBMs, m.SpeedIndexMs, m.BlockingTimeMs,
		snap.RawPayload,
	)
	if err != nil {
		return fmt.Errorf("upsert pagespeed history for domain %d url %s: %w", snap.DomainID, snap.URL, err)
	}
	return nil
}

// ListByDomain returns snapshots for a domain, newest first.
func (r *PageSpeedRepo) ListByDomain(ctx context.Context, domainID int64, limit int) ([]model.PageSpeedHistory, error) {
	const query = `
		SELECT id, domain_id, url, strategy, day,
			performance, accessibility, best_practices, seo,
			lcp_ms, fid_ms, cls, fcp_ms, ttfb_ms, speed_index_ms, tbt_ms,
			raw_payload, created_at
		FROM pagespeed_history WHERE domain_id = ? ORDER BY day DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, domainID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pagespeed history for domain %d: %w", domainID, err)
	}
	defer rows.Close()

	var history []model.PageSpeedHistory
	for rows.Next() {
		var h model.PageSpeedHistory
		var day, createdAt string
		m := &h.Metrics
		if err := rows.Scan(
			&h.ID, &h.DomainID, &h.URL, &h.Strategy, &day,
			&m.Performance, &m.Accessibility, &m.BestPractices, &m.SEO,
			&m.LCPMs, &m.FIDMs, &m.CLS, &m.FCPMs, &m.TTFBMs, &m.SpeedIndexMs, &m.BlockingTimeMs,
			&h.RawPayload, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan pagespeed history: %w", err)
		}
		h.Day = model.Day(day)
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pagespeed history: %w", err)
	}

	return history, nil
}
