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
var _ driven.DomainStore = (*DomainRepo)(nil)

// DomainRepo is the SQLite implementation of the DomainStore port interface.
// The sync subsystem only reads domains; Add exists for tests and seeding.
type DomainRepo struct {
	db *DB
}

// NewDomainRepo creates a new DomainRepo backed by the given DB.
func NewDomainRepo(db *DB) *DomainRepo {
	return &DomainRepo{db: db}
}

// Add inserts a new domain and returns its id.
func (r *DomainRepo) Add(ctx context.Context, d model.Domain) (int64, error) {
	const query = `INSERT INTO domains (user_id, name, site_url, property, added_at) VALUES (?, ?, ?, ?, ?)`

	addedAt := d.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query, d.UserID, d.Name, d.SiteURL, d.Property, addedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("add domain %s: %w", d.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// GetByID retrieves a domain by id. Returns (nil, nil) if not found.
func (r *DomainRepo) GetByID(ctx context.Context, id int64) (*model.Domain, error) {
	const query = `SELECT id, user_id, name, site_url, property, added_at FROM domains WHERE id = ?`

	d, err := scanDomain(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get domain %d: %w", id, err)
	}
	return d, nil
}

// ListByUser returns all domains owned by the given user, ordered by name.
func (r *DomainRepo) ListByUser(ctx context.Context, userID int64) ([]model.Domain, error) {
	const query = `SELECT id, user_id, name, site_url, property, added_at FROM domains WHERE user_id = ? ORDER BY name`
	return r.list(ctx, query, userID)
}

// ListAll returns every tracked domain across all users, ordered by id.
func (r *DomainRepo) ListAll(ctx context.Context) ([]model.Domain, error) {
	const query = `SELECT id, user_id, name, site_url, property, added_at FROM domains ORDER BY id`
	return r.list(ctx, query)
}

func (r *DomainRepo) list(ctx context.Context, query string, args ...any) ([]model.Domain, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var domains []model.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domains: %w", err)
	}

	return domains, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDomain(s scanner) (*model.Domain, error) {
	var d model.Domain
	var addedAt string

	err := s.Scan(&d.ID, &d.UserID, &d.Name, &d.SiteURL, &d.Property, &addedAt)
	if err != nil {
		return nil, err
	}

	d.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, fmt.Errorf("parse added_at: %w", err)
	}

	return &d, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
