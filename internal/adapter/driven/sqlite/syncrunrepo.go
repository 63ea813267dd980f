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
var _ driven.SyncRunStore = (*SyncRunRepo)(nil)

// SyncRunRepo is the SQLite implementation of the SyncRunStore port interface.
type SyncRunRepo struct {
	db *DB
}

// NewSyncRunRepo creates a new SyncRunRepo backed by the given DB.
func NewSyncRunRepo(db *DB) *SyncRunRepo {
	return &SyncRunRepo{db: db}
}

// Begin inserts an in-flight run and returns its id.
func (r *SyncRunRepo) Begin(ctx context.Context, kind model.SyncRunKind) (int64, error) {
	const query = `INSERT INTO sync_runs (kind, started_at) VALUES (?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query, string(kind), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("begin sync run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Finish marks a run complete with its counters and optional error text.
func (r *SyncRunRepo) Finish(ctx context.Context, id int64, run model.SyncRun) error {
	const query = `
		UPDATE sync_runs SET
			finished_at = ?,
			domains_updated = ?,
			keywords_updated = ?,
			urls_analyzed = ?,
			error = ?
		WHERE id = ?`

	var errText any
	if run.Error != "" {
		errText = run.Error
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		time.Now().UTC().Format(time.RFC3339),
		run.DomainsUpdated, run.KeywordsUpdated, run.URLsAnalyzed,
		errText, id,
	)
	if err != nil {
		return fmt.Errorf("finish sync run %d: %w", id, err)
	}
	return nil
}

// Latest returns the most recent run of the given kind, or (nil, nil).
func (r *SyncRunRepo) Latest(ctx context.Context, kind model.SyncRunKind) (*model.SyncRun, error) {
	const query = `
		SELECT id, kind, started_at, finished_at, domains_updated, keywords_updated, urls_analyzed, error
		FROM sync_runs WHERE kind = ? ORDER BY started_at DESC, id DESC LIMIT 1`

	var run model.SyncRun
	var kindStr, startedAt string
	var finishedAt, errText sql.NullString

	err := r.db.Reader.QueryRowContext(ctx, query, string(kind)).Scan(
		&run.ID, &kindStr, &startedAt, &finishedAt,
		&run.DomainsUpdated, &run.KeywordsUpdated, &run.URLsAnalyzed, &errText,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest sync run for kind %s: %w", kind, err)
	}

	run.Kind = model.SyncRunKind(kindStr)
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedAt.Valid && finishedAt.String != "" {
		if run.FinishedAt, err = parseTime(finishedAt.String); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
	}
	if errText.Valid {
		run.Error = errText.String
	}

	return &run, nil
}
