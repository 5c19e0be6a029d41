package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/cache"
	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS drafts (
	id          TEXT PRIMARY KEY,
	company     TEXT NOT NULL,
	company_key TEXT NOT NULL,
	facts       TEXT NOT NULL,
	draft       TEXT NOT NULL,
	ceo_email   TEXT NOT NULL DEFAULT '',
	sources     TEXT NOT NULL DEFAULT '[]',
	synthesis   TEXT NOT NULL DEFAULT '',
	cache_hit   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_drafts_company_key ON drafts(company_key);
CREATE INDEX IF NOT EXISTS idx_drafts_created_at ON drafts(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDraft(ctx context.Context, rec model.DraftRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	row, err := toRow(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO drafts (id, company, company_key, facts, draft, ceo_email, sources, synthesis, cache_hit, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id, row.company, row.companyKey, string(row.facts), string(row.draft),
		row.ceoEmail, string(row.sources), row.synthesis, row.cacheHit, row.durationMS, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert draft %s", rec.ID)
	}
	return nil
}

func (s *SQLiteStore) GetDraft(ctx context.Context, id string) (*model.DraftRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, facts, draft, ceo_email, sources, synthesis, cache_hit, duration_ms, created_at FROM drafts WHERE id = ?`,
		id,
	)
	rec, err := scanSQLiteDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get draft %s", id)
	}
	return rec, nil
}

func (s *SQLiteStore) ListDrafts(ctx context.Context, filter DraftFilter) ([]model.DraftRecord, error) {
	query := `SELECT id, company, facts, draft, ceo_email, sources, synthesis, cache_hit, duration_ms, created_at FROM drafts WHERE 1=1`
	var args []any

	if filter.Company != "" {
		query += ` AND company_key = ?`
		args = append(args, cache.Key(filter.Company))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list drafts")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.DraftRecord
	for rows.Next() {
		rec, err := scanSQLiteDraft(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan draft")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate drafts")
}

func scanSQLiteDraft(row scannable) (*model.DraftRecord, error) {
	var (
		rec                   model.DraftRecord
		facts, draft, sources string
	)
	if err := row.Scan(&rec.ID, &rec.CompanyName, &facts, &draft, &rec.CEOEmail, &sources,
		&rec.Synthesis, &rec.CacheHit, &rec.DurationMS, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeJSONColumns(&rec, []byte(facts), []byte(draft), []byte(sources)); err != nil {
		return nil, err
	}
	return &rec, nil
}
