package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/cache"
	"github.com/sells-group/outreach-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(5)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS drafts (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company     TEXT NOT NULL,
	company_key TEXT NOT NULL,
	facts       JSONB NOT NULL,
	draft       JSONB NOT NULL,
	ceo_email   TEXT NOT NULL DEFAULT '',
	sources     JSONB NOT NULL DEFAULT '[]',
	synthesis   TEXT NOT NULL DEFAULT '',
	cache_hit   BOOLEAN NOT NULL DEFAULT false,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_drafts_company_key ON drafts(company_key);
CREATE INDEX IF NOT EXISTS idx_drafts_created_at ON drafts(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveDraft(ctx context.Context, rec model.DraftRecord) error {
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

	_, err = s.pool.Exec(ctx,
		`INSERT INTO drafts (id, company, company_key, facts, draft, ceo_email, sources, synthesis, cache_hit, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		row.id, row.company, row.companyKey, row.facts, row.draft,
		row.ceoEmail, row.sources, row.synthesis, row.cacheHit, row.durationMS, rec.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert draft %s", rec.ID)
	}
	return nil
}

func (s *PostgresStore) GetDraft(ctx context.Context, id string) (*model.DraftRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, company, facts, draft, ceo_email, sources, synthesis, cache_hit, duration_ms, created_at FROM drafts WHERE id = $1`,
		id,
	)
	rec, err := scanPostgresDraft(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get draft %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) ListDrafts(ctx context.Context, filter DraftFilter) ([]model.DraftRecord, error) {
	query := `SELECT id, company, facts, draft, ceo_email, sources, synthesis, cache_hit, duration_ms, created_at FROM drafts WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Company != "" {
		query += fmt.Sprintf(` AND company_key = $%d`, argIdx)
		args = append(args, cache.Key(filter.Company))
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list drafts")
	}
	defer rows.Close()

	var out []model.DraftRecord
	for rows.Next() {
		rec, err := scanPostgresDraft(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan draft")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate drafts")
}

func scanPostgresDraft(row scannable) (*model.DraftRecord, error) {
	var (
		rec                   model.DraftRecord
		facts, draft, sources []byte
	)
	if err := row.Scan(&rec.ID, &rec.CompanyName, &facts, &draft, &rec.CEOEmail, &sources,
		&rec.Synthesis, &rec.CacheHit, &rec.DurationMS, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeJSONColumns(&rec, facts, draft, sources); err != nil {
		return nil, err
	}
	return &rec, nil
}
