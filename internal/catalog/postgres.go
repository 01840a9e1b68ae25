package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/plantcare/internal/db"
	"github.com/sells-group/plantcare/internal/model"
)

// Postgres implements Catalog using pgxpool.
type Postgres struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a Postgres catalog with a connection pool of at most
// poolSize connections (10 when unset).
func NewPostgres(ctx context.Context, connString string, poolSize int32) (*Postgres, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	if poolSize > 0 {
		pgxCfg.MaxConns = poolSize
	}
	pgxCfg.MinConns = min(2, pgxCfg.MaxConns)
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
	return &Postgres{pool: pool, closeFn: pool.Close}, nil
}

func newPostgresWithPool(pool db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS plants (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	common_name    TEXT NOT NULL DEFAULT '',
	botanical_name TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	image_url      TEXT NOT NULL DEFAULT '',
	care           JSONB NOT NULL DEFAULT '{}',
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_plants_name ON plants(lower(name));
CREATE INDEX IF NOT EXISTS idx_plants_common_name ON plants(lower(common_name));
CREATE INDEX IF NOT EXISTS idx_plants_botanical_name ON plants(lower(botanical_name));
`

var plantUpsert = db.UpsertConfig{
	Table:        "plants",
	Columns:      []string{"id", "name", "common_name", "botanical_name", "type", "description", "image_url", "care", "updated_at"},
	ConflictKeys: []string{"id"},
}

func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *Postgres) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *Postgres) FindExact(ctx context.Context, name string) (*model.CatalogPlant, error) {
	key := model.Fold(name)
	if key == "" {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+plantColumns+` FROM plants
		WHERE lower(name) = $1 OR lower(common_name) = $1 OR lower(botanical_name) = $1
		ORDER BY name, id LIMIT 1`,
		key,
	)
	p, err := scanPlant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: find plant %q", name)
	}
	return p, nil
}

func (s *Postgres) Search(ctx context.Context, query string, limit int) ([]model.CatalogPlant, error) {
	q := model.Fold(query)
	if q == "" {
		return nil, nil
	}
	sql := `SELECT ` + plantColumns + ` FROM plants
		WHERE strpos(lower(name), $1) > 0
		   OR strpos(lower(common_name), $1) > 0
		   OR strpos(lower(botanical_name), $1) > 0
		   OR strpos(lower(description), $1) > 0
		ORDER BY name, id`
	args := []any{q}
	if limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: search %q", query)
	}
	defer rows.Close()

	var out []model.CatalogPlant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan plant")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate plants")
}

func (s *Postgres) Get(ctx context.Context, id string) (*model.CatalogPlant, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+plantColumns+` FROM plants WHERE id = $1`, id)
	p, err := scanPlant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get plant %s", id)
	}
	return p, nil
}

func (s *Postgres) Upsert(ctx context.Context, plants []model.CatalogPlant) (int64, error) {
	rows, err := plantRows(plants)
	if err != nil {
		return 0, err
	}
	n, err := db.BulkUpsert(ctx, s.pool, plantUpsert, rows)
	return n, eris.Wrap(err, "postgres: upsert plants")
}

func (s *Postgres) Replace(ctx context.Context, plants []model.CatalogPlant) (int64, error) {
	rows, err := plantRows(plants)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM plants`); err != nil {
		return 0, eris.Wrap(err, "postgres: clear plants")
	}
	n, err := db.CopyFrom(ctx, tx, plantUpsert.Table, plantUpsert.Columns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: load plants")
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit")
	}
	return n, nil
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM plants`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count plants")
}

func plantRows(plants []model.CatalogPlant) ([][]any, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(plants))
	for _, p := range plants {
		args, err := plantArgs(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, append(args, now))
	}
	return rows, nil
}
