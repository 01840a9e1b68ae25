package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/plantcare/internal/model"
)

// SQLite implements Catalog using modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
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
	return &SQLite{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS plants (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	common_name     TEXT NOT NULL DEFAULT '',
	botanical_name  TEXT NOT NULL DEFAULT '',
	type            TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	image_url       TEXT NOT NULL DEFAULT '',
	care            TEXT NOT NULL DEFAULT '{}',
	name_key        TEXT NOT NULL DEFAULT '',
	common_key      TEXT NOT NULL DEFAULT '',
	botanical_key   TEXT NOT NULL DEFAULT '',
	description_key TEXT NOT NULL DEFAULT '',
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_plants_name_key ON plants(name_key);
CREATE INDEX IF NOT EXISTS idx_plants_common_key ON plants(common_key);
CREATE INDEX IF NOT EXISTS idx_plants_botanical_key ON plants(botanical_key);
`

const plantColumns = `id, name, common_name, botanical_name, type, description, image_url, care`

// SQLite's lower() folds ASCII only, so the *_key columns hold the same
// Unicode folding the other backends compare with.
const sqliteKeyColumns = `name_key, common_key, botanical_key, description_key`

func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) FindExact(ctx context.Context, name string) (*model.CatalogPlant, error) {
	key := model.Fold(name)
	if key == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+plantColumns+` FROM plants
		WHERE name_key = ? OR common_key = ? OR botanical_key = ?
		ORDER BY rowid LIMIT 1`,
		key, key, key,
	)
	p, err := scanPlant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find plant %q", name)
	}
	return p, nil
}

func (s *SQLite) Search(ctx context.Context, query string, limit int) ([]model.CatalogPlant, error) {
	q := model.Fold(query)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+plantColumns+` FROM plants
		WHERE instr(name_key, ?) > 0
		   OR instr(common_key, ?) > 0
		   OR instr(botanical_key, ?) > 0
		   OR instr(description_key, ?) > 0
		ORDER BY rowid LIMIT ?`,
		q, q, q, q, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: search %q", query)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.CatalogPlant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan plant")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate plants")
}

func (s *SQLite) Get(ctx context.Context, id string) (*model.CatalogPlant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+plantColumns+` FROM plants WHERE id = ?`, id)
	p, err := scanPlant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get plant %s", id)
	}
	return p, nil
}

func (s *SQLite) Upsert(ctx context.Context, plants []model.CatalogPlant) (int64, error) {
	return s.write(ctx, plants, false)
}

func (s *SQLite) Replace(ctx context.Context, plants []model.CatalogPlant) (int64, error) {
	return s.write(ctx, plants, true)
}

func (s *SQLite) write(ctx context.Context, plants []model.CatalogPlant, replace bool) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM plants`); err != nil {
			return 0, eris.Wrap(err, "sqlite: clear plants")
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO plants (`+plantColumns+`, `+sqliteKeyColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			common_name = excluded.common_name,
			botanical_name = excluded.botanical_name,
			type = excluded.type,
			description = excluded.description,
			image_url = excluded.image_url,
			care = excluded.care,
			name_key = excluded.name_key,
			common_key = excluded.common_key,
			botanical_key = excluded.botanical_key,
			description_key = excluded.description_key,
			updated_at = excluded.updated_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	var n int64
	for _, p := range plants {
		args, err := plantArgs(p)
		if err != nil {
			return 0, err
		}
		args = append(args, model.Fold(p.Name), model.Fold(p.CommonName), model.Fold(p.BotanicalName), model.Fold(p.Description), now)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert plant %s", p.ID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return n, nil
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM plants`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count plants")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlant(row scanner) (*model.CatalogPlant, error) {
	var (
		p    model.CatalogPlant
		care []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.CommonName, &p.BotanicalName, &p.Type, &p.Description, &p.ImageURL, &care); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(care, &p.Care); err != nil {
		return nil, eris.Wrapf(err, "catalog: decode care for %s", p.ID)
	}
	return &p, nil
}

// plantArgs returns the column values in plantColumns order.
func plantArgs(p model.CatalogPlant) ([]any, error) {
	if p.ID == "" {
		return nil, eris.Errorf("catalog: plant %q has no id", p.Name)
	}
	care, err := json.Marshal(p.Care)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: encode care for %s", p.ID)
	}
	return []any{p.ID, p.Name, p.CommonName, p.BotanicalName, p.Type, p.Description, p.ImageURL, care}, nil
}
