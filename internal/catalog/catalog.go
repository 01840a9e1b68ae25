// Package catalog stores the local plant catalog consulted before any
// external provider. Backends: in-memory, SQLite and PostgreSQL.
package catalog

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/plantcare/internal/model"
)

// ErrNotFound is returned by Get when no plant has the id.
var ErrNotFound = eris.New("catalog: plant not found")

// Catalog is the local plant store. Name matching is case-insensitive.
type Catalog interface {
	// FindExact returns the first plant whose name, common name or botanical
	// name equals name. A miss is (nil, nil).
	FindExact(ctx context.Context, name string) (*model.CatalogPlant, error)
	// Search returns up to limit plants with query as a substring of any
	// searchable field.
	Search(ctx context.Context, query string, limit int) ([]model.CatalogPlant, error)
	// Get returns a plant by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.CatalogPlant, error)
	// Upsert inserts or replaces plants by id.
	Upsert(ctx context.Context, plants []model.CatalogPlant) (int64, error)
	// Replace removes every plant and loads plants.
	Replace(ctx context.Context, plants []model.CatalogPlant) (int64, error)
	Count(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Driver names a catalog backend.
type Driver string

// Supported drivers.
const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver Driver
	// DSN is the SQLite path or PostgreSQL connection string.
	DSN      string
	PoolSize int32
}

// Open connects to the configured backend and runs its migration.
func Open(ctx context.Context, opts Options) (Catalog, error) {
	var (
		c   Catalog
		err error
	)
	switch opts.Driver {
	case DriverMemory, "":
		c = NewMemory()
	case DriverSQLite:
		if opts.DSN == "" {
			return nil, eris.New("catalog: sqlite requires a database path")
		}
		c, err = NewSQLite(opts.DSN)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, eris.New("catalog: postgres requires a database url")
		}
		c, err = NewPostgres(ctx, opts.DSN, opts.PoolSize)
	default:
		return nil, eris.Errorf("catalog: unknown driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := c.Migrate(ctx); err != nil {
		c.Close() //nolint:errcheck
		return nil, err
	}
	return c, nil
}
