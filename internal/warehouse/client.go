// Package warehouse executes dataset queries against the remote analytical
// source: Postgres, a local SQLite file, or an HTTP query endpoint.
package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poverty-mapper/internal/config"
	"github.com/sells-group/poverty-mapper/internal/db"
	"github.com/sells-group/poverty-mapper/internal/fetcher"
	"github.com/sells-group/poverty-mapper/internal/model"
)

// Client runs a query against a source and returns the materialized rows.
// The query is passed through verbatim; source identifies the project or
// schema the query runs under.
type Client interface {
	Query(ctx context.Context, query, source string) (model.RowSet, error)
}

// BuildQuery renders the dataset selection over the fixed logical table,
// qualified the way driver expects.
func BuildQuery(cfg config.DatasetConfig, driver string) string {
	cols := cfg.Columns
	if len(cols) == 0 {
		cols = model.Columns
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ","), TableName(cfg, driver))
}

// TableName qualifies the dataset table for driver: project.dataset.table
// over HTTP, dataset.table (schema) on Postgres, the bare table on SQLite.
// Empty parts are skipped.
func TableName(cfg config.DatasetConfig, driver string) string {
	var candidates []string
	switch driver {
	case "sqlite":
		candidates = []string{cfg.Table}
	case "postgres":
		candidates = []string{cfg.Dataset, cfg.Table}
	default:
		candidates = []string{cfg.Project, cfg.Dataset, cfg.Table}
	}

	var parts []string
	for _, p := range candidates {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// New builds the client selected by cfg.Driver. The returned close function
// releases any connection the client holds.
func New(ctx context.Context, cfg config.WarehouseConfig) (Client, func(), error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, eris.Wrap(err, "warehouse: connect postgres")
		}
		return NewPostgresClient(pool, cfg.MaxRetries), pool.Close, nil

	case "sqlite":
		c, err := OpenSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil

	case "http":
		if cfg.Endpoint == "" {
			return nil, nil, eris.New("warehouse: http driver requires endpoint")
		}
		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
			MaxRetries: cfg.MaxRetries,
			RatePerSec: float64(cfg.RateLimit),
		})
		return NewHTTPClient(cfg.Endpoint, f), func() {}, nil

	default:
		return nil, nil, eris.Errorf("warehouse: unknown driver %q", cfg.Driver)
	}
}
