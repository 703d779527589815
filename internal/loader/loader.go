// Package loader materializes the dataset, preferring the on-disk cache over
// the warehouse.
package loader

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/cache"
	"github.com/sells-group/poverty-mapper/internal/config"
	"github.com/sells-group/poverty-mapper/internal/model"
	"github.com/sells-group/poverty-mapper/internal/warehouse"
)

// Loader resolves a dataset from its cache file, falling back to the
// warehouse client on a miss and writing the result back to the cache.
//
// The cache is keyed by path only. Changing the query without changing the
// path keeps serving the old rows until the file is removed.
type Loader struct {
	cfg    config.DatasetConfig
	driver string
	client warehouse.Client
	store  *cache.Store
}

// New creates a Loader. client may be nil when the cache is known to be warm.
func New(cfg config.DatasetConfig, driver string, client warehouse.Client, store *cache.Store) *Loader {
	if store == nil {
		store = cache.NewStore()
	}
	return &Loader{cfg: cfg, driver: driver, client: client, store: store}
}

// Load returns the rows cached at cachePath, or runs query against source
// and caches the result there. A corrupt cache file is reported, never
// silently refetched.
func (l *Loader) Load(ctx context.Context, query, cachePath, source string, hasHeader bool) (model.RowSet, error) {
	log := zap.L().With(
		zap.String("component", "loader"),
		zap.String("cache_path", cachePath),
		zap.String("source", source),
	)

	hit, err := l.store.Exists(cachePath)
	if err != nil {
		return nil, eris.Wrap(err, "loader: check cache")
	}
	if hit {
		rows, err := l.store.Read(cachePath, hasHeader)
		if err != nil {
			return nil, err
		}
		log.Info("dataset loaded from cache", zap.Int("rows", len(rows)))
		return rows, nil
	}

	if l.client == nil {
		return nil, &model.SourceUnavailableError{
			Source:    source,
			CachePath: cachePath,
			Err:       eris.New("no warehouse client configured"),
		}
	}

	start := time.Now()
	rows, err := l.client.Query(ctx, query, source)
	if err != nil {
		log.Error("warehouse query failed", zap.Error(err))
		// Clients that validate while decoding report bad rows here.
		if model.IsInvalidRow(err) {
			return nil, eris.Wrapf(err, "loader: rows from %s", source)
		}
		return nil, &model.SourceUnavailableError{Source: source, CachePath: cachePath, Err: err}
	}
	if err := rows.Validate(); err != nil {
		return nil, eris.Wrapf(err, "loader: rows from %s", source)
	}

	if err := l.store.Write(cachePath, rows, hasHeader); err != nil {
		return nil, eris.Wrap(err, "loader: write cache")
	}

	log.Info("dataset fetched and cached",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rows, nil
}

// LoadDataset loads the configured dataset.
func (l *Loader) LoadDataset(ctx context.Context) (model.RowSet, error) {
	return l.Load(ctx, l.Query(), l.cfg.CachePath(), l.cfg.Project, l.cfg.HasHeader)
}

// Query returns the query LoadDataset issues on a cache miss.
func (l *Loader) Query() string {
	return warehouse.BuildQuery(l.cfg, l.driver)
}
