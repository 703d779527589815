package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/cache"
	"github.com/sells-group/poverty-mapper/internal/colormap"
	"github.com/sells-group/poverty-mapper/internal/config"
	"github.com/sells-group/poverty-mapper/internal/loader"
	"github.com/sells-group/poverty-mapper/internal/model"
	"github.com/sells-group/poverty-mapper/internal/render"
	"github.com/sells-group/poverty-mapper/internal/tile"
	"github.com/sells-group/poverty-mapper/internal/warehouse"
)

// newClient is swapped in tests.
var newClient = warehouse.New

// loadRows loads the configured dataset. The warehouse client is only
// created when the cache file is missing.
func loadRows(ctx context.Context, c *config.Config) (model.RowSet, error) {
	store := cache.NewStore()
	path := c.Dataset.CachePath()

	hit, err := store.Exists(path)
	if err != nil {
		return nil, err
	}

	var client warehouse.Client
	if !hit {
		wc, closeFn, err := newClient(ctx, c.Warehouse)
		if err != nil {
			return nil, &model.SourceUnavailableError{Source: c.Dataset.Project, CachePath: path, Err: err}
		}
		defer closeFn()
		client = wc
	}

	return loader.New(c.Dataset, c.Warehouse.Driver, client, store).LoadDataset(ctx)
}

// buildMap runs one render pass: select, color, tile and style.
func buildMap(ctx context.Context, c *config.Config, sel model.Selection) (*render.Map, error) {
	rows, err := loadRows(ctx, c)
	if err != nil {
		return nil, err
	}

	selected := sel.Apply(rows)
	zap.L().Info("rows selected",
		zap.Int("loaded", len(rows)),
		zap.Int("selected", len(selected)),
		zap.Int("year", sel.Year),
		zap.String("country", sel.Country),
		zap.String("region", sel.Region),
	)

	cm, err := colormap.FromRows(selected, c.Colormap.Colors)
	if err != nil {
		return nil, eris.Wrap(err, "colormap")
	}

	tiler := tile.Tiler{Size: c.Tile.SizeMeters, Concurrency: c.Tile.Concurrency}
	tiled, err := tiler.TileAll(ctx, selected)
	if err != nil {
		return nil, err
	}

	return render.Build(tiled, cm, render.Options{
		Caption:     c.Colormap.Caption,
		FillOpacity: c.Colormap.FillOpacity,
		Weight:      c.Colormap.Weight,
	})
}
