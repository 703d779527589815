package tile

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/poverty-mapper/internal/model"
)

const defaultConcurrency = 8

// TiledRow is a data row with its tile attached.
type TiledRow struct {
	model.Row
	Tile *Polygon
}

// Tiler builds tiles for whole row sets.
type Tiler struct {
	// Size is the tile edge length in meters.
	Size float64
	// Concurrency bounds the number of rows tiled at once.
	Concurrency int
}

// TileAll tiles every row. The output has the same length and order as
// rows; the first invalid row aborts the pass.
func (t Tiler) TileAll(ctx context.Context, rows model.RowSet) ([]TiledRow, error) {
	if len(rows) == 0 {
		return nil, &model.EmptyRowSetError{Op: "tile"}
	}

	limit := t.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	out := make([]TiledRow, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			poly, err := BuildTile(Point{Lat: rows[i].Latitude, Lon: rows[i].Longitude}, t.Size)
			if err != nil {
				var ipe *model.InvalidPointError
				if errors.As(err, &ipe) {
					ipe.Index = i
				}
				return err
			}
			out[i] = TiledRow{Row: rows[i], Tile: poly}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "tile: build tiles")
	}

	zap.L().Debug("tiles built", zap.Int("rows", len(out)), zap.Float64("size_m", t.Size))
	return out, nil
}
