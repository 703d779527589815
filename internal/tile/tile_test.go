package tile

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/geodesic"

	"github.com/sells-group/poverty-mapper/internal/model"
)

var paris = Point{Lat: 48.8566, Lon: 2.3522}

func distance(a, b Point) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &s12, nil, nil)
	return s12
}

func TestBuildTile_CornersNearHalfDiagonal(t *testing.T) {
	poly, err := BuildTile(paris, 1000)
	require.NoError(t, err)

	halfDiagonal := 1000 * math.Sqrt2 / 2
	for _, v := range poly.Vertices() {
		d := distance(paris, v)
		assert.InDelta(t, halfDiagonal, d, 1.0, "corner %+v", v)
	}
}

func TestBuildTile_EdgesAtHalfEdge(t *testing.T) {
	poly, err := BuildTile(paris, 1000)
	require.NoError(t, err)
	b := poly.Bounds()

	assert.InDelta(t, 500, distance(paris, Point{Lat: b.LatMax, Lon: paris.Lon}), 1e-6)
	assert.InDelta(t, 500, distance(paris, Point{Lat: b.LatMin, Lon: paris.Lon}), 1e-6)
	assert.InDelta(t, 500, distance(paris, Point{Lat: paris.Lat, Lon: b.LonMax}), 0.01)
	assert.InDelta(t, 500, distance(paris, Point{Lat: paris.Lat, Lon: b.LonMin}), 0.01)
}

func TestBuildTile_Shape(t *testing.T) {
	poly, err := BuildTile(paris, 67200)
	require.NoError(t, err)
	b := poly.Bounds()

	assert.Greater(t, b.LatMax, b.LatMin)
	assert.Greater(t, b.LonMax, b.LonMin)
	assert.True(t, poly.Contains(paris))

	vs := poly.Vertices()
	seen := map[Point]bool{}
	for _, v := range vs {
		seen[v] = true
	}
	assert.Len(t, seen, 4)

	// SW, SE, NE, NW.
	assert.Equal(t, Point{Lat: b.LatMin, Lon: b.LonMin}, vs[0])
	assert.Equal(t, Point{Lat: b.LatMin, Lon: b.LonMax}, vs[1])
	assert.Equal(t, Point{Lat: b.LatMax, Lon: b.LonMax}, vs[2])
	assert.Equal(t, Point{Lat: b.LatMax, Lon: b.LonMin}, vs[3])
}

func TestBuildTile_GeomRingClosed(t *testing.T) {
	poly, err := BuildTile(paris, 1000)
	require.NoError(t, err)

	g := poly.Geom()
	assert.Equal(t, SRID, g.SRID())
	require.Equal(t, 1, g.NumLinearRings())
	ring := g.LinearRing(0)
	require.Equal(t, 5, ring.NumCoords())
	assert.Equal(t, ring.Coord(0), ring.Coord(4))

	b := poly.Bounds()
	// Coordinates are lon/lat.
	assert.Equal(t, b.LonMin, ring.Coord(0).X())
	assert.Equal(t, b.LatMin, ring.Coord(0).Y())
	// Counter-clockwise ring has positive signed area.
	var twiceArea float64
	for i := 0; i < 4; i++ {
		a, b := ring.Coord(i), ring.Coord(i+1)
		twiceArea += a.X()*b.Y() - b.X()*a.Y()
	}
	assert.Greater(t, twiceArea, 0.0)
}

func TestBuildTile_DoublingEdgeDoublesSpan(t *testing.T) {
	small, err := BuildTile(paris, 1000)
	require.NoError(t, err)
	large, err := BuildTile(paris, 2000)
	require.NoError(t, err)

	sb, lb := small.Bounds(), large.Bounds()
	latRatio := (lb.LatMax - lb.LatMin) / (sb.LatMax - sb.LatMin)
	lonRatio := (lb.LonMax - lb.LonMin) / (sb.LonMax - sb.LonMin)
	assert.InEpsilon(t, 2.0, latRatio, 0.001)
	assert.InEpsilon(t, 2.0, lonRatio, 0.001)
}

func TestBuildTile_InvalidPoint(t *testing.T) {
	cases := []Point{
		{Lat: 91, Lon: 0},
		{Lat: -90.5, Lon: 0},
		{Lat: 0, Lon: 181},
		{Lat: 0, Lon: -180},
		{Lat: math.NaN(), Lon: 0},
	}
	for _, p := range cases {
		_, err := BuildTile(p, 1000)
		var ipe *model.InvalidPointError
		assert.True(t, errors.As(err, &ipe), "point %+v", p)
	}
}

func TestBuildTile_InvalidEdge(t *testing.T) {
	for _, edge := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := BuildTile(paris, edge)
		assert.Error(t, err, "edge %v", edge)
	}
}

func TestTileAll_PreservesOrder(t *testing.T) {
	rows := make(model.RowSet, 50)
	for i := range rows {
		rows[i] = model.Row{Latitude: -10 + float64(i)*0.3, Longitude: 20 + float64(i)*0.1, Year: 2015, WealthIndex: float64(i)}
	}

	tiled, err := Tiler{Size: 67200, Concurrency: 4}.TileAll(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, tiled, len(rows))
	for i, tr := range tiled {
		assert.Equal(t, rows[i], tr.Row)
		require.NotNil(t, tr.Tile)
		assert.True(t, tr.Tile.Contains(Point{Lat: rows[i].Latitude, Lon: rows[i].Longitude}))
	}
}

func TestTileAll_Empty(t *testing.T) {
	_, err := Tiler{Size: 1000}.TileAll(context.Background(), model.RowSet{})
	var ere *model.EmptyRowSetError
	assert.True(t, errors.As(err, &ere))
}

func TestTileAll_InvalidRowIndex(t *testing.T) {
	rows := model.RowSet{
		{Latitude: 1, Longitude: 1},
		{Latitude: 1, Longitude: 1},
		{Latitude: 100, Longitude: 1},
	}
	_, err := Tiler{Size: 1000, Concurrency: 1}.TileAll(context.Background(), rows)
	var ipe *model.InvalidPointError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, 2, ipe.Index)
}

func TestTileAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Tiler{Size: 1000}.TileAll(ctx, model.RowSet{{Latitude: 1, Longitude: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}
