// Package tile builds square ground tiles around survey points by solving
// the direct geodesic problem on the WGS84 ellipsoid.
package tile

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/tidwall/geodesic"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/poverty-mapper/internal/model"
)

// SRID is the spatial reference of every tile (WGS84 lon/lat).
const SRID = 4326

// Bearings used to find the tile edges, in degrees clockwise from north.
const (
	bearingNorth = 0
	bearingEast  = 90
	bearingSouth = 180
	bearingWest  = 270
)

// Point is a WGS84 position in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the axis-aligned extent of a tile.
type Bounds struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Polygon is a four-cornered tile. The ring runs SW, SE, NE, NW and is
// closed by repeating SW.
type Polygon struct {
	bounds Bounds
	poly   *geom.Polygon
}

// BuildTile returns the tile of side edgeMeters centered on p. Each edge
// sits half an edge length from p along the four cardinal bearings. Tiles
// crossing the antimeridian or a pole are not corrected.
func BuildTile(p Point, edgeMeters float64) (*Polygon, error) {
	if !model.ValidPoint(p.Lat, p.Lon) {
		return nil, &model.InvalidPointError{Lat: p.Lat, Lon: p.Lon, Index: -1}
	}
	if !(edgeMeters > 0) || math.IsInf(edgeMeters, 0) {
		return nil, eris.Errorf("tile: edge length must be positive and finite, got %v", edgeMeters)
	}

	half := edgeMeters / 2
	var b Bounds
	b.LatMax, _ = direct(p, bearingNorth, half)
	_, b.LonMax = direct(p, bearingEast, half)
	b.LatMin, _ = direct(p, bearingSouth, half)
	_, b.LonMin = direct(p, bearingWest, half)

	return newPolygon(b), nil
}

func direct(p Point, azimuth, distance float64) (lat, lon float64) {
	geodesic.WGS84.Direct(p.Lat, p.Lon, azimuth, distance, &lat, &lon, nil)
	return lat, lon
}

func newPolygon(b Bounds) *Polygon {
	flat := []float64{
		b.LonMin, b.LatMin,
		b.LonMax, b.LatMin,
		b.LonMax, b.LatMax,
		b.LonMin, b.LatMax,
		b.LonMin, b.LatMin,
	}
	poly := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(SRID)
	return &Polygon{bounds: b, poly: poly}
}

// Bounds returns the tile extent.
func (t *Polygon) Bounds() Bounds {
	return t.bounds
}

// Vertices returns the four distinct corners in ring order.
func (t *Polygon) Vertices() [4]Point {
	b := t.bounds
	return [4]Point{
		{Lat: b.LatMin, Lon: b.LonMin},
		{Lat: b.LatMin, Lon: b.LonMax},
		{Lat: b.LatMax, Lon: b.LonMax},
		{Lat: b.LatMax, Lon: b.LonMin},
	}
}

// Geom returns the closed polygon in lon/lat order.
func (t *Polygon) Geom() *geom.Polygon {
	return t.poly
}

// Contains reports whether p lies inside the tile or on its boundary.
func (t *Polygon) Contains(p Point) bool {
	b := t.bounds
	return p.Lat >= b.LatMin && p.Lat <= b.LatMax && p.Lon >= b.LonMin && p.Lon <= b.LonMax
}
