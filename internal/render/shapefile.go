package render

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/tile"
)

// wgs84PRJ is the ESRI WKT for EPSG:4326, written alongside the shapefile.
const wgs84PRJ = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// Shapefile attribute columns. DBF names are limited to 10 characters.
const (
	shpFieldWealth  = "WEALTH"
	shpFieldYear    = "YEAR"
	shpFieldCountry = "COUNTRY"
	shpFieldRegion  = "GID_1"
	shpFieldColor   = "COLOR"
)

func shapefileFields() []shp.Field {
	return []shp.Field{
		shp.FloatField(shpFieldWealth, 19, 8),
		shp.NumberField(shpFieldYear, 4),
		shp.StringField(shpFieldCountry, 64),
		shp.StringField(shpFieldRegion, 32),
		shp.StringField(shpFieldColor, 7),
	}
}

// WriteShapefile writes m as a polygon shapefile at path (.shp, .shx, .dbf
// and .prj siblings).
func WriteShapefile(path string, m *Map) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "render: create dir %s", dir)
		}
	}

	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "render: create shapefile %s", path)
	}
	w.SetFields(shapefileFields())

	for i, f := range m.Features {
		idx := int(w.Write(esriPolygon(f.Tile)))
		attrs := []interface{}{
			f.Row.WealthIndex,
			f.Row.Year,
			f.Row.Country,
			f.Row.Region,
			f.Style.FillColor,
		}
		for field, v := range attrs {
			if err := w.WriteAttribute(idx, field, v); err != nil {
				w.Close()
				return eris.Wrapf(err, "render: write attribute %d of feature %d", field, i)
			}
		}
	}
	w.Close()

	prj := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	if err := os.WriteFile(prj, []byte(wgs84PRJ), 0o644); err != nil {
		return eris.Wrapf(err, "render: write %s", prj)
	}

	zap.L().Info("shapefile written", zap.String("path", path), zap.Int("features", len(m.Features)))
	return nil
}

// esriPolygon converts a tile to a shapefile polygon. ESRI outer rings are
// clockwise, so the ring runs SW, NW, NE, SE, SW.
func esriPolygon(t *tile.Polygon) *shp.Polygon {
	b := t.Bounds()
	pts := []shp.Point{
		{X: b.LonMin, Y: b.LatMin},
		{X: b.LonMin, Y: b.LatMax},
		{X: b.LonMax, Y: b.LatMax},
		{X: b.LonMax, Y: b.LatMin},
		{X: b.LonMin, Y: b.LatMin},
	}
	return &shp.Polygon{
		Box:       shp.Box{MinX: b.LonMin, MinY: b.LatMin, MaxX: b.LonMax, MaxY: b.LatMax},
		NumParts:  1,
		NumPoints: int32(len(pts)),
		Parts:     []int32{0},
		Points:    pts,
	}
}
