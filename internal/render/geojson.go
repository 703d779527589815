package render

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/poverty-mapper/internal/model"
)

// FeatureCollection converts m to a GeoJSON feature collection. Each
// feature carries the row attributes and its style.
func FeatureCollection(m *Map) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, len(m.Features))}
	for i, f := range m.Features {
		fc.Features[i] = &geojson.Feature{
			ID:       strconv.Itoa(i),
			Geometry: f.Tile.Geom(),
			Properties: map[string]interface{}{
				model.ColWealthIndex: f.Row.WealthIndex,
				model.ColYear:        f.Row.Year,
				model.ColCountry:     f.Row.Country,
				model.ColRegion:      f.Row.Region,
				model.ColLatitude:    f.Row.Latitude,
				model.ColLongitude:   f.Row.Longitude,
				"fillColor":          f.Style.FillColor,
				"color":              f.Style.Color,
				"fillOpacity":        f.Style.FillOpacity,
				"weight":             f.Style.Weight,
			},
		}
	}
	return fc
}

// WriteGeoJSON encodes m as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, m *Map) error {
	data, err := json.Marshal(FeatureCollection(m))
	if err != nil {
		return eris.Wrap(err, "render: marshal geojson")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "render: write geojson")
	}
	return nil
}

// WriteLegend encodes the legend of m as JSON.
func WriteLegend(w io.Writer, m *Map) error {
	if err := json.NewEncoder(w).Encode(m.Legend); err != nil {
		return eris.Wrap(err, "render: write legend")
	}
	return nil
}
