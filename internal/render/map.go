// Package render turns tiled, colored rows into map artifacts: GeoJSON,
// shapefiles, spreadsheets and a legend.
package render

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/poverty-mapper/internal/colormap"
	"github.com/sells-group/poverty-mapper/internal/model"
	"github.com/sells-group/poverty-mapper/internal/tile"
)

// Default feature styling.
const (
	DefaultFillOpacity = 0.8
	DefaultWeight      = 0.8
	DefaultCaption     = "Wealthpooled"
)

// Style is the per-feature paint applied by the map client.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	FillOpacity float64 `json:"fillOpacity"`
	Weight      float64 `json:"weight"`
}

// Feature is one tiled row with its computed style.
type Feature struct {
	Row   model.Row
	Tile  *tile.Polygon
	Style Style
}

// Legend describes the color scale.
type Legend struct {
	Caption string   `json:"caption"`
	VMin    float64  `json:"vmin"`
	VMax    float64  `json:"vmax"`
	Colors  []string `json:"colors"`
}

// Map is the output of one render pass.
type Map struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Center    tile.Point
	Features  []Feature
	Legend    Legend
}

// Options controls styling. Zero values fall back to the defaults.
type Options struct {
	Caption     string
	FillOpacity float64
	Weight      float64
}

func (o Options) withDefaults() Options {
	if o.Caption == "" {
		o.Caption = DefaultCaption
	}
	if o.FillOpacity <= 0 {
		o.FillOpacity = DefaultFillOpacity
	}
	if o.Weight <= 0 {
		o.Weight = DefaultWeight
	}
	return o
}

// Build styles every tiled row with cm. Fill and stroke share the color of
// the row's wealth index. The map is centered on the mean position.
func Build(rows []tile.TiledRow, cm *colormap.Linear, opts Options) (*Map, error) {
	if len(rows) == 0 {
		return nil, &model.EmptyRowSetError{Op: "render"}
	}
	opts = opts.withDefaults()

	plain := make(model.RowSet, len(rows))
	features := make([]Feature, len(rows))
	for i, r := range rows {
		plain[i] = r.Row
		color := cm.At(r.WealthIndex)
		features[i] = Feature{
			Row:  r.Row,
			Tile: r.Tile,
			Style: Style{
				FillColor:   color,
				Color:       color,
				FillOpacity: opts.FillOpacity,
				Weight:      opts.Weight,
			},
		}
	}

	lat, lon, err := plain.Center()
	if err != nil {
		return nil, err
	}
	vmin, vmax := cm.Range()

	return &Map{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Center:    tile.Point{Lat: lat, Lon: lon},
		Features:  features,
		Legend: Legend{
			Caption: opts.Caption,
			VMin:    vmin,
			VMax:    vmax,
			Colors:  cm.Colors(),
		},
	}, nil
}
