package render

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// XLSXHeader is the column layout of the spreadsheet export.
var XLSXHeader = []string{
	"lat", "lon", "year", "country", "GID_1", "wealthpooled",
	"lat_min", "lat_max", "lon_min", "lon_max", "color",
}

// WriteXLSX writes one row per feature, with tile bounds and color, to a
// "tiles" sheet and the legend to a "legend" sheet.
func WriteXLSX(path string, m *Map) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "render: create dir %s", dir)
		}
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("tiles")
	if err != nil {
		return eris.Wrap(err, "render: add tiles sheet")
	}
	addStringRow(sheet, XLSXHeader...)

	for _, feat := range m.Features {
		b := feat.Tile.Bounds()
		row := sheet.AddRow()
		row.AddCell().SetFloat(feat.Row.Latitude)
		row.AddCell().SetFloat(feat.Row.Longitude)
		row.AddCell().SetInt(feat.Row.Year)
		row.AddCell().SetString(feat.Row.Country)
		row.AddCell().SetString(feat.Row.Region)
		row.AddCell().SetFloat(feat.Row.WealthIndex)
		row.AddCell().SetFloat(b.LatMin)
		row.AddCell().SetFloat(b.LatMax)
		row.AddCell().SetFloat(b.LonMin)
		row.AddCell().SetFloat(b.LonMax)
		row.AddCell().SetString(feat.Style.FillColor)
	}

	legend, err := f.AddSheet("legend")
	if err != nil {
		return eris.Wrap(err, "render: add legend sheet")
	}
	addStringRow(legend, "caption", m.Legend.Caption)
	vmin := legend.AddRow()
	vmin.AddCell().SetString("vmin")
	vmin.AddCell().SetFloat(m.Legend.VMin)
	vmax := legend.AddRow()
	vmax.AddCell().SetString("vmax")
	vmax.AddCell().SetFloat(m.Legend.VMax)
	addStringRow(legend, append([]string{"colors"}, m.Legend.Colors...)...)

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "render: save %s", path)
	}

	zap.L().Info("xlsx written", zap.String("path", path), zap.Int("features", len(m.Features)))
	return nil
}

func addStringRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
