package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/model"
	"github.com/sells-group/poverty-mapper/internal/render"
)

var (
	renderFormat  string
	renderOutput  string
	renderYear    int
	renderCountry string
	renderRegion  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the wealth tile map to a file",
	Example: `  poverty-mapper render --output map.geojson
  poverty-mapper render --format shapefile --output out/tiles.shp --country malawi
  poverty-mapper render --format xlsx --year 2010`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("render"); err != nil {
			return err
		}

		m, err := buildMap(cmd.Context(), cfg, renderSelection(cmd, cfg.Selection))
		if err != nil {
			return err
		}

		out := renderOutput
		if out == "" {
			out = defaultOutput(renderFormat)
		}
		if err := writeMap(m, renderFormat, out); err != nil {
			return err
		}

		zap.L().Info("map rendered",
			zap.String("id", m.ID.String()),
			zap.String("format", renderFormat),
			zap.String("output", out),
			zap.Int("features", len(m.Features)),
		)
		return nil
	},
}

// renderSelection applies flag overrides on top of the configured selection.
func renderSelection(cmd *cobra.Command, base model.Selection) model.Selection {
	sel := base
	if cmd.Flags().Changed("year") {
		sel.Year = renderYear
	}
	if cmd.Flags().Changed("country") {
		sel.Country = renderCountry
	}
	if cmd.Flags().Changed("region") {
		sel.Region = renderRegion
	}
	return sel
}

func defaultOutput(format string) string {
	switch strings.ToLower(format) {
	case "shapefile", "shp":
		return "map.shp"
	case "xlsx":
		return "map.xlsx"
	default:
		return "map.geojson"
	}
}

func writeMap(m *render.Map, format, out string) error {
	switch strings.ToLower(format) {
	case "geojson", "":
		if dir := filepath.Dir(out); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "create dir %s", dir)
			}
		}
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "create %s", out)
		}
		if err := render.WriteGeoJSON(f, m); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	case "shapefile", "shp":
		return render.WriteShapefile(out, m)
	case "xlsx":
		return render.WriteXLSX(out, m)
	default:
		return eris.Errorf("unknown format %q (want geojson, shapefile or xlsx)", format)
	}
}

func init() {
	renderCmd.Flags().StringVar(&renderFormat, "format", "geojson", "output format: geojson, shapefile or xlsx")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output path (default map.<ext>)")
	renderCmd.Flags().IntVar(&renderYear, "year", 0, "survey year (0 for all; default from config)")
	renderCmd.Flags().StringVar(&renderCountry, "country", "", "country filter")
	renderCmd.Flags().StringVar(&renderRegion, "region", "", "GID_1 region filter")
	rootCmd.AddCommand(renderCmd)
}
