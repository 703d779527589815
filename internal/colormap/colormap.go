// Package colormap maps a scalar attribute onto a linear color gradient.
package colormap

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rotisserie/eris"
	"golang.org/x/image/colornames"

	"github.com/sells-group/poverty-mapper/internal/model"
)

// DefaultColors is the purple to orange diverging gradient used for wealth.
var DefaultColors = []string{"purple", "white", "orange"}

// Linear interpolates in RGB between evenly spaced color stops over
// [vmin, vmax].
type Linear struct {
	names []string
	stops []colorful.Color
	vmin  float64
	vmax  float64
}

// New builds a gradient from at least two colors, given as hex or SVG 1.1
// (CSS) color names.
func New(colors []string, vmin, vmax float64) (*Linear, error) {
	if len(colors) < 2 {
		return nil, eris.Errorf("colormap: need at least 2 colors, got %d", len(colors))
	}
	if math.IsNaN(vmin) || math.IsNaN(vmax) || math.IsInf(vmin, 0) || math.IsInf(vmax, 0) {
		return nil, eris.Errorf("colormap: range must be finite, got [%v, %v]", vmin, vmax)
	}
	if vmin > vmax {
		return nil, eris.Errorf("colormap: vmin %v exceeds vmax %v", vmin, vmax)
	}

	stops := make([]colorful.Color, len(colors))
	for i, name := range colors {
		c, err := parse(name)
		if err != nil {
			return nil, err
		}
		stops[i] = c
	}
	names := make([]string, len(colors))
	copy(names, colors)
	return &Linear{names: names, stops: stops, vmin: vmin, vmax: vmax}, nil
}

// FromRows builds a gradient spanning the wealth index range of rows.
func FromRows(rows model.RowSet, colors []string) (*Linear, error) {
	vmin, vmax, err := rows.WealthRange()
	if err != nil {
		return nil, err
	}
	return New(colors, vmin, vmax)
}

func parse(name string) (colorful.Color, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if rgba, ok := colornames.Map[s]; ok {
		c, _ := colorful.MakeColor(rgba)
		return c, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, eris.Wrapf(err, "colormap: unknown color %q", name)
	}
	return c, nil
}

// At returns the hex color for v. Values outside the range clamp to the end
// stops. A degenerate range maps everything to the first color.
func (l *Linear) At(v float64) string {
	if l.vmax == l.vmin || math.IsNaN(v) || v <= l.vmin {
		return hex(l.stops[0])
	}
	if v >= l.vmax {
		return hex(l.stops[len(l.stops)-1])
	}

	segments := float64(len(l.stops) - 1)
	pos := (v - l.vmin) / (l.vmax - l.vmin) * segments
	i := int(math.Floor(pos))
	if i >= len(l.stops)-1 {
		return hex(l.stops[len(l.stops)-1])
	}
	t := pos - float64(i)
	if t == 0 {
		return hex(l.stops[i])
	}
	return hex(l.stops[i].BlendRgb(l.stops[i+1], t))
}

// hex truncates each channel to 8 bits. colorful's Hex rounds instead, which
// shifts blended colors by one step relative to web map colormaps.
func hex(c colorful.Color) string {
	c = c.Clamped()
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	return uint8(v * 255.9999)
}

// Colors returns the configured color stops as given.
func (l *Linear) Colors() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Range returns the mapped value range.
func (l *Linear) Range() (vmin, vmax float64) {
	return l.vmin, l.vmax
}
