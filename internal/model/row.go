// Package model defines the survey cluster rows shared by the loader, the
// tiler and the renderers.
package model

import (
	"math"
)

// Canonical column names, in positional order for headerless files.
const (
	ColLatitude    = "lat"
	ColLongitude   = "lon"
	ColYear        = "year"
	ColCountry     = "country"
	ColRegion      = "GID_1"
	ColWealthIndex = "wealthpooled"
)

// Columns lists the canonical columns in positional order.
var Columns = []string{ColLatitude, ColLongitude, ColYear, ColCountry, ColRegion, ColWealthIndex}

// Row is one sampled survey cluster.
type Row struct {
	Latitude    float64 `csv:"lat" json:"lat"`
	Longitude   float64 `csv:"lon" json:"lon"`
	Year        int     `csv:"year" json:"year"`
	Country     string  `csv:"country" json:"country"`
	Region      string  `csv:"GID_1" json:"GID_1"`
	WealthIndex float64 `csv:"wealthpooled" json:"wealthpooled"`
}

// RowSet is a materialized query result.
type RowSet []Row

// ValidPoint reports whether lat/lon lie in the WGS84 domain:
// lat in [-90, 90], lon in (-180, 180].
func ValidPoint(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon > -180 && lon <= 180
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate returns an *InvalidPointError if the row's coordinates are out of
// domain, or an *InvalidWealthError if its wealth index is not finite.
func (r Row) Validate() error {
	return r.validate(-1)
}

func (r Row) validate(index int) error {
	if !ValidPoint(r.Latitude, r.Longitude) {
		return &InvalidPointError{Lat: r.Latitude, Lon: r.Longitude, Index: index}
	}
	if !finite(r.WealthIndex) {
		return &InvalidWealthError{Value: r.WealthIndex, Index: index}
	}
	return nil
}

// Validate checks every row and reports the first offender with its index.
func (rs RowSet) Validate() error {
	for i, r := range rs {
		if err := r.validate(i); err != nil {
			return err
		}
	}
	return nil
}

// WealthRange returns the minimum and maximum finite wealth index in the
// set. Non-finite values are skipped; a set with none left is empty.
func (rs RowSet) WealthRange() (vmin, vmax float64, err error) {
	seen := false
	for _, r := range rs {
		if !finite(r.WealthIndex) {
			continue
		}
		if !seen {
			vmin, vmax, seen = r.WealthIndex, r.WealthIndex, true
			continue
		}
		vmin = math.Min(vmin, r.WealthIndex)
		vmax = math.Max(vmax, r.WealthIndex)
	}
	if !seen {
		return 0, 0, &EmptyRowSetError{Op: "wealth range"}
	}
	return vmin, vmax, nil
}

// Center returns the mean latitude and longitude of the set.
func (rs RowSet) Center() (lat, lon float64, err error) {
	if len(rs) == 0 {
		return 0, 0, &EmptyRowSetError{Op: "center"}
	}
	for _, r := range rs {
		lat += r.Latitude
		lon += r.Longitude
	}
	n := float64(len(rs))
	return lat / n, lon / n, nil
}
