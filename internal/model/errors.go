package model

import (
	"errors"
	"fmt"
)

// InvalidPointError reports a coordinate outside the WGS84 domain.
// Index is the row position when known, -1 otherwise.
type InvalidPointError struct {
	Lat   float64
	Lon   float64
	Index int
}

func (e *InvalidPointError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid point (lat=%v, lon=%v) at row %d", e.Lat, e.Lon, e.Index)
	}
	return fmt.Sprintf("invalid point (lat=%v, lon=%v)", e.Lat, e.Lon)
}

// InvalidWealthError reports a wealth index that is NaN or infinite.
// Index is the row position when known, -1 otherwise.
type InvalidWealthError struct {
	Value float64
	Index int
}

func (e *InvalidWealthError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid wealth index %v at row %d", e.Value, e.Index)
	}
	return fmt.Sprintf("invalid wealth index %v", e.Value)
}

// IsInvalidRow reports whether err carries an *InvalidPointError or an
// *InvalidWealthError.
func IsInvalidRow(err error) bool {
	var ipe *InvalidPointError
	var iwe *InvalidWealthError
	return errors.As(err, &ipe) || errors.As(err, &iwe)
}

// SourceUnavailableError reports a failed remote fetch with no usable cache.
type SourceUnavailableError struct {
	Source    string
	CachePath string
	Err       error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable and no cache at %s: %v", e.Source, e.CachePath, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// CacheCorruptError reports a cache file that exists but cannot be parsed.
// Line is 1-based; 0 means the failure is not tied to a line.
type CacheCorruptError struct {
	Path string
	Line int
	Err  error
}

func (e *CacheCorruptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("cache %s corrupt at line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("cache %s corrupt: %v", e.Path, e.Err)
}

func (e *CacheCorruptError) Unwrap() error {
	return e.Err
}

// EmptyRowSetError reports tiling or coloring invoked on zero rows.
type EmptyRowSetError struct {
	Op string
}

func (e *EmptyRowSetError) Error() string {
	return fmt.Sprintf("%s: empty row set", e.Op)
}
