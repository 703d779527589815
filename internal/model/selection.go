package model

import (
	"golang.org/x/text/cases"
)

// Selection narrows a RowSet before tiling. Zero-valued fields match everything.
type Selection struct {
	Year    int    `yaml:"year" mapstructure:"year" json:"year,omitempty"`
	Country string `yaml:"country" mapstructure:"country" json:"country,omitempty"`
	Region  string `yaml:"region" mapstructure:"region" json:"region,omitempty"`
}

// Match reports whether the row satisfies the selection. Country compares
// case-insensitively; region ids are exact.
func (s Selection) Match(r Row) bool {
	if s.Year != 0 && r.Year != s.Year {
		return false
	}
	if s.Country != "" {
		fold := cases.Fold()
		if fold.String(r.Country) != fold.String(s.Country) {
			return false
		}
	}
	if s.Region != "" && r.Region != s.Region {
		return false
	}
	return true
}

// Apply returns the matching rows as a new slice. The input is not modified.
func (s Selection) Apply(rs RowSet) RowSet {
	out := make(RowSet, 0, len(rs))
	for _, r := range rs {
		if s.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
