package warehouse

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poverty-mapper/internal/model"
)

// checkColumns reports an error unless every canonical column appears in
// names, ignoring case.
func checkColumns(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[canonicalColumn(name)] = true
	}

	var missing []string
	for _, c := range model.Columns {
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("warehouse: result is missing columns %v", missing)
	}
	return nil
}

// scanTargets maps result column names onto the fields of r, ignoring case
// since Postgres folds unquoted identifiers. Columns the row does not know
// are scanned into a throwaway value.
func scanTargets(names []string, r *model.Row) ([]any, error) {
	if err := checkColumns(names); err != nil {
		return nil, err
	}

	targets := make([]any, len(names))
	for i, name := range names {
		switch canonicalColumn(name) {
		case model.ColLatitude:
			targets[i] = &r.Latitude
		case model.ColLongitude:
			targets[i] = &r.Longitude
		case model.ColYear:
			targets[i] = &r.Year
		case model.ColCountry:
			targets[i] = &r.Country
		case model.ColRegion:
			targets[i] = &r.Region
		case model.ColWealthIndex:
			targets[i] = &r.WealthIndex
		default:
			var discard any
			targets[i] = &discard
		}
	}
	return targets, nil
}

func canonicalColumn(name string) string {
	for _, c := range model.Columns {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return name
}
