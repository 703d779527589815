// Package cache persists query results as delimited text files.
package cache

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/poverty-mapper/internal/model"
)

// lineError carries the 1-based line a decode failure occurred on.
type lineError struct {
	line int
	err  error
}

func (e *lineError) Error() string { return e.err.Error() }
func (e *lineError) Unwrap() error { return e.err }

// Decode reads rows from r. With hasHeader the first record names the
// columns, which may appear in any order but must include every canonical
// column. Without it, records are positional in model.Columns order.
// Every record must have the same number of fields as the first.
func Decode(r io.Reader, hasHeader bool) (model.RowSet, error) {
	cr := csv.NewReader(r)

	var header []string
	if !hasHeader {
		header = model.Columns
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		if errors.Is(err, io.EOF) {
			if hasHeader {
				return nil, &lineError{line: 1, err: eris.New("missing header row")}
			}
			return model.RowSet{}, nil
		}
		return nil, &lineError{line: 1, err: eris.Wrap(err, "read header")}
	}
	dec.DisallowMissingColumns = true

	if !hasHeader {
		// Positional files must carry exactly the canonical column count.
		cr.FieldsPerRecord = len(model.Columns)
	}

	rows := model.RowSet{}
	for {
		var row model.Row
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &lineError{line: pe.StartLine, err: err}
			}
			line, _ := cr.FieldPos(0)
			return nil, &lineError{line: line, err: err}
		}
		line, _ := cr.FieldPos(0)
		if err := row.Validate(); err != nil {
			var ipe *model.InvalidPointError
			var iwe *model.InvalidWealthError
			switch {
			case errors.As(err, &ipe):
				ipe.Index = len(rows)
			case errors.As(err, &iwe):
				iwe.Index = len(rows)
			}
			return nil, &lineError{line: line, err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Encode writes rows to w, preceded by a header row when hasHeader is set.
func Encode(w io.Writer, rows model.RowSet, hasHeader bool) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	enc.AutoHeader = false

	if hasHeader {
		if err := enc.EncodeHeader(model.Row{}); err != nil {
			return eris.Wrap(err, "cache: encode header")
		}
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return eris.Wrapf(err, "cache: encode row %d", i)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "cache: flush")
	}
	return nil
}
