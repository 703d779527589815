package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/db"
	"github.com/sells-group/poverty-mapper/internal/model"
)

// Seed creates schema.table if needed and bulk-loads rows into it. It is
// used to stand up a development warehouse from an existing cache file.
func Seed(ctx context.Context, pool db.Pool, schema, table string, rows model.RowSet) (int64, error) {
	// Unquoted identifiers fold to lower case in Postgres; create everything
	// lower case so BuildQuery's unquoted names resolve.
	schema, table = strings.ToLower(schema), strings.ToLower(table)

	if err := rows.Validate(); err != nil {
		return 0, eris.Wrap(err, "warehouse: seed")
	}

	ident := pgx.Identifier{schema, table}
	if schema == "" {
		ident = pgx.Identifier{table}
	} else {
		if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize())); err != nil {
			return 0, eris.Wrapf(err, "warehouse: create schema %s", schema)
		}
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		year INTEGER NOT NULL,
		country TEXT NOT NULL,
		gid_1 TEXT NOT NULL,
		wealthpooled DOUBLE PRECISION NOT NULL
	)`, ident.Sanitize())
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return 0, eris.Wrapf(err, "warehouse: create table %s", ident.Sanitize())
	}

	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any{r.Latitude, r.Longitude, r.Year, r.Country, r.Region, r.WealthIndex}
	}

	name := table
	if schema != "" {
		name = schema + "." + table
	}
	columns := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		columns[i] = strings.ToLower(c)
	}
	n, err := db.CopyFrom(ctx, pool, name, columns, values)
	if err != nil {
		return 0, eris.Wrap(err, "warehouse: seed")
	}

	zap.L().Info("warehouse seeded", zap.String("table", name), zap.Int64("rows", n))
	return n, nil
}
