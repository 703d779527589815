package warehouse

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/poverty-mapper/internal/model"
)

// SQLiteClient runs dataset queries against a local SQLite file, for
// offline work against an exported copy of the warehouse table.
type SQLiteClient struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite database at dsn.
func OpenSQLite(dsn string) (*SQLiteClient, error) {
	if dsn == "" {
		return nil, eris.New("sqlite: database_url is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}
	return &SQLiteClient{db: db}, nil
}

// NewSQLiteClient wraps an already open database.
func NewSQLiteClient(db *sql.DB) *SQLiteClient {
	return &SQLiteClient{db: db}
}

// Close closes the database.
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// Query executes query and scans the canonical columns by name.
func (c *SQLiteClient) Query(ctx context.Context, query, source string) (model.RowSet, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", source)
	}
	defer rows.Close() //nolint:errcheck

	names, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: columns")
	}

	if err := checkColumns(names); err != nil {
		return nil, err
	}

	out := model.RowSet{}
	for rows.Next() {
		var r model.Row
		targets, err := scanTargets(names, &r)
		if err != nil {
			return nil, err
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}

	zap.L().Info("warehouse query complete",
		zap.String("component", "warehouse.sqlite"),
		zap.String("source", source),
		zap.Int("rows", len(out)),
	)
	return out, nil
}
