package warehouse

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/db"
	"github.com/sells-group/poverty-mapper/internal/model"
	"github.com/sells-group/poverty-mapper/internal/resilience"
)

// PostgresClient runs dataset queries on a Postgres warehouse.
type PostgresClient struct {
	pool     db.Pool
	attempts int
}

// NewPostgresClient wraps pool. attempts bounds retries of transient failures.
func NewPostgresClient(pool db.Pool, attempts int) *PostgresClient {
	return &PostgresClient{pool: pool, attempts: attempts}
}

// Query executes query and scans the canonical columns by name.
func (c *PostgresClient) Query(ctx context.Context, query, source string) (model.RowSet, error) {
	log := zap.L().With(zap.String("component", "warehouse.postgres"), zap.String("source", source))

	policy := resilience.DefaultPolicy("warehouse query")
	policy.Attempts = c.attempts

	rows, err := resilience.DoVal(ctx, policy, func(ctx context.Context) (model.RowSet, error) {
		return c.query(ctx, query)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "warehouse: query %s", source)
	}

	log.Info("warehouse query complete", zap.Int("rows", len(rows)))
	return rows, nil
}

func (c *PostgresClient) query(ctx context.Context, query string) (model.RowSet, error) {
	pgRows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query")
	}
	defer pgRows.Close()

	fds := pgRows.FieldDescriptions()
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}

	if err := checkColumns(names); err != nil {
		return nil, err
	}

	out := model.RowSet{}
	for pgRows.Next() {
		var r model.Row
		targets, err := scanTargets(names, &r)
		if err != nil {
			return nil, err
		}
		if err := pgRows.Scan(targets...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		out = append(out, r)
	}
	if err := pgRows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate rows")
	}
	return out, nil
}
