package warehouse

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/cache"
	"github.com/sells-group/poverty-mapper/internal/fetcher"
	"github.com/sells-group/poverty-mapper/internal/model"
)

// HTTPClient runs queries through an HTTP query endpoint that answers
// GET {endpoint}?project=...&query=... with CSV including a header row.
type HTTPClient struct {
	endpoint string
	fetcher  fetcher.Fetcher
}

// NewHTTPClient creates an HTTPClient for endpoint.
func NewHTTPClient(endpoint string, f fetcher.Fetcher) *HTTPClient {
	return &HTTPClient{endpoint: endpoint, fetcher: f}
}

// Query sends the query and decodes the CSV response.
func (c *HTTPClient) Query(ctx context.Context, query, source string) (model.RowSet, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, eris.Wrapf(err, "warehouse: parse endpoint %q", c.endpoint)
	}
	q := u.Query()
	q.Set("project", source)
	q.Set("query", query)
	u.RawQuery = q.Encode()

	body, err := c.fetcher.Download(ctx, u.String())
	if err != nil {
		return nil, eris.Wrapf(err, "warehouse: query %s", source)
	}
	defer body.Close() //nolint:errcheck

	rows, err := cache.Decode(body, true)
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: decode response")
	}

	zap.L().Info("warehouse query complete",
		zap.String("component", "warehouse.http"),
		zap.String("source", source),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}
