package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifier(t *testing.T) {
	assert.Equal(t, pgx.Identifier{"survey", "DHS_CLUSTERS"}, Identifier("survey.DHS_CLUSTERS"))
	assert.Equal(t, pgx.Identifier{"clusters"}, Identifier("clusters"))
}

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "clusters", []string{"lat", "lon"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"survey", "DHS_CLUSTERS"}, []string{"lat", "lon"}).WillReturnResult(3)

	rows := [][]any{{1.0, 2.0}, {3.0, 4.0}, {5.0, 6.0}}
	n, err := CopyFrom(context.Background(), mock, "survey.DHS_CLUSTERS", []string{"lat", "lon"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"survey", "DHS_CLUSTERS"}, []string{"lat"}).WillReturnError(fmt.Errorf("permission denied"))

	_, err = CopyFrom(context.Background(), mock, "survey.DHS_CLUSTERS", []string{"lat"}, [][]any{{1.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO survey.DHS_CLUSTERS")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database_url")
}
