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

var comparisonCols = []string{"run_id", "galaxy", "d_bic"}

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "bakeoff_comparisons", comparisonCols, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Pool(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"bakeoff_comparisons"}, comparisonCols).WillReturnResult(2)

	rows := [][]any{{"r1", "NGC1", 1.5}, {"r1", "NGC2", nil}}
	n, err := CopyFrom(context.Background(), mock, "bakeoff_comparisons", comparisonCols, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Tx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"bakeoff_comparisons"}, comparisonCols).WillReturnResult(1)
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)
	n, err := CopyFrom(ctx, tx, "bakeoff_comparisons", comparisonCols, [][]any{{"r1", "NGC1", 0.0}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"bakeoff_comparisons"}, comparisonCols).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "bakeoff_comparisons", comparisonCols, [][]any{{"r1", "NGC1", 1.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO bakeoff_comparisons")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"astro", "bakeoff_comparisons"}, comparisonCols).WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"astro", "bakeoff_comparisons"}, comparisonCols).WillReturnError(fmt.Errorf("permission denied"))

	ctx := context.Background()
	rows := [][]any{{"r1", "NGC1", 2.0}}
	n, err := CopyFromSchema(ctx, mock, "astro", "bakeoff_comparisons", comparisonCols, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = CopyFromSchema(ctx, mock, "astro", "bakeoff_comparisons", comparisonCols, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO astro.bakeoff_comparisons")

	n, err = CopyFromSchema(ctx, nil, "astro", "bakeoff_comparisons", comparisonCols, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
