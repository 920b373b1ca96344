package duckdb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/janus/pkg/engines"
	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
)

func newMockEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewWithDB(db, zerolog.New(zerolog.NewTestWriter(t))), mock
}

func TestEngine_GetName(t *testing.T) {
	engine, _ := newMockEngine(t)
	assert.Equal(t, engines.NameAnalytical, engine.GetName())
}

func TestEngine_Execute(t *testing.T) {
	t.Run("aggregation query", func(t *testing.T) {
		engine, mock := newMockEngine(t)
		mock.ExpectQuery("SELECT category, COUNT").WillReturnRows(
			sqlmock.NewRows([]string{"category", "count"}).
				AddRow("books", int64(12)).
				AddRow("games", int64(7)))

		result, err := engine.Execute(context.Background(),
			"SELECT category, COUNT(*) FROM products GROUP BY category")
		require.NoError(t, err)

		assert.Equal(t, []string{"category", "count"}, result.Columns)
		require.Len(t, result.Rows, 2)
		assert.Equal(t, []interface{}{"books", int64(12)}, result.Rows[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mutation reports rows affected", func(t *testing.T) {
		engine, mock := newMockEngine(t)
		mock.ExpectExec("INSERT INTO events").WillReturnResult(sqlmock.NewResult(0, 2))

		result, err := engine.Execute(context.Background(),
			"INSERT INTO events SELECT * FROM staging_events")
		require.NoError(t, err)

		assert.Equal(t, []string{models.RowsAffectedColumn}, result.Columns)
		assert.Equal(t, []interface{}{int64(2)}, result.Rows[0])
	})

	t.Run("long query is truncated in error", func(t *testing.T) {
		engine, mock := newMockEngine(t)
		mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

		long := "SELECT a, b, c, d, e, f, g, h, i, j, k, l, m, n, o, p, q, r, s, t FROM a_rather_long_table_name WHERE a = 1 AND b = 2 AND c = 3"
		_, err := engine.Execute(context.Background(), long)
		require.Error(t, err)
		assert.Equal(t, errors.CodeQueryFailed, errors.GetCode(err))
		assert.Contains(t, err.Error(), "...")
	})
}

func TestEngine_ExecuteWithPlan(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectQuery("SELECT region, SUM").WillReturnRows(
		sqlmock.NewRows([]string{"region", "total"}).AddRow("west", 10.5))

	plan := models.NewAggregationNode(
		models.NewScanNode(map[string]string{
			models.PlanAttrQuery: "SELECT region, SUM(amount) FROM sales GROUP BY region",
			models.PlanAttrTable: "sales",
		}),
		map[string]string{
			models.PlanAttrGroupBy:    "region",
			models.PlanAttrAggregates: "SUM",
		},
	)

	result, err := engine.ExecuteWithPlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"west", 10.5}, result.Rows[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}
