package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Sunspark/MauroDataCollector/internal/testinfra"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

func TestPostgresSource_Extract(t *testing.T) {
	connString := testinfra.RequirePostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, connString)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `
		DROP SCHEMA IF EXISTS extract_test CASCADE;
		CREATE SCHEMA extract_test;
		CREATE TABLE extract_test.orders (
			id integer PRIMARY KEY,
			note varchar(200) DEFAULT 'none',
			placed_at timestamp(3)
		);
		COMMENT ON TABLE extract_test.orders IS 'Customer orders';
		COMMENT ON COLUMN extract_test.orders.note IS 'Free text';
		CREATE VIEW extract_test.open_orders AS SELECT id FROM extract_test.orders;
	`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), "DROP SCHEMA IF EXISTS extract_test CASCADE")
	})

	src, err := NewPostgres(ctx, connString, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, EnginePostgres, src.Engine())
	assert.NotEmpty(t, src.Database())

	schema, err := src.Extract(ctx)
	require.NoError(t, err)

	var tables []Table
	for _, tbl := range schema.Tables {
		if tbl.Schema == "extract_test" {
			tables = append(tables, tbl)
		}
	}
	require.Len(t, tables, 2)
	assert.Equal(t, "open_orders", tables[0].Name)
	assert.Equal(t, "VIEW", tables[0].Type)
	assert.Equal(t, "orders", tables[1].Name)
	assert.Equal(t, "BASE TABLE", tables[1].Type)
	assert.Equal(t, "Customer orders", tables[1].Description)

	var orders []Column
	for _, c := range schema.Columns {
		if c.Schema == "extract_test" && c.Table == "orders" {
			orders = append(orders, c)
		}
	}
	require.Len(t, orders, 3)

	assert.Equal(t, "id", orders[0].Name)
	assert.Equal(t, int64(1), orders[0].OrdinalPosition)
	assert.Equal(t, "NO", orders[0].IsNullable)
	assert.Equal(t, "integer", orders[0].DataType)
	assert.True(t, orders[0].NumericPrecision.Valid)
	assert.False(t, orders[0].CharMaxLength.Valid)

	assert.Equal(t, "note", orders[1].Name)
	assert.Equal(t, "Free text", orders[1].Description)
	assert.Equal(t, int64(200), orders[1].CharMaxLength.Int64)
	assert.Contains(t, orders[1].Default, "none")

	assert.Equal(t, int64(3), orders[2].DatetimePrecision.Int64)

	model := BuildModel("localhost", src.Engine(), schema)
	assert.NotEmpty(t, model.Sheets[0].Rows)
}

func TestNewPostgres_InvalidConnString(t *testing.T) {
	_, err := NewPostgres(context.Background(), "postgres://%zz", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mauro.ErrSourceDatabase))
	assert.Equal(t, mauro.ExitSourceDBError, mauro.ExitCodeForError(err))
}
