package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Sunspark/MauroDataCollector/internal/logging"
	"github.com/Sunspark/MauroDataCollector/internal/retry"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

const postgresTablesQuery = `
SELECT
    t.table_catalog::text,
    t.table_schema::text,
    t.table_name::text,
    t.table_type::text,
    COALESCE(obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass, 'pg_class'), '')
FROM information_schema.tables t
WHERE t.table_type IN ('BASE TABLE', 'VIEW')
  AND t.table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY t.table_schema, t.table_name
`

const postgresColumnsQuery = `
SELECT
    c.table_catalog::text,
    c.table_schema::text,
    c.table_name::text,
    c.column_name::text,
    COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int), ''),
    c.ordinal_position::bigint,
    c.is_nullable::text,
    c.data_type::text,
    c.character_maximum_length::bigint,
    c.character_octet_length::bigint,
    c.numeric_precision::bigint,
    c.numeric_scale::bigint,
    c.datetime_precision::bigint,
    COALESCE(c.column_default::text, '')
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_catalog = c.table_catalog
 AND t.table_schema = c.table_schema
 AND t.table_name = c.table_name
WHERE t.table_type IN ('BASE TABLE', 'VIEW')
  AND t.table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY c.table_schema, c.table_name, c.ordinal_position
`

// PostgresSource reads schema metadata from PostgreSQL.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ Source = (*PostgresSource)(nil)

// NewPostgres connects to connString, which may be a URI, a keyword/value
// string or an ADO.NET string. Transient connection failures are
// retried with exponential backoff.
func NewPostgres(ctx context.Context, connString string, logger *zap.Logger) (*PostgresSource, error) {
	logger = logging.OrNop(logger).Named("postgres")

	connString, err := PostgresConnString(connString)
	if err != nil {
		return nil, err
	}
	logger.Debug("Connecting", zap.String("connection", logging.SanitizeConnectionString(connString)))

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %v: %w", err, mauro.ErrSourceDatabase)
	}

	executor := retry.NewExecutor(
		retry.NewPostgreSQLErrorClassifier(),
		retry.NewExponentialBackoff(3, retry.WithInitialDelay(500*time.Millisecond)),
	).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Warn("Retrying connection", zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(err))
	})
	if err := executor.Execute(ctx, pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %v: %w", err, mauro.ErrSourceDatabase)
	}

	return &PostgresSource{pool: pool, logger: logger}, nil
}

func (s *PostgresSource) Engine() string { return EnginePostgres }

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

// Extract reads every base table and view outside the system schemas.
func (s *PostgresSource) Extract(ctx context.Context) (*Schema, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Collected tables", zap.Int("count", len(tables)))

	columns, err := s.columns(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Collected columns", zap.Int("count", len(columns)))

	return &Schema{Tables: tables, Columns: columns}, nil
}

// Host returns the server host of the connection.
func (s *PostgresSource) Host() string {
	return s.pool.Config().ConnConfig.Host
}

// Database returns the name of the connected database.
func (s *PostgresSource) Database() string {
	return s.pool.Config().ConnConfig.Database
}

func (s *PostgresSource) tables(ctx context.Context) ([]Table, error) {
	rows, err := s.pool.Query(ctx, postgresTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("query tables: %v: %w", err, mauro.ErrSourceDatabase)
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Catalog, &t.Schema, &t.Name, &t.Type, &t.Description); err != nil {
			return nil, fmt.Errorf("scan table row: %v: %w", err, mauro.ErrSourceDatabase)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %v: %w", err, mauro.ErrSourceDatabase)
	}
	return tables, nil
}

func (s *PostgresSource) columns(ctx context.Context) ([]Column, error) {
	rows, err := s.pool.Query(ctx, postgresColumnsQuery)
	if err != nil {
		return nil, fmt.Errorf("query columns: %v: %w", err, mauro.ErrSourceDatabase)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var c Column
		err := rows.Scan(
			&c.Catalog, &c.Schema, &c.Table, &c.Name, &c.Description,
			&c.OrdinalPosition, &c.IsNullable, &c.DataType,
			&c.CharMaxLength, &c.CharOctetLength, &c.NumericPrecision, &c.NumericScale, &c.DatetimePrecision,
			&c.Default,
		)
		if err != nil {
			return nil, fmt.Errorf("scan column row: %v: %w", err, mauro.ErrSourceDatabase)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %v: %w", err, mauro.ErrSourceDatabase)
	}
	return columns, nil
}
