package extract

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/Sunspark/MauroDataCollector/internal/logging"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// MSSQLConfig identifies one SQL Server database.
type MSSQLConfig struct {
	// Server is host or host\instance, optionally host:port.
	Server   string
	Database string
	Username string
	Password string

	Encrypt                bool
	TrustServerCertificate bool
}

// ConnectionString returns the sqlserver:// URL for cfg.
func (c MSSQLConfig) ConnectionString() string {
	host, instance, _ := strings.Cut(c.Server, `\`)

	query := url.Values{}
	query.Add("database", c.Database)
	if c.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "disable")
	}
	if c.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     host,
		RawQuery: query.Encode(),
	}
	if instance != "" {
		u.Path = "/" + instance
	}
	return u.String()
}

const mssqlTablesQuery = `
SELECT
    t.TABLE_CATALOG,
    t.TABLE_SCHEMA,
    t.TABLE_NAME,
    t.TABLE_TYPE,
    ISNULL(CONVERT(VARCHAR(2000), d.[value]), '') AS description
FROM INFORMATION_SCHEMA.TABLES t
OUTER APPLY fn_listextendedproperty('MS_Description', 'schema', t.TABLE_SCHEMA, 'table', t.TABLE_NAME, NULL, NULL) d
WHERE t.TABLE_TYPE IN ('BASE TABLE', 'VIEW')
ORDER BY t.TABLE_SCHEMA, t.TABLE_NAME
`

const mssqlColumnsQuery = `
SELECT
    t.TABLE_CATALOG,
    c.TABLE_SCHEMA,
    c.TABLE_NAME,
    c.COLUMN_NAME,
    ISNULL(CONVERT(VARCHAR(2000), d.[value]), '') AS description,
    c.ORDINAL_POSITION,
    c.IS_NULLABLE,
    c.DATA_TYPE,
    c.CHARACTER_MAXIMUM_LENGTH,
    c.CHARACTER_OCTET_LENGTH,
    c.NUMERIC_PRECISION,
    c.NUMERIC_SCALE,
    c.DATETIME_PRECISION,
    ISNULL(c.COLUMN_DEFAULT, '') AS column_default
FROM INFORMATION_SCHEMA.TABLES t
INNER JOIN INFORMATION_SCHEMA.COLUMNS c
    ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
OUTER APPLY fn_listextendedproperty('MS_Description', 'schema', t.TABLE_SCHEMA, 'table', t.TABLE_NAME, 'column', c.COLUMN_NAME) d
WHERE t.TABLE_TYPE IN ('BASE TABLE', 'VIEW')
ORDER BY c.TABLE_SCHEMA, c.TABLE_NAME, c.ORDINAL_POSITION
`

// MSSQLSource reads schema metadata from SQL Server.
type MSSQLSource struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ Source = (*MSSQLSource)(nil)

// NewMSSQL opens and pings a SQL Server connection.
func NewMSSQL(ctx context.Context, cfg MSSQLConfig, logger *zap.Logger) (*MSSQLSource, error) {
	logger = logging.OrNop(logger).Named("mssql")
	connStr := cfg.ConnectionString()
	logger.Debug("Connecting", zap.String("connection", logging.SanitizeConnectionString(connStr)))

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open SQL Server connection: %v: %w", err, mauro.ErrSourceDatabase)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s: %v: %w", cfg.Server, err, mauro.ErrSourceDatabase)
	}
	return &MSSQLSource{db: db, logger: logger}, nil
}

func (s *MSSQLSource) Engine() string { return EngineMSSQL }

func (s *MSSQLSource) Close() error { return s.db.Close() }

// Extract reads every base table and view of the connected database.
func (s *MSSQLSource) Extract(ctx context.Context) (*Schema, error) {
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

func (s *MSSQLSource) tables(ctx context.Context) ([]Table, error) {
	rows, err := s.db.QueryContext(ctx, mssqlTablesQuery)
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

func (s *MSSQLSource) columns(ctx context.Context) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, mssqlColumnsQuery)
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
