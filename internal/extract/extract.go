// Package extract reads table and column metadata from a relational source
// and lays it out as a Simple Excel Model.
package extract

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Sunspark/MauroDataCollector/internal/sheet"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// Engines name the property namespace of extracted metadata.
const (
	EngineMSSQL    = "mssql"
	EnginePostgres = "postgres"
)

// Table is one base table or view.
type Table struct {
	Catalog     string
	Schema      string
	Name        string
	Type        string
	Description string
}

// Column is one column of a Table.
type Column struct {
	Catalog           string
	Schema            string
	Table             string
	Name              string
	Description       string
	OrdinalPosition   int64
	IsNullable        string
	DataType          string
	CharMaxLength     sql.NullInt64
	CharOctetLength   sql.NullInt64
	NumericPrecision  sql.NullInt64
	NumericScale      sql.NullInt64
	DatetimePrecision sql.NullInt64
	Default           string
}

// Schema is everything extracted from one database.
type Schema struct {
	Tables  []Table
	Columns []Column
}

// Source is a database schema can be read from.
type Source interface {
	Engine() string
	Extract(ctx context.Context) (*Schema, error)
	Close() error
}

// ClassPath returns the DataClass Path of a table: catalog | schema | table.
func ClassPath(catalog, schema, table string) string {
	return strings.Join([]string{catalog, schema, table}, sheet.PathSegmentSeparator)
}

// Columns returns the sheet column order for engine.
func Columns(engine string) []string {
	table := "database." + engine + ".tableinfo."
	col := "database." + engine + ".columninfo."
	return []string{
		sheet.ColDataClassPath,
		table + "table_type",
		sheet.ColDescription,
		sheet.ColDataElementName,
		col + "ordinal_position",
		col + "is_nullable",
		sheet.ColDataTypeName,
		col + "character_maximum_length",
		col + "character_octet_length",
		col + "numeric_precision",
		col + "numeric_scale",
		col + "datetime_precision",
		col + "column_default",
		sheet.ColMinMultiplicity,
		sheet.ColMaxMultiplicity,
		sheet.ColDataTypeReference,
	}
}

// BuildModel lays out s as a workbook with one data model named after server.
// Table rows come first, then column rows, each in extraction order.
func BuildModel(server, engine string, s *Schema) *sheet.Model {
	name := sheet.SheetName(server)
	out := sheet.Sheet{Name: name, Columns: Columns(engine)}

	for _, t := range s.Tables {
		out.Rows = append(out.Rows, []any{
			ClassPath(t.Catalog, t.Schema, t.Name), t.Type, t.Description, "",
			"", "", "", "", "", "", "", "", "",
			"1", "1", "",
		})
	}
	for _, c := range s.Columns {
		out.Rows = append(out.Rows, []any{
			ClassPath(c.Catalog, c.Schema, c.Table), "", c.Description, c.Name,
			c.OrdinalPosition, c.IsNullable, strings.ToUpper(c.DataType),
			nullInt(c.CharMaxLength), nullInt(c.CharOctetLength),
			nullInt(c.NumericPrecision), nullInt(c.NumericScale), nullInt(c.DatetimePrecision),
			c.Default,
			"1", "1", "",
		})
	}

	model := &sheet.Model{}
	model.AddDataModel(name, out)
	return model
}

func nullInt(v sql.NullInt64) any {
	if !v.Valid {
		return ""
	}
	return v.Int64
}

// DefaultOutputFile returns <server>_<db>_ForMauro_<timestamp>.xlsx with
// backslashes in the server name replaced for use in a file name.
func DefaultOutputFile(server, database string, now time.Time) string {
	return strings.ReplaceAll(server, `\`, "_") + "_" + database + "_ForMauro_" + mauro.Timestamp(now) + ".xlsx"
}
