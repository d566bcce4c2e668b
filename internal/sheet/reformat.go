package sheet

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// SpecificationsSheet is the sheet ReadSpecifications reads.
const SpecificationsSheet = "Data Specifications"

// Columns required in the Data Specifications sheet.
var specificationColumns = []string{
	"ServerName",
	"DatabaseName",
	"schemaName",
	"TableName",
	"TableDesc",
	"ColumnName",
	"ColumnDesc",
}

// elementColumns is the column order of every reformatted data model sheet.
var elementColumns = []string{
	ColDataClassPath,
	ColDataElementName,
	ColDescription,
	ColMinMultiplicity,
	ColMaxMultiplicity,
	ColDataTypeName,
	ColDataTypeReference,
}

// SpecRow is one row of a Data Specifications sheet.
type SpecRow struct {
	ServerName   string
	DatabaseName string
	SchemaName   string
	TableName    string
	TableDesc    string
	ColumnName   string
	ColumnDesc   string
}

func (r SpecRow) schemaPath() string {
	return r.DatabaseName + PathSegmentSeparator + r.SchemaName
}

func (r SpecRow) tablePath() string {
	return r.schemaPath() + PathSegmentSeparator + r.TableName
}

// ReadSpecifications reads the Data Specifications sheet of path.
// The literal text None is read as empty.
func ReadSpecifications(path string) ([]SpecRow, error) {
	header, rows, err := ReadTable(path, SpecificationsSheet)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	var missing []string
	for _, col := range specificationColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: required columns not found: %s", path, strings.Join(missing, ", "))
	}

	get := func(row []string, col string) string {
		v := row[index[col]]
		if v == "None" {
			return ""
		}
		return v
	}

	out := make([]SpecRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, SpecRow{
			ServerName:   get(row, "ServerName"),
			DatabaseName: get(row, "DatabaseName"),
			SchemaName:   get(row, "schemaName"),
			TableName:    get(row, "TableName"),
			TableDesc:    get(row, "TableDesc"),
			ColumnName:   get(row, "ColumnName"),
			ColumnDesc:   get(row, "ColumnDesc"),
		})
	}
	return out, nil
}

// Reformat builds a Simple Excel Model with one data model per server.
// Each server sheet lists its databases, then db | schema classes, then
// db | schema | table classes, then one element per column.
func Reformat(rows []SpecRow) *Model {
	model := &Model{}
	for _, server := range distinct(rows, func(r SpecRow) string { return r.ServerName }) {
		var serverRows []SpecRow
		for _, r := range rows {
			if r.ServerName == server {
				serverRows = append(serverRows, r)
			}
		}
		model.AddDataModel(server, serverSheet(server, serverRows))
	}
	return model
}

func serverSheet(server string, rows []SpecRow) Sheet {
	s := Sheet{Name: SheetName(server), Columns: elementColumns}
	classRow := func(path, desc string) []any {
		return []any{path, "", desc, "1", "1", "", ""}
	}

	for _, db := range distinct(rows, func(r SpecRow) string { return r.DatabaseName }) {
		s.Rows = append(s.Rows, classRow(db, ""))
	}
	for _, path := range distinct(rows, SpecRow.schemaPath) {
		s.Rows = append(s.Rows, classRow(path, ""))
	}
	seen := make(map[string]bool)
	for _, r := range rows {
		if path := r.tablePath(); !seen[path] {
			seen[path] = true
			s.Rows = append(s.Rows, classRow(path, r.TableDesc))
		}
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.tablePath(), r.ColumnName, r.ColumnDesc, "1", "1", "Unknown", ""})
	}
	return s
}

// distinct returns the keys of rows in first-seen order.
func distinct(rows []SpecRow, key func(SpecRow) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// DefaultReformatFile returns <input name>_ReformedForMauro_<timestamp>.xlsx,
// where the input name is the base name up to its first dot.
func DefaultReformatFile(input string, now time.Time) string {
	name, _, _ := strings.Cut(filepath.Base(input), ".")
	return name + "_ReformedForMauro_" + mauro.Timestamp(now) + ".xlsx"
}
