// Package sheet reads and writes Simple Excel Model workbooks, the spreadsheet
// layout the catalog imports data models from.
package sheet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Fixed sheet names and columns of a Simple Excel Model.
const (
	DataModelsSheet   = "DataModels"
	EnumerationsSheet = "Enumerations"
	DataAssetType     = "Data Asset"

	ColDataClassPath     = "DataClass Path"
	ColDataElementName   = "DataElement Name"
	ColDescription       = "Description"
	ColMinMultiplicity   = "Minimum Multiplicity"
	ColMaxMultiplicity   = "Maximum Multiplicity"
	ColDataTypeName      = "DataType Name"
	ColDataTypeReference = "DataType Reference"

	// PathSegmentSeparator joins DataClass Path segments.
	PathSegmentSeparator = " | "
)

const (
	maxSheetNameLength   = 31
	defaultWorkbookSheet = "Sheet1"
)

var (
	dataModelColumns   = []string{"Name", "Description", "Author", "Organisation", "Sheet Key", "Type"}
	enumerationColumns = []string{"DataModel Name", "Enumeration Name", "Description", "Key", "Value"}
)

// DataModel is one row of the DataModels sheet.
type DataModel struct {
	Name         string
	Description  string
	Author       string
	Organisation string
	SheetKey     string
	Type         string
}

// Sheet is one data model sheet. Cells are written as-is, so integers stay numeric.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Model is a complete workbook: the DataModels sheet, an empty Enumerations
// sheet and one sheet per data model.
type Model struct {
	DataModels []DataModel
	Sheets     []Sheet
}

// SheetName converts a server name into a valid sheet name.
// Backslashes become pipes and the result is cut to Excel's 31 characters.
func SheetName(server string) string {
	name := strings.ReplaceAll(server, `\`, "|")
	for _, c := range []string{"/", "?", "*", "[", "]", ":"} {
		name = strings.ReplaceAll(name, c, "_")
	}
	if utf8.RuneCountInString(name) > maxSheetNameLength {
		name = string([]rune(name)[:maxSheetNameLength])
	}
	return name
}

// AddDataModel registers a Data Asset model whose sheet key is its sheet name.
// A sheet name already in use, compared case-insensitively as Excel does, gets
// a numeric suffix so distinct models never share a sheet.
func (m *Model) AddDataModel(name string, sheet Sheet) {
	sheet.Name = m.uniqueSheetName(sheet.Name)
	m.DataModels = append(m.DataModels, DataModel{
		Name:     name,
		SheetKey: sheet.Name,
		Type:     DataAssetType,
	})
	m.Sheets = append(m.Sheets, sheet)
}

func (m *Model) uniqueSheetName(name string) string {
	taken := func(candidate string) bool {
		if strings.EqualFold(candidate, DataModelsSheet) || strings.EqualFold(candidate, EnumerationsSheet) {
			return true
		}
		for _, s := range m.Sheets {
			if strings.EqualFold(candidate, s.Name) {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf("_%d", i)
		base := []rune(name)
		if limit := maxSheetNameLength - len(suffix); len(base) > limit {
			base = base[:limit]
		}
		if candidate := string(base) + suffix; !taken(candidate) {
			return candidate
		}
	}
}

// Write saves the workbook to path.
func (m *Model) Write(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultWorkbookSheet, DataModelsSheet); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}

	models := make([][]any, len(m.DataModels))
	for i, dm := range m.DataModels {
		models[i] = []any{dm.Name, dm.Description, dm.Author, dm.Organisation, dm.SheetKey, dm.Type}
	}
	if err := writeTable(f, DataModelsSheet, dataModelColumns, models); err != nil {
		return err
	}

	if _, err := f.NewSheet(EnumerationsSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", EnumerationsSheet, err)
	}
	if err := writeTable(f, EnumerationsSheet, enumerationColumns, nil); err != nil {
		return err
	}

	for _, s := range m.Sheets {
		if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.Name, err)
		}
		if err := writeTable(f, s.Name, s.Columns, s.Rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, columns []string, rows [][]any) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

// ReadTable returns the header and data rows of one sheet. Short rows are
// padded to the header width.
func ReadTable(path, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil, fmt.Errorf("%s: sheet %q not found", path, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: sheet %q is empty", path, sheet)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		padded := make([]string, len(header))
		copy(padded, r)
		data = append(data, padded)
	}
	return header, data, nil
}
