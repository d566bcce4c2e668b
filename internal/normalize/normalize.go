// Package normalize validates input headers and turns raw CSV records into
// mauro.NormalizedRow values.
package normalize

import (
	"sort"
	"strings"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// Options configures a Normalizer for one file.
type Options struct {
	// Overrides are hierarchy values supplied on the command line.
	// A present override replaces the file value on every row.
	Overrides mauro.Hierarchy

	// RequireField makes the field column mandatory (field-level import).
	RequireField bool
}

// Normalizer normalizes the rows of one file. It is built once per file,
// after the header has been validated, and is safe to reuse for every row.
type Normalizer struct {
	file      string
	header    []string
	overrides mauro.Hierarchy
}

// New validates header and returns a Normalizer for the file.
// Duplicate headers are reported before the required-column check.
func New(file string, header []string, opts Options) (*Normalizer, error) {
	if dups := DuplicateHeaders(header); len(dups) > 0 {
		return nil, &mauro.HeaderError{File: file, Duplicates: dups}
	}
	for _, h := range header {
		if h == "" {
			return nil, &mauro.HeaderError{File: file, Reason: "empty header cell"}
		}
	}

	if missing := MissingRequired(header, opts.Overrides, opts.RequireField); len(missing) > 0 {
		return nil, &mauro.MissingRequiredFieldError{File: file, Fields: missing}
	}

	return &Normalizer{
		file:      file,
		header:    append([]string(nil), header...),
		overrides: opts.Overrides,
	}, nil
}

// Header returns the validated header.
func (n *Normalizer) Header() []string {
	return n.header
}

// Normalize converts one record, 1-based index within the file.
func (n *Normalizer) Normalize(index int, record []string) (mauro.NormalizedRow, error) {
	if len(record) != len(n.header) {
		return mauro.NormalizedRow{}, &mauro.FieldCountError{
			File: n.file, Row: index, Want: len(n.header), Got: len(record),
		}
	}
	return Normalize(index, n.header, record, n.overrides), nil
}

// Normalize coerces record against header and merges overrides.
// header and record must have equal length. Pure function.
func Normalize(index int, header, record []string, overrides mauro.Hierarchy) mauro.NormalizedRow {
	row := mauro.NormalizedRow{Index: index}
	var fromFile mauro.Hierarchy

	for i, h := range header {
		cell := mauro.Coerce(record[i])
		switch h {
		case mauro.ColumnDB:
			fromFile.DB = cell
		case mauro.ColumnSchema:
			fromFile.Schema = cell
		case mauro.ColumnTable:
			fromFile.Table = cell
		case mauro.ColumnField:
			fromFile.Field = cell
		default:
			row.Columns = append(row.Columns, mauro.Column{Header: h, Value: cell})
		}
	}

	row.Hierarchy = fromFile.Merge(overrides)
	return row
}

// DuplicateHeaders returns the sorted set of header names occurring more
// than once. Comparison is case-sensitive.
func DuplicateHeaders(header []string) []string {
	seen := make(map[string]int, len(header))
	for _, h := range header {
		seen[h]++
	}
	var dups []string
	for h, n := range seen {
		if n > 1 {
			dups = append(dups, h)
		}
	}
	sort.Strings(dups)
	return dups
}

// MissingRequired returns the required hierarchy columns resolvable from
// neither header nor overrides: db and table always, field when requireField.
func MissingRequired(header []string, overrides mauro.Hierarchy, requireField bool) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	required := []string{mauro.ColumnDB, mauro.ColumnTable}
	if requireField {
		required = append(required, mauro.ColumnField)
	}

	var missing []string
	for _, col := range required {
		override, _ := overrides.Get(col)
		if !present[col] && !override.Present {
			missing = append(missing, col)
		}
	}
	return missing
}

// CleanHeader trims surrounding whitespace from every header cell.
func CleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}
