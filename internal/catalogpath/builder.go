// Package catalogpath turns normalized rows into catalog path addresses
// of the form dm:<db>|dc:<schema>|dc:<table>|de:<field>.
package catalogpath

import (
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// Build derives the HierarchyPath for row and its serialized form.
// Absent optional segments are omitted. Segments must be contiguous from db:
// a field needs a table, and db is always required.
func Build(row mauro.NormalizedRow) (mauro.HierarchyPath, string, error) {
	path, err := FromHierarchy(row.Index, row.Hierarchy)
	if err != nil {
		return mauro.HierarchyPath{}, "", err
	}
	return path, path.String(), nil
}

// FromHierarchy builds the path for h. index is only used in errors.
func FromHierarchy(index int, h mauro.Hierarchy) (mauro.HierarchyPath, error) {
	if !h.DB.Present {
		return mauro.HierarchyPath{}, &mauro.IncompletePathError{Row: index, Missing: mauro.ColumnDB}
	}
	if h.Field.Present && !h.Table.Present {
		return mauro.HierarchyPath{}, &mauro.IncompletePathError{Row: index, Missing: mauro.ColumnTable}
	}

	segments := []mauro.Segment{{Column: mauro.ColumnDB, Role: mauro.RoleDataModel, Name: h.DB.Value}}
	if h.Schema.Present {
		segments = append(segments, mauro.Segment{Column: mauro.ColumnSchema, Role: mauro.RoleDataClass, Name: h.Schema.Value})
	}
	if h.Table.Present {
		segments = append(segments, mauro.Segment{Column: mauro.ColumnTable, Role: mauro.RoleDataClass, Name: h.Table.Value})
	}
	if h.Field.Present {
		segments = append(segments, mauro.Segment{Column: mauro.ColumnField, Role: mauro.RoleDataElement, Name: h.Field.Value})
	}

	return mauro.HierarchyPath{Segments: segments}, nil
}
