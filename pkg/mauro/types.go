package mauro

import "strings"

// Hierarchy column names. Headers are case-sensitive.
const (
	ColumnDB          = "db"
	ColumnSchema      = "schema"
	ColumnTable       = "table"
	ColumnField       = "field"
	ColumnDescription = "description"
)

// HierarchyColumns lists the four hierarchy columns in path order.
var HierarchyColumns = []string{ColumnDB, ColumnSchema, ColumnTable, ColumnField}

// IsHierarchyColumn reports whether header names one of the hierarchy columns.
func IsHierarchyColumn(header string) bool {
	switch header {
	case ColumnDB, ColumnSchema, ColumnTable, ColumnField:
		return true
	}
	return false
}

// Cell is a coerced tabular value. Present is false for semantic null.
type Cell struct {
	Value   string
	Present bool
}

// Null is the semantic-null cell.
var Null = Cell{}

// Text returns a present cell holding s.
func Text(s string) Cell {
	return Cell{Value: s, Present: true}
}

// Coerce converts a raw cell into a Cell. The empty string and any casing
// of "null" become semantic null; everything else passes through unchanged.
func Coerce(raw string) Cell {
	if raw == "" || strings.EqualFold(raw, "null") {
		return Null
	}
	return Text(raw)
}

// Hierarchy holds the four hierarchy fields of a row.
type Hierarchy struct {
	DB     Cell
	Schema Cell
	Table  Cell
	Field  Cell
}

// Merge returns h with every present field of overrides replacing the
// corresponding field of h. Absent overrides leave h untouched.
func (h Hierarchy) Merge(overrides Hierarchy) Hierarchy {
	pick := func(file, override Cell) Cell {
		if override.Present {
			return override
		}
		return file
	}
	return Hierarchy{
		DB:     pick(h.DB, overrides.DB),
		Schema: pick(h.Schema, overrides.Schema),
		Table:  pick(h.Table, overrides.Table),
		Field:  pick(h.Field, overrides.Field),
	}
}

// Get returns the field for a hierarchy column name.
func (h Hierarchy) Get(column string) (Cell, bool) {
	switch column {
	case ColumnDB:
		return h.DB, true
	case ColumnSchema:
		return h.Schema, true
	case ColumnTable:
		return h.Table, true
	case ColumnField:
		return h.Field, true
	}
	return Null, false
}

// Column is one non-hierarchy column of a normalized row, in file order.
type Column struct {
	Header string
	Value  Cell
}

// NormalizedRow is a validated, coerced input row with overrides applied.
type NormalizedRow struct {
	// Index is the 1-based data row number within its file (header excluded).
	Index     int
	Hierarchy Hierarchy
	Columns   []Column
}

// SegmentRole is the catalog vocabulary for a path segment.
type SegmentRole int

const (
	RoleDataModel SegmentRole = iota
	RoleDataClass
	RoleDataElement
)

// Tag returns the path prefix the catalog uses for the role.
func (r SegmentRole) Tag() string {
	switch r {
	case RoleDataModel:
		return "dm:"
	case RoleDataClass:
		return "dc:"
	case RoleDataElement:
		return "de:"
	}
	return ""
}

// PathSeparator joins serialized path segments.
const PathSeparator = "|"

// Segment is one element of a HierarchyPath.
type Segment struct {
	Column string
	Role   SegmentRole
	Name   string
}

// String renders the segment with its role tag.
func (s Segment) String() string {
	return s.Role.Tag() + s.Name
}

// HierarchyPath is the ordered, contiguous list of present segments
// from database down to at most field.
type HierarchyPath struct {
	Segments []Segment
}

// Depth is the number of present segments.
func (p HierarchyPath) Depth() int {
	return len(p.Segments)
}

// Leaf returns the deepest segment.
func (p HierarchyPath) Leaf() Segment {
	if len(p.Segments) == 0 {
		return Segment{}
	}
	return p.Segments[len(p.Segments)-1]
}

// String serializes the path in the catalog's path-addressing syntax.
func (p HierarchyPath) String() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, PathSeparator)
}

// BranchState is the lifecycle state of a catalog node.
type BranchState int

const (
	Draft BranchState = iota
	Finalised
)

func (s BranchState) String() string {
	if s == Finalised {
		return "finalised"
	}
	return "draft"
}

// CatalogNodeRef identifies a resolved node. It is never cached across rows.
// Path is the hierarchy the node was resolved from; a lookup only yields a ref
// when the catalog reports exactly Path.String().
type CatalogNodeRef struct {
	ID          string
	BranchState BranchState
	Path        HierarchyPath
	Label       string
	DomainType  string
}

// LookupKind tags a LookupOutcome.
type LookupKind int

const (
	LookupNotFound LookupKind = iota
	LookupAmbiguous
	LookupResolvedDraft
	LookupResolvedFinalised
	LookupTransportError
)

func (k LookupKind) String() string {
	switch k {
	case LookupNotFound:
		return "not_found"
	case LookupAmbiguous:
		return "ambiguous"
	case LookupResolvedDraft:
		return "resolved_draft"
	case LookupResolvedFinalised:
		return "resolved_finalised"
	case LookupTransportError:
		return "transport_error"
	}
	return "unknown"
}

// LookupOutcome is the classified result of resolving one path.
// Ref is set only for the resolved kinds; Code only for LookupTransportError
// (0 means the request never produced an HTTP status).
type LookupOutcome struct {
	Kind LookupKind
	Ref  CatalogNodeRef
	Code int
	Err  error
}

func NotFound() LookupOutcome  { return LookupOutcome{Kind: LookupNotFound} }
func Ambiguous() LookupOutcome { return LookupOutcome{Kind: LookupAmbiguous} }

func ResolvedDraft(ref CatalogNodeRef) LookupOutcome {
	ref.BranchState = Draft
	return LookupOutcome{Kind: LookupResolvedDraft, Ref: ref}
}

func ResolvedFinalised(ref CatalogNodeRef) LookupOutcome {
	ref.BranchState = Finalised
	return LookupOutcome{Kind: LookupResolvedFinalised, Ref: ref}
}

func TransportError(code int, err error) LookupOutcome {
	return LookupOutcome{Kind: LookupTransportError, Code: code, Err: err}
}

// PropertyKey is a namespaced property name derived from a column header.
type PropertyKey struct {
	Namespace []string
	Name      string
}

// NamespaceString joins the namespace segments with dots.
func (k PropertyKey) NamespaceString() string {
	return strings.Join(k.Namespace, ".")
}

func (k PropertyKey) String() string {
	if len(k.Namespace) == 0 {
		return k.Name
	}
	return k.NamespaceString() + "." + k.Name
}

// WriteAction is what a PropertyWriteIntent does.
type WriteAction int

const (
	ActionSkip WriteAction = iota
	ActionSet
	ActionDelete
)

func (a WriteAction) String() string {
	switch a {
	case ActionSet:
		return "set"
	case ActionDelete:
		return "delete"
	}
	return "skip"
}

// WriteTarget selects between the node description and a namespaced property.
type WriteTarget int

const (
	TargetProperty WriteTarget = iota
	TargetDescription
)

// PropertyWriteIntent is one planned write for one column of one row.
type PropertyWriteIntent struct {
	Target WriteTarget
	Key    PropertyKey
	Value  Cell
	Action WriteAction
}

// Properties is a node's metadata as seen by the writer: a description and
// namespaced key/value pairs keyed by PropertyKey.String().
type Properties struct {
	Description Cell
	Values      map[string]string
}

// Apply applies intent with upsert semantics; applying the same intent
// twice leaves the same state as applying it once.
func (p *Properties) Apply(intent PropertyWriteIntent) {
	if intent.Target == TargetDescription {
		switch intent.Action {
		case ActionSet:
			p.Description = intent.Value
		case ActionDelete:
			p.Description = Null
		}
		return
	}
	if p.Values == nil {
		p.Values = make(map[string]string)
	}
	key := intent.Key.String()
	switch intent.Action {
	case ActionSet:
		p.Values[key] = intent.Value.Value
	case ActionDelete:
		delete(p.Values, key)
	}
}
