package mauro

import "context"

// PathResolver resolves a serialized path to a LookupOutcome.
// Implementations never return an error: every failure is a LookupOutcome variant.
type PathResolver interface {
	ResolvePath(ctx context.Context, path string) LookupOutcome
}

// CatalogWriter issues write calls against resolved nodes.
// Implementations that cannot yet perform a write return ErrNotImplemented.
type CatalogWriter interface {
	// CreateNode creates the node addressed by path and applies intents to it.
	CreateNode(ctx context.Context, path HierarchyPath, intents []PropertyWriteIntent) (CatalogNodeRef, error)

	// UpdateNode applies intents to a draft node.
	UpdateNode(ctx context.Context, ref CatalogNodeRef, intents []PropertyWriteIntent) error

	// BranchNode creates a new draft branch from a finalised node.
	BranchNode(ctx context.Context, ref CatalogNodeRef) (CatalogNodeRef, error)
}

// Catalog is the full capability the importer drives.
type Catalog interface {
	PathResolver
	CatalogWriter
}
