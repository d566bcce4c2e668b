// Package catalogtest provides an in-memory catalog for tests.
package catalogtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// ErrFinalised is returned when a write targets a finalised node.
var ErrFinalised = errors.New("node is finalised")

// Op names a recorded call.
type Op string

const (
	OpResolve Op = "resolve"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpBranch  Op = "branch"
)

// Call is one recorded invocation.
type Call struct {
	Op      Op
	Path    string
	ID      string
	Intents []mauro.PropertyWriteIntent
}

// Node is a stored catalog node.
type Node struct {
	Ref        mauro.CatalogNodeRef
	Properties mauro.Properties
	BranchOf   string
}

// Catalog is an in-memory mauro.Catalog. Writes go to draft nodes only;
// branching a finalised node creates a new draft with copied properties.
type Catalog struct {
	// WritesUnavailable makes every write return mauro.ErrNotImplemented.
	WritesUnavailable bool

	mu       sync.Mutex
	byPath   map[string]*Node
	byID     map[string]*Node
	outcomes map[string]mauro.LookupOutcome
	calls    []Call
}

var _ mauro.Catalog = (*Catalog)(nil)

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		byPath:   make(map[string]*Node),
		byID:     make(map[string]*Node),
		outcomes: make(map[string]mauro.LookupOutcome),
	}
}

// AddDraft stores a draft node at path.
func (c *Catalog) AddDraft(path string) mauro.CatalogNodeRef {
	return c.add(path, mauro.Draft)
}

// AddFinalised stores a finalised node at path.
func (c *Catalog) AddFinalised(path string) mauro.CatalogNodeRef {
	return c.add(path, mauro.Finalised)
}

func (c *Catalog) add(path string, state mauro.BranchState) mauro.CatalogNodeRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := &Node{Ref: mauro.CatalogNodeRef{ID: uuid.NewString(), BranchState: state}}
	c.byPath[path] = n
	c.byID[n.Ref.ID] = n
	return n.Ref
}

// SetOutcome forces ResolvePath to return outcome for path.
func (c *Catalog) SetOutcome(path string, outcome mauro.LookupOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[path] = outcome
}

// Node returns a copy of the node with id.
func (c *Catalog) Node(id string) (Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.byID[id]
	if !ok {
		return Node{}, false
	}
	return copyNode(n), true
}

// Branches returns the draft branches created from the node with id.
func (c *Catalog) Branches(id string) []Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Node
	for _, n := range c.byID {
		if n.BranchOf == id {
			out = append(out, copyNode(n))
		}
	}
	return out
}

// Calls returns the recorded calls in order.
func (c *Catalog) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallsOf returns the recorded calls of one kind.
func (c *Catalog) CallsOf(op Op) []Call {
	var out []Call
	for _, call := range c.Calls() {
		if call.Op == op {
			out = append(out, call)
		}
	}
	return out
}

func (c *Catalog) ResolvePath(ctx context.Context, path string) mauro.LookupOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: OpResolve, Path: path})

	if outcome, ok := c.outcomes[path]; ok {
		return outcome
	}
	n, ok := c.byPath[path]
	if !ok {
		return mauro.NotFound()
	}
	if n.Ref.BranchState == mauro.Finalised {
		return mauro.ResolvedFinalised(n.Ref)
	}
	return mauro.ResolvedDraft(n.Ref)
}

func (c *Catalog) CreateNode(ctx context.Context, path mauro.HierarchyPath, intents []mauro.PropertyWriteIntent) (mauro.CatalogNodeRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: OpCreate, Path: path.String(), Intents: intents})

	if c.WritesUnavailable {
		return mauro.CatalogNodeRef{}, mauro.ErrNotImplemented
	}
	if _, exists := c.byPath[path.String()]; exists {
		return mauro.CatalogNodeRef{}, fmt.Errorf("node %s already exists", path)
	}
	n := &Node{Ref: mauro.CatalogNodeRef{ID: uuid.NewString(), BranchState: mauro.Draft, Path: path, Label: path.Leaf().Name}}
	for _, intent := range intents {
		n.Properties.Apply(intent)
	}
	c.byPath[path.String()] = n
	c.byID[n.Ref.ID] = n
	return n.Ref, nil
}

func (c *Catalog) UpdateNode(ctx context.Context, ref mauro.CatalogNodeRef, intents []mauro.PropertyWriteIntent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: OpUpdate, Path: ref.Path.String(), ID: ref.ID, Intents: intents})

	if c.WritesUnavailable {
		return mauro.ErrNotImplemented
	}
	n, ok := c.byID[ref.ID]
	if !ok {
		return fmt.Errorf("node %s not found", ref.ID)
	}
	if n.Ref.BranchState == mauro.Finalised {
		return fmt.Errorf("update %s: %w", ref.ID, ErrFinalised)
	}
	for _, intent := range intents {
		n.Properties.Apply(intent)
	}
	return nil
}

func (c *Catalog) BranchNode(ctx context.Context, ref mauro.CatalogNodeRef) (mauro.CatalogNodeRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: OpBranch, Path: ref.Path.String(), ID: ref.ID})

	if c.WritesUnavailable {
		return mauro.CatalogNodeRef{}, mauro.ErrNotImplemented
	}
	src, ok := c.byID[ref.ID]
	if !ok {
		return mauro.CatalogNodeRef{}, fmt.Errorf("node %s not found", ref.ID)
	}
	branch := copyNode(src)
	branch.Ref.ID = uuid.NewString()
	branch.Ref.BranchState = mauro.Draft
	branch.Ref.Path = ref.Path
	branch.BranchOf = src.Ref.ID
	c.byID[branch.Ref.ID] = &branch
	return branch.Ref, nil
}

func copyNode(n *Node) Node {
	out := *n
	if n.Properties.Values != nil {
		out.Properties.Values = make(map[string]string, len(n.Properties.Values))
		for k, v := range n.Properties.Values {
			out.Properties.Values[k] = v
		}
	}
	return out
}
