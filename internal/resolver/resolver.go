// Package resolver turns catalog lookup outcomes into terminal row actions.
package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/Sunspark/MauroDataCollector/internal/logging"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// ActionKind is the terminal action for one row.
type ActionKind int

const (
	SkipWithWarning ActionKind = iota
	SkipWithError
	UpdateInPlace
	CreateBranchThenUpdate
)

func (k ActionKind) String() string {
	switch k {
	case SkipWithWarning:
		return "skip_with_warning"
	case SkipWithError:
		return "skip_with_error"
	case UpdateInPlace:
		return "update_in_place"
	case CreateBranchThenUpdate:
		return "create_branch_then_update"
	}
	return "unknown"
}

// Skip reasons.
const (
	ReasonNotFound  = "entity not found"
	ReasonAmbiguous = "ambiguous match"
)

// Action is what the importer does with a resolved row.
// Ref is set for UpdateInPlace and CreateBranchThenUpdate, Reason for
// SkipWithWarning, Code for SkipWithError.
type Action struct {
	Kind    ActionKind
	Ref     mauro.CatalogNodeRef
	Reason  string
	Code    int
	Outcome mauro.LookupOutcome
}

// Writes reports whether the action leads to catalog writes.
func (a Action) Writes() bool {
	return a.Kind == UpdateInPlace || a.Kind == CreateBranchThenUpdate
}

// Decide maps an outcome to exactly one action. A finalised node is never
// updated in place.
func Decide(outcome mauro.LookupOutcome) Action {
	a := Action{Outcome: outcome}
	switch outcome.Kind {
	case mauro.LookupNotFound:
		a.Kind, a.Reason = SkipWithWarning, ReasonNotFound
	case mauro.LookupAmbiguous:
		a.Kind, a.Reason = SkipWithWarning, ReasonAmbiguous
	case mauro.LookupResolvedDraft:
		a.Kind, a.Ref = UpdateInPlace, outcome.Ref
	case mauro.LookupResolvedFinalised:
		a.Kind, a.Ref = CreateBranchThenUpdate, outcome.Ref
	default:
		a.Kind, a.Code = SkipWithError, outcome.Code
	}
	return a
}

// Resolver resolves paths and logs every terminal action.
type Resolver struct {
	catalog mauro.PathResolver
	logger  *zap.Logger
}

// New creates a resolver over catalog.
func New(catalog mauro.PathResolver, logger *zap.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  logging.OrNop(logger).Named("resolver"),
	}
}

// Resolve looks up path once and returns the terminal action. A resolved
// ref carries path. Fields are attached to the log line, typically file and row.
func (r *Resolver) Resolve(ctx context.Context, path mauro.HierarchyPath, fields ...zap.Field) Action {
	serialized := path.String()
	outcome := r.catalog.ResolvePath(ctx, serialized)
	if outcome.Kind == mauro.LookupResolvedDraft || outcome.Kind == mauro.LookupResolvedFinalised {
		outcome.Ref.Path = path
	}
	action := Decide(outcome)

	fields = append(fields,
		zap.String("path", serialized),
		zap.Stringer("outcome", action.Outcome.Kind),
		zap.Stringer("action", action.Kind))

	switch action.Kind {
	case SkipWithWarning:
		r.logger.Warn("Skipping row: "+action.Reason, fields...)
	case SkipWithError:
		fields = append(fields, zap.Int("status", action.Code))
		if action.Outcome.Err != nil {
			fields = append(fields, zap.Error(action.Outcome.Err))
		}
		r.logger.Error("Skipping row: catalog lookup failed", fields...)
	default:
		fields = append(fields, zap.String("node_id", action.Ref.ID))
		r.logger.Info("Resolved node", fields...)
	}
	return action
}
