// Package planner turns the non-hierarchy columns of a row into property write intents.
package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// Options are resolved once per run.
type Options struct {
	// DefaultNamespace is used for headers without a dot. May contain dots itself.
	DefaultNamespace string

	// DeleteOnNull turns null cells into Delete intents instead of Skip.
	DeleteOnNull bool
}

type columnPlan struct {
	target mauro.WriteTarget
	key    mauro.PropertyKey
}

// Planner holds the compiled column plan of one file.
type Planner struct {
	columns      map[string]columnPlan
	deleteOnNull bool
}

// Compile builds the column plan from a file header. Hierarchy columns are
// ignored; every other header must yield a valid PropertyKey.
func Compile(file string, header []string, opts Options) (*Planner, error) {
	p := &Planner{
		columns:      make(map[string]columnPlan, len(header)),
		deleteOnNull: opts.DeleteOnNull,
	}
	for _, h := range header {
		if mauro.IsHierarchyColumn(h) {
			continue
		}
		if h == mauro.ColumnDescription {
			p.columns[h] = columnPlan{target: mauro.TargetDescription}
			continue
		}
		key, err := ParseKey(h, opts.DefaultNamespace)
		if err != nil {
			if errors.Is(err, mauro.ErrConfig) {
				return nil, err
			}
			return nil, &mauro.HeaderError{File: file, Reason: err.Error()}
		}
		p.columns[h] = columnPlan{target: mauro.TargetProperty, key: key}
	}
	return p, nil
}

// Plan returns one intent per non-hierarchy column of row, in column order.
func (p *Planner) Plan(row mauro.NormalizedRow) []mauro.PropertyWriteIntent {
	intents := make([]mauro.PropertyWriteIntent, 0, len(row.Columns))
	for _, col := range row.Columns {
		plan, ok := p.columns[col.Header]
		if !ok {
			continue
		}
		intents = append(intents, mauro.PropertyWriteIntent{
			Target: plan.target,
			Key:    plan.key,
			Value:  col.Value,
			Action: p.action(col.Value),
		})
	}
	return intents
}

func (p *Planner) action(v mauro.Cell) mauro.WriteAction {
	if v.Present {
		return mauro.ActionSet
	}
	if p.deleteOnNull {
		return mauro.ActionDelete
	}
	return mauro.ActionSkip
}

// ParseKey splits header on dots: the last segment is the name, the rest the
// namespace. A header without a dot takes defaultNamespace.
func ParseKey(header, defaultNamespace string) (mauro.PropertyKey, error) {
	parts := strings.Split(header, ".")
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return mauro.PropertyKey{}, fmt.Errorf("header %q has an empty namespace or name segment", header)
		}
	}

	name := parts[len(parts)-1]
	namespace := parts[:len(parts)-1]
	if len(namespace) == 0 {
		if defaultNamespace == "" {
			return mauro.PropertyKey{}, &mauro.ConfigError{
				Field:  "default namespace",
				Value:  header,
				Reason: "column has no namespace and no default namespace is configured",
			}
		}
		namespace = strings.Split(defaultNamespace, ".")
	}
	return mauro.PropertyKey{Namespace: append([]string(nil), namespace...), Name: name}, nil
}
