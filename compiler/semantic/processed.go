package semantic

import (
	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/sfmt"
)

// Processed is the flattened, typed view of a query built by the
// processor and read by the extractors.
type Processed struct {
	Query    *ast.Query
	Type     QueryType
	SpecialK bool
	Items    []*Item
	// Keys are the grouping fields of GROUP and SELECT_DISTINCT, the
	// fields of TOP_K and COUNT_DISTINCT and the operand of DISTRIBUTION.
	Keys []*Key
	// Aggregates are the group operations of GROUP and special K.
	Aggregates []*Aggregate
	OrderBy    []*SortKey
	// Inputs are computed expressions materialized by the projection
	// before the aggregation reads them.
	Inputs    []*Input
	Threshold *int64
	Limit     *int64
	Duration  int64

	// aggItem is the COUNT(DISTINCT), distribution or TOP item.
	aggItem *Item
	types   map[int]bql.Type
}

// Item is a select item.  Expr is nil for *.
type Item struct {
	Expr  ast.Expr
	Name  string
	Alias bool
	Loc   ast.Loc
	// Super is set when the item is itself an aggregate call.
	Super    bool
	GroupKey bool
	category category
}

// Key is a grouping field.  Text matches it against select items, Field
// is the input field it reads and Name the output field it becomes.
type Key struct {
	Expr     ast.Expr
	Text     string
	Field    string
	Name     string
	Selected bool
}

type Aggregate struct {
	Op       string
	Expr     ast.Expr
	Text     string
	Field    string
	Name     string
	Selected bool
}

// SortKey is an ORDER BY key resolved to an output field name.  A
// transient key is culled after ordering.  A computed key must be
// materialized before it can be ordered on.
type SortKey struct {
	Expr      ast.Expr
	Desc      bool
	Loc       ast.Loc
	Name      string
	Transient bool
	Computed  bool
}

type Input struct {
	Name string
	Expr ast.Expr
}

// TypeOf returns the type resolved for an expression occurrence.
func (p *Processed) TypeOf(e ast.Expr) bql.Type {
	return p.types[e.Occ()]
}

// resolve matches an ORDER BY key to a select item, first by alias and
// then by formatted text.  Aliases are looked up as given and never
// chased through other aliases.
func (p *Processed) resolve(e ast.Expr) *Item {
	if f, ok := ast.Unparen(e).(*ast.FieldExpr); ok {
		for _, item := range p.Items {
			if item.Alias && item.Name == f.Name {
				return item
			}
		}
	}
	text := sfmt.RawExpr(e)
	for _, item := range p.Items {
		if item.Expr != nil && sfmt.RawExpr(item.Expr) == text {
			return item
		}
	}
	return nil
}

func (p *Processed) key(text string) *Key {
	for _, k := range p.Keys {
		if k.Text == text {
			return k
		}
	}
	return nil
}

func (p *Processed) aggregate(text string) *Aggregate {
	for _, a := range p.Aggregates {
		if a.Text == text {
			return a
		}
	}
	return nil
}

func (p *Processed) addInput(e ast.Expr) string {
	if f := ast.Unparen(e); ast.IsField(f) {
		return sfmt.RawExpr(f)
	}
	name := sfmt.RawExpr(e)
	for _, in := range p.Inputs {
		if in.Name == name {
			return name
		}
	}
	p.Inputs = append(p.Inputs, &Input{Name: name, Expr: e})
	return name
}
