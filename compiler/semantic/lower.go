package semantic

import (
	"strings"

	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/sfmt"
)

// lower translates a checked expression to IR.  When subst is not nil it
// may replace any subexpression with a reference to an output field.
func (p *Processed) lower(e ast.Expr, subst func(ast.Expr) ir.Expr) ir.Expr {
	if subst != nil {
		if out := subst(e); out != nil {
			return out
		}
	}
	typ := p.TypeOf(e)
	switch e := e.(type) {
	case *ast.BetweenExpr:
		op := "BETWEEN"
		if e.Not {
			op = "NOT BETWEEN"
		}
		return &ir.NAryExpr{
			Kind:     "NAryExpr",
			Op:       op,
			Operands: p.lowerAll([]ast.Expr{e.Expr, e.Lower, e.Upper}, subst),
			Type:     typ,
		}
	case *ast.BinaryExpr:
		return &ir.BinaryExpr{
			Kind:  "BinaryExpr",
			Op:    e.Op,
			Left:  p.lower(e.LHS, subst),
			Right: p.lower(e.RHS, subst),
			Type:  typ,
		}
	case *ast.CastExpr:
		return &ir.CastExpr{
			Kind:     "CastExpr",
			Value:    p.lower(e.Expr, subst),
			CastType: typ,
			Type:     typ,
		}
	case *ast.FieldExpr:
		return ir.NewField(e.Name, typ)
	case *ast.IsNullExpr:
		op := "IS NULL"
		if e.Not {
			op = "IS NOT NULL"
		}
		return &ir.UnaryExpr{Kind: "UnaryExpr", Op: op, Operand: p.lower(e.Expr, subst), Type: typ}
	case *ast.ListExpr:
		return &ir.ListExpr{Kind: "ListExpr", Values: p.lowerAll(e.Elems, subst), Type: typ}
	case *ast.LiteralExpr:
		return literal(e, typ)
	case *ast.NAryExpr:
		return &ir.NAryExpr{Kind: "NAryExpr", Op: e.Op, Operands: p.lowerAll(e.Operands, subst), Type: typ}
	case *ast.ParenExpr:
		return p.lower(e.Expr, subst)
	case *ast.SubFieldExpr:
		return subfield(e, typ)
	case *ast.UnaryExpr:
		return &ir.UnaryExpr{Kind: "UnaryExpr", Op: e.Op, Operand: p.lower(e.Operand, subst), Type: typ}
	default:
		panic(e)
	}
}

func (p *Processed) lowerAll(exprs []ast.Expr, subst func(ast.Expr) ir.Expr) []ir.Expr {
	out := make([]ir.Expr, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, p.lower(e, subst))
	}
	return out
}

func literal(e *ast.LiteralExpr, typ bql.Type) *ir.ValueExpr {
	text := e.Text
	switch typ {
	case bql.Boolean:
		text = strings.ToLower(text)
	case bql.Null:
		text = "null"
	}
	return &ir.ValueExpr{Kind: "ValueExpr", Value: text, Type: typ}
}

// subfield flattens a[0], m['k'] or m.k.j into one field reference.
func subfield(e *ast.SubFieldExpr, typ bql.Type) *ir.FieldExpr {
	var levels []*ast.SubFieldExpr
	var root ast.Expr = e
	for {
		sub, ok := root.(*ast.SubFieldExpr)
		if !ok {
			break
		}
		levels = append([]*ast.SubFieldExpr{sub}, levels...)
		root = sub.Expr
	}
	out := ir.NewField(root.(*ast.FieldExpr).Name, typ)
	first := levels[0]
	if first.Index != nil {
		index := *first.Index
		out.Index = &index
	} else {
		key := *first.Key
		out.Key = &key
	}
	if len(levels) > 1 {
		key := *levels[1].Key
		out.SubKey = &key
	}
	return out
}

// groupSubst replaces aggregates and group keys in a computation over
// GROUP output with references to the fields holding their values.
func (p *Processed) groupSubst(e ast.Expr) ir.Expr {
	text := sfmt.RawExpr(e)
	if ast.IsAggregate(e) {
		if agg := p.aggregate(text); agg != nil {
			return ir.NewField(agg.Name, p.TypeOf(e))
		}
		panic(e)
	}
	if k := p.key(text); k != nil {
		return ir.NewField(k.Name, p.TypeOf(e))
	}
	return nil
}
