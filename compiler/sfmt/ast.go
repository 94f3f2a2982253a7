package sfmt

import (
	"strconv"
	"strings"

	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler/ast"
)

// AST renders a query as canonical BQL text on one line.
func AST(q *ast.Query) string {
	c := &canon{}
	c.query(q)
	c.flush()
	return c.String()
}

// ASTExpr renders an expression for display, quoting identifiers and
// escaping string literals as they would appear in a query.
func ASTExpr(e ast.Expr) string {
	c := &canon{}
	c.expr(e)
	c.flush()
	return c.String()
}

// RawExpr renders an expression in the form used to name it: string
// literals are not escaped and identifiers are not quoted.
func RawExpr(e ast.Expr) string {
	c := &canon{shared: shared{raw: true}}
	c.expr(e)
	c.flush()
	return c.String()
}

type canon struct {
	shared
}

func (c *canon) exprs(exprs []ast.Expr) {
	for k, e := range exprs {
		if k > 0 {
			c.write(", ")
		}
		c.expr(e)
	}
}

func (c *canon) expr(e ast.Expr) {
	switch e := e.(type) {
	case nil:
		c.write("NULL")
	case *ast.BetweenExpr:
		c.expr(e.Expr)
		if e.Not {
			c.write(" NOT")
		}
		c.write(" BETWEEN ")
		c.expr(e.Lower)
		c.write(" AND ")
		c.expr(e.Upper)
	case *ast.BinaryExpr:
		if binaryFuncs[e.Op] {
			c.write(e.Op + "(")
			c.expr(e.LHS)
			c.write(", ")
			c.expr(e.RHS)
			c.write(")")
			return
		}
		c.expr(e.LHS)
		c.write(" %s ", e.Op)
		c.expr(e.RHS)
	case *ast.CastExpr:
		c.write("CAST(")
		c.expr(e.Expr)
		c.write(" AS %s)", e.Type)
	case *ast.CountDistinctExpr:
		c.write("COUNT(DISTINCT ")
		c.exprs(e.Args)
		c.write(")")
	case *ast.DistributionExpr:
		c.write(e.Op + "(")
		c.expr(e.Expr)
		c.write(", " + e.Mode)
		switch e.Mode {
		case "LINEAR":
			c.write(", %d", e.NumPoints)
		case "REGION":
			c.write(", %s, %s, %s", float(e.RangeStart), float(e.RangeEnd), float(e.Increment))
		case "MANUAL":
			for _, p := range e.Points {
				c.write(", " + float(p))
			}
		}
		c.write(")")
	case *ast.FieldExpr:
		c.name(e.Name, e.Quoted)
	case *ast.GroupOpExpr:
		c.write(e.Op + "(")
		if e.Star {
			c.write("*")
		} else {
			if e.Distinct {
				c.write("DISTINCT ")
			}
			c.exprs(e.Args)
		}
		c.write(")")
	case *ast.IsNullExpr:
		c.expr(e.Expr)
		if e.Not {
			c.write(" IS NOT NULL")
		} else {
			c.write(" IS NULL")
		}
	case *ast.ListExpr:
		c.write("[")
		c.exprs(e.Elems)
		c.write("]")
	case *ast.LiteralExpr:
		typ, _ := bql.ParseType(e.Type)
		c.literal(typ, e.Text)
	case *ast.NAryExpr:
		c.write(e.Op + "(")
		c.exprs(e.Operands)
		c.write(")")
	case *ast.ParenExpr:
		c.write("(")
		c.expr(e.Expr)
		c.write(")")
	case *ast.SubFieldExpr:
		c.expr(e.Expr)
		switch {
		case e.Index != nil:
			c.write("[%d]", *e.Index)
		case e.Dot:
			c.write("." + *e.Key)
		default:
			c.write("['" + c.escape(*e.Key) + "']")
		}
	case *ast.TopKExpr:
		c.write("TOP(%d, ", e.Size)
		if e.Threshold != nil {
			c.write("%d, ", *e.Threshold)
		}
		c.exprs(e.Args)
		c.write(")")
	case *ast.UnaryExpr:
		switch {
		case unaryFuncs[e.Op]:
			c.write(e.Op + "(")
			c.expr(e.Operand)
			c.write(")")
		case e.Op == "NOT":
			c.write("NOT ")
			c.expr(e.Operand)
		default:
			c.write(e.Op)
			// Keep "- 5" from reading back as the literal -5.
			if _, ok := e.Operand.(*ast.LiteralExpr); ok {
				c.space()
			}
			c.expr(e.Operand)
		}
	default:
		panic(e)
	}
}

func float(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *canon) query(q *ast.Query) {
	c.write("SELECT ")
	if q.Select.Distinct {
		c.write("DISTINCT ")
	}
	for k, item := range q.Select.Items {
		if k > 0 {
			c.write(", ")
		}
		if item.Star {
			c.write("*")
			continue
		}
		c.expr(item.Expr)
		if item.Alias != nil {
			c.write(" AS ")
			c.name(item.Alias.Text, item.Alias.Quoted)
		}
	}
	c.write(" FROM ")
	c.stream(q.Stream)
	if lv := q.LateralView; lv != nil {
		c.write(" LATERAL VIEW ")
		if lv.Outer {
			c.write("OUTER ")
		}
		c.write("EXPLODE(")
		c.expr(lv.Expr)
		c.write(") AS ")
		if len(lv.Aliases) > 1 {
			c.write("(")
			c.names(lv.Aliases)
			c.write(")")
		} else {
			c.names(lv.Aliases)
		}
	}
	if q.Where != nil {
		c.write(" WHERE ")
		c.expr(q.Where)
	}
	if q.GroupBy != nil {
		c.write(" GROUP BY ")
		if len(q.GroupBy.Exprs) == 0 {
			c.write("()")
		}
		c.exprs(q.GroupBy.Exprs)
	}
	if q.Having != nil {
		c.write(" HAVING ")
		c.expr(q.Having)
	}
	if q.OrderBy != nil {
		c.write(" ORDER BY ")
		for k, item := range q.OrderBy.Items {
			if k > 0 {
				c.write(", ")
			}
			c.expr(item.Expr)
			if item.Desc {
				c.write(" DESC")
			}
		}
	}
	if w := q.Window; w != nil {
		c.write(" WINDOWING %s(%d, %s", w.Type, w.Every, w.Unit)
		if inc := w.Include; inc != nil {
			c.write(", " + inc.Type)
			if inc.Type != ast.IncludeAll {
				c.write(", %d, %s", inc.Count, inc.Unit)
			}
		}
		c.write(")")
	}
	if q.Limit != nil {
		c.write(" LIMIT %d", q.Limit.Count)
	}
}

func (c *canon) stream(s ast.Stream) {
	c.write("STREAM(")
	switch {
	case s.Max:
		c.write("MAX, " + s.Unit)
	case s.Duration != nil:
		c.write("%d, %s", *s.Duration, s.Unit)
	}
	c.write(")")
}

func (c *canon) names(names []ast.Name) {
	var parts []string
	for _, n := range names {
		if n.Quoted {
			parts = append(parts, `"`+n.Text+`"`)
		} else {
			parts = append(parts, n.Text)
		}
	}
	c.write(strings.Join(parts, ", "))
}
