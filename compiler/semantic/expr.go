package semantic

import (
	"errors"
	"fmt"

	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/sfmt"
	"github.com/bullet-db/bql/schema"
)

// checker resolves the type of every expression occurrence it visits.
// Fields are looked up in the view passed down the tree except inside
// aggregates, whose operands always read the input records.
type checker struct {
	types map[int]bql.Type
	input schema.Layered
	errs  errlist
	// aggErr is the error for an aggregate in the clause being checked
	// or empty where aggregates are allowed.
	aggErr string
	inAgg  bool
	// top is the one place a COUNT(DISTINCT), distribution or TOP call
	// may appear.
	top ast.Expr
}

func (c *checker) expr(view schema.Layered, e ast.Expr) bql.Type {
	typ := c.typeOf(view, e)
	c.types[e.Occ()] = typ
	return typ
}

func (c *checker) typeOf(view schema.Layered, e ast.Expr) bql.Type {
	switch e := e.(type) {
	case *ast.BetweenExpr:
		x := c.expr(view, e.Expr)
		lower := c.expr(view, e.Lower)
		upper := c.expr(view, e.Upper)
		sig := bql.Binary[">="]
		_, lok := sig.Check(x, lower)
		_, uok := sig.Check(x, upper)
		if !lok || !uok {
			c.errorf(e, "The types of the arguments in %s must be %s. Types given: %s, %s, %s", display(e), sig.Operands, x, lower, upper)
		}
		return bql.Boolean
	case *ast.BinaryExpr:
		l := c.expr(view, e.LHS)
		r := c.expr(view, e.RHS)
		sig, ok := bql.Binary[e.Op]
		if !ok {
			panic(e.Op)
		}
		typ, ok := sig.Check(l, r)
		if !ok {
			c.errorf(e, "The left and right operands in %s must be %s. Types given: %s, %s", display(e), sig.Operands, l, r)
			return bql.Unknown
		}
		return typ
	case *ast.CastExpr:
		from := c.expr(view, e.Expr)
		to, err := bql.ParseType(e.Type)
		if err != nil || !to.IsPrimitive() {
			c.errorf(e, "Cannot cast %s to unknown type %s.", display(e.Expr), e.Type)
			return bql.Unknown
		}
		if !bql.CanCast(from, to) {
			c.errorf(e, "Cannot cast %s from %s to %s.", display(e.Expr), from, to)
		}
		return to
	case *ast.CountDistinctExpr:
		c.aggregate(e, "COUNT(DISTINCT)", func() {
			for _, arg := range e.Args {
				c.primitive(arg, "COUNT(DISTINCT)")
			}
		})
		return bql.Long
	case *ast.DistributionExpr:
		c.aggregate(e, e.Op, func() {
			c.numeric(e, c.expr(c.input, e.Expr))
			c.points(e)
		})
		return bql.Double
	case *ast.FieldExpr:
		return view.Type(e.Name)
	case *ast.GroupOpExpr:
		c.aggregate(e, e.Op, func() {
			switch {
			case e.Op == "COUNT":
				if !e.Star {
					c.errorf(e, "COUNT function only supports COUNT(*).")
				}
			case e.Distinct:
				c.errorf(e, "%s function doesn't support DISTINCT.", e.Op)
			case len(e.Args) != 1:
				c.errorf(e, "%s function requires exactly one argument.", e.Op)
			default:
				c.numeric(e, c.expr(c.input, e.Args[0]))
			}
		})
		if e.Op == "COUNT" {
			return bql.Long
		}
		return bql.Double
	case *ast.IsNullExpr:
		c.expr(view, e.Expr)
		return bql.Boolean
	case *ast.ListExpr:
		return c.list(view, e)
	case *ast.LiteralExpr:
		if e.Type == "" {
			c.errorf(e, "The type of literal %s could not be determined.", e.Text)
			return bql.Unknown
		}
		typ, err := bql.ParseType(e.Type)
		if err != nil {
			panic(err)
		}
		return typ
	case *ast.NAryExpr:
		return c.cond(view, e)
	case *ast.ParenExpr:
		return c.expr(view, e.Expr)
	case *ast.SubFieldExpr:
		return c.subfield(view, e)
	case *ast.TopKExpr:
		c.aggregate(e, "TOP", func() {
			if e.Size <= 0 {
				c.errorf(e, "The k in %s must be positive.", display(e))
			}
			for _, arg := range e.Args {
				c.primitive(arg, "TOP")
			}
		})
		return bql.Long
	case *ast.UnaryExpr:
		t := c.expr(view, e.Operand)
		sig, ok := bql.Unary[e.Op]
		if !ok {
			panic(e.Op)
		}
		typ, ok := sig.Check(t, bql.Unknown)
		if !ok {
			c.errorf(e, "The type of the argument in %s must be %s. Type given: %s", display(e), sig.Operands, t)
			return bql.Unknown
		}
		return typ
	default:
		panic(e)
	}
}

// aggregate checks operands of the aggregate e when one may appear here.
func (c *checker) aggregate(e ast.Expr, op string, operands func()) {
	switch {
	case c.aggErr != "":
		c.error(e, errors.New(c.aggErr))
		return
	case c.inAgg:
		c.errorf(e, "Aggregates cannot be nested.")
		return
	case !isA[*ast.GroupOpExpr](e) && e != c.top:
		c.errorf(e, "%s cannot be used inside an expression.", op)
		return
	}
	c.inAgg = true
	operands()
	c.inAgg = false
}

func (c *checker) numeric(e ast.Expr, t bql.Type) {
	if !t.IsAbsent() && !t.IsNumeric() {
		c.errorf(e, "The type of the argument in %s must be numeric. Type given: %s", display(e), t)
	}
}

func (c *checker) primitive(arg ast.Expr, op string) {
	if t := c.expr(c.input, arg); t.IsContainer() {
		c.errorf(arg, "The argument %s of %s must be a primitive.", display(arg), op)
	}
}

// points checks the points a distribution is evaluated at.  Quantiles
// are fractions so their points lie in [0, 1].
func (c *checker) points(e *ast.DistributionExpr) {
	quantile := e.Op == "QUANTILE"
	switch e.Mode {
	case "LINEAR":
		if e.NumPoints <= 0 {
			c.errorf(e, "The number of points in %s must be positive.", display(e))
		}
	case "REGION":
		if e.RangeStart >= e.RangeEnd {
			c.errorf(e, "The start of the range in %s must be less than the end.", display(e))
		}
		if e.Increment <= 0 {
			c.errorf(e, "The increment in %s must be positive.", display(e))
		}
		if quantile && (e.RangeStart < 0 || e.RangeEnd > 1) {
			c.errorf(e, "The range in %s must be within [0, 1].", display(e))
		}
	case "MANUAL":
		for k, p := range e.Points {
			if k > 0 && p <= e.Points[k-1] {
				c.errorf(e, "The points in %s must be in increasing order.", display(e))
				return
			}
			if quantile && (p < 0 || p > 1) {
				c.errorf(e, "The points in %s must be within [0, 1].", display(e))
				return
			}
		}
	}
}

func (c *checker) list(view schema.Layered, e *ast.ListExpr) bql.Type {
	if len(e.Elems) == 0 {
		c.errorf(e, "Empty lists are currently not supported.")
		return bql.Unknown
	}
	elem := bql.Unknown
	ok := true
	for _, el := range e.Elems {
		t := c.expr(view, el)
		switch {
		case t.IsAbsent():
		case t.IsContainer():
			ok = false
		case elem == bql.Unknown:
			elem = t
		case elem.IsNumeric() && t.IsNumeric():
			elem = bql.Widen(elem, t)
		case elem != t:
			ok = false
		}
	}
	if !ok {
		c.errorf(e, "The list %s must consist of objects of a single primitive type.", display(e))
		return bql.Unknown
	}
	if elem == bql.Unknown {
		return bql.Unknown
	}
	return bql.ListOf(elem)
}

// cond checks IF(cond, then, else).
func (c *checker) cond(view schema.Layered, e *ast.NAryExpr) bql.Type {
	cond := c.expr(view, e.Operands[0])
	then := c.expr(view, e.Operands[1])
	els := c.expr(view, e.Operands[2])
	if !cond.IsAbsent() && cond != bql.Boolean {
		c.errorf(e, "IF requires a boolean condition. Type given: %s", cond)
	}
	switch {
	case then.IsAbsent():
		return els
	case els.IsAbsent(), then == els:
		return then
	case then.IsNumeric() && els.IsNumeric():
		return bql.Widen(then, els)
	}
	c.errorf(e, "The types of the branches in %s must match. Types given: %s, %s", display(e), then, els)
	return bql.Unknown
}

// subfield checks a list index or map key.  At most two levels are
// allowed and only the first may be an index.
func (c *checker) subfield(view schema.Layered, e *ast.SubFieldExpr) bql.Type {
	inner, nested := e.Expr.(*ast.SubFieldExpr)
	if nested && (e.Index != nil || isA[*ast.SubFieldExpr](inner.Expr)) {
		c.errorf(e, "The subfield %s is too deeply nested.", display(e))
		return bql.Unknown
	}
	base := c.expr(view, e.Expr)
	switch {
	case base.IsAbsent():
		return base
	case e.Index != nil && base.IsList(), e.Key != nil && base.IsMap():
		return base.Sub()
	}
	c.errorf(e, "The subfield %s is invalid since the field %s has type %s.", display(e), display(e.Expr), base)
	return bql.Unknown
}

func (c *checker) error(loc ast.Node, err error) {
	c.errs.error(loc, err)
}

func (c *checker) errorf(loc ast.Node, format string, args ...any) {
	c.errs.error(loc, fmt.Errorf(format, args...))
}

func display(e ast.Expr) string {
	return sfmt.ASTExpr(e)
}
