package sfmt

import (
	"strconv"
	"strings"

	"github.com/bullet-db/bql/compiler/ir"
)

// IR renders a Query IR as indented text, one fragment per line.
func IR(q *ir.Query) string {
	c := &canonIR{shared: shared{formatter: formatter{tab: 2}}}
	c.query(q)
	c.flush()
	return c.String()
}

func IRExpr(e ir.Expr) string {
	c := &canonIR{}
	c.expr(e, "", false)
	c.flush()
	return c.String()
}

type canonIR struct {
	shared
}

func (c *canonIR) query(q *ir.Query) {
	c.open("projection: %s", q.Projection.Type)
	c.fields(q.Projection.Fields)
	c.close()
	if q.Filter != nil {
		c.ret()
		c.write("filter: ")
		c.typed(q.Filter)
	}
	c.ret()
	c.aggregation(q.Aggregation)
	if len(q.PostAggregations) > 0 {
		c.ret()
		c.open("post_aggregations:")
		for _, p := range q.PostAggregations {
			c.ret()
			c.postAggregation(p)
		}
		c.close()
	}
	if w := q.Window; w.Emit != nil {
		c.ret()
		if w.Include == nil {
			c.write("window: TUMBLING %d %s", w.Emit.Every, w.Emit.Type)
		} else {
			c.write("window: EVERY %d %s INCLUDE %s", w.Emit.Every, w.Emit.Type, w.Include.Type)
			if w.Include.Type != ir.IncludeAll {
				c.write(" %d %s", w.Include.Count, w.Include.Unit)
			}
		}
	}
	c.ret()
	if q.Duration == ir.MaxDuration {
		c.write("duration: MAX")
	} else {
		c.write("duration: %d", q.Duration)
	}
	if tf := q.TableFunction; tf != nil {
		c.ret()
		c.write("table_function: ")
		if tf.Outer {
			c.write("OUTER ")
		}
		c.write("EXPLODE(")
		c.expr(tf.Value, "", false)
		c.write(") AS " + strings.Join(tf.Aliases, ", "))
	}
}

func (c *canonIR) fields(fields []ir.Field) {
	for _, f := range fields {
		c.ret()
		c.write(f.Name + " := ")
		c.typed(f.Value)
	}
}

func (c *canonIR) typed(e ir.Expr) {
	c.expr(e, "", false)
	c.write(" :: %s", e.ResultType())
}

func (c *canonIR) aggregation(a ir.Aggregation) {
	switch a := a.(type) {
	case nil:
		c.write("aggregation: none")
	case *ir.Raw:
		c.write("aggregation: RAW")
		c.size(a.Size)
	case *ir.Group:
		c.open("aggregation: GROUP")
		c.size(a.Size)
		c.groupFields(a.Fields)
		for _, op := range a.Operations {
			c.ret()
			field := op.Field
			if op.Type == ir.OpCount {
				field = "*"
			}
			c.write("%s(%s) AS %s", op.Type, field, op.Name)
		}
		c.close()
	case *ir.CountDistinct:
		c.write("aggregation: COUNT_DISTINCT %s AS %s", strings.Join(a.Fields, ", "), a.Name)
	case *ir.Distribution:
		c.write("aggregation: DISTRIBUTION %s(%s)", a.DistributionType, a.Field)
		switch {
		case a.NumberOfPoints != nil:
			c.write(" LINEAR %d", *a.NumberOfPoints)
		case a.Start != nil:
			c.write(" REGION %s, %s, %s", float(*a.Start), float(*a.End), float(*a.Increment))
		default:
			points := make([]string, 0, len(a.Points))
			for _, p := range a.Points {
				points = append(points, float(p))
			}
			c.write(" MANUAL " + strings.Join(points, ", "))
		}
		c.size(a.Size)
	case *ir.TopK:
		c.open("aggregation: TOP_K %d", a.Size)
		if a.Threshold != nil {
			c.write(" threshold=%d", *a.Threshold)
		}
		c.write(" AS " + a.Name)
		c.groupFields(a.Fields)
		c.close()
	default:
		panic(a)
	}
}

func (c *canonIR) size(size *int64) {
	if size != nil {
		c.write(" size=%d", *size)
	}
}

func (c *canonIR) groupFields(fields []ir.GroupField) {
	for _, f := range fields {
		c.ret()
		c.write("field %s AS %s", f.Field, f.Name)
	}
}

func (c *canonIR) postAggregation(p ir.PostAggregation) {
	switch p := p.(type) {
	case *ir.Computation:
		c.open("COMPUTATION")
		c.fields(p.Fields)
		c.close()
	case *ir.OrderBy:
		var keys []string
		for _, f := range p.Fields {
			keys = append(keys, f.Field+" "+f.Direction)
		}
		c.write("ORDER BY " + strings.Join(keys, ", "))
	case *ir.Culling:
		c.write("CULLING " + strings.Join(p.TransientFields, ", "))
	default:
		panic(p)
	}
}

func (c *canonIR) exprs(exprs []ir.Expr) {
	for k, e := range exprs {
		if k > 0 {
			c.write(", ")
		}
		c.expr(e, "", false)
	}
}

// expr writes e as an operand of the operator parent, adding the
// parentheses that the IR leaves implicit.
func (c *canonIR) expr(e ir.Expr, parent string, right bool) {
	switch e := e.(type) {
	case *ir.BinaryExpr:
		if binaryFuncs[e.Op] {
			c.write(e.Op + "(")
			c.expr(e.Left, "", false)
			c.write(", ")
			c.expr(e.Right, "", false)
			c.write(")")
			return
		}
		parens := needsparens(parent, e.Op, right)
		c.maybewrite("(", parens)
		c.expr(e.Left, e.Op, false)
		c.write(" %s ", e.Op)
		c.expr(e.Right, e.Op, true)
		c.maybewrite(")", parens)
	case *ir.CastExpr:
		c.write("CAST(")
		c.expr(e.Value, "", false)
		c.write(" AS %s)", e.CastType)
	case *ir.FieldExpr:
		c.write(e.Field)
		if e.Index != nil {
			c.write("[" + strconv.Itoa(*e.Index) + "]")
		}
		if e.Key != nil {
			c.write("." + *e.Key)
		}
		if e.SubKey != nil {
			c.write("." + *e.SubKey)
		}
	case *ir.ListExpr:
		c.write("[")
		c.exprs(e.Values)
		c.write("]")
	case *ir.NAryExpr:
		switch e.Op {
		case "BETWEEN", "NOT BETWEEN":
			parens := needsparens(parent, e.Op, right)
			c.maybewrite("(", parens)
			c.expr(e.Operands[0], e.Op, false)
			c.write(" %s ", e.Op)
			c.expr(e.Operands[1], e.Op, true)
			c.write(" AND ")
			c.expr(e.Operands[2], e.Op, true)
			c.maybewrite(")", parens)
		default:
			c.write(e.Op + "(")
			c.exprs(e.Operands)
			c.write(")")
		}
	case *ir.UnaryExpr:
		switch e.Op {
		case "IS NULL", "IS NOT NULL":
			parens := needsparens(parent, e.Op, right)
			c.maybewrite("(", parens)
			c.expr(e.Operand, e.Op, true)
			c.write(" " + e.Op)
			c.maybewrite(")", parens)
		case "NOT":
			parens := needsparens(parent, e.Op, right)
			c.maybewrite("(", parens)
			c.write("NOT ")
			c.expr(e.Operand, e.Op, true)
			c.maybewrite(")", parens)
		case "-":
			c.write("-")
			c.expr(e.Operand, "NEG", true)
		default:
			c.write(e.Op + "(")
			c.expr(e.Operand, "", false)
			c.write(")")
		}
	case *ir.ValueExpr:
		c.literal(e.Type, e.Value)
	default:
		panic(e)
	}
}
