package sfmt_test

import (
	"testing"

	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/parser"
	"github.com/bullet-db/bql/compiler/sfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalQuery(t *testing.T) {
	cases := []struct{ in, out string }{
		{"select * from stream()", "SELECT * FROM STREAM()"},
		{"SELECT abc def FROM STREAM(MAX,time) LIMIT 10", "SELECT abc AS def FROM STREAM(MAX, TIME) LIMIT 10"},
		{
			"SELECT a.b, m['k'], l[0], 1, 2L, 3.5, 4.5f, 5d, 'x', null, true FROM STREAM(2000, TIME)",
			"SELECT a.b, m['k'], l[0], 1, 2L, 3.5d, 4.5f, 5d, 'x', NULL, TRUE FROM STREAM(2000, TIME)",
		},
		{
			"SELECT COUNT(*), sum(DISTINCT a), COUNT(DISTINCT b, c) FROM STREAM() GROUP BY ()",
			"SELECT COUNT(*), SUM(DISTINCT a), COUNT(DISTINCT b, c) FROM STREAM() GROUP BY ()",
		},
		{
			"SELECT quantile(a, linear, 11), FREQ(a, REGION, 0, 10.5, 0.5), CUMFREQ(a, MANUAL, -1, 2) FROM STREAM()",
			"SELECT QUANTILE(a, LINEAR, 11), FREQ(a, REGION, 0, 10.5, 0.5), CUMFREQ(a, MANUAL, -1, 2) FROM STREAM()",
		},
		{"SELECT top(3,2,a,b) FROM STREAM()", "SELECT TOP(3, 2, a, b) FROM STREAM()"},
		{"SELECT 2.0d, 2.50, 1e3, 1E3d, -0.5 FROM STREAM()", "SELECT 2d, 2.5d, 1000d, 1000d, -0.5d FROM STREAM()"},
		{
			"SELECT a FROM STREAM() WHERE NOT (a <> 1) and b not between 1 and 2 or c is not null",
			"SELECT a FROM STREAM() WHERE NOT (a != 1) AND b NOT BETWEEN 1 AND 2 OR c IS NOT NULL",
		},
		{
			"SELECT sizeof(l), sizeis(l, 2), cast(a as long), if(a, 1, 2), - a, - 5, -5 FROM STREAM()",
			"SELECT SIZEOF(l), SIZEIS(l, 2), CAST(a AS LONG), IF(a, 1, 2), -a, - 5, -5 FROM STREAM()",
		},
		{
			`SELECT "a b" AS "c d" FROM STREAM() LATERAL VIEW OUTER EXPLODE(m) AS (k, v) WHERE k IN ['x', 'y']`,
			`SELECT "a b" AS "c d" FROM STREAM() LATERAL VIEW OUTER EXPLODE(m) AS (k, v) WHERE k IN ['x', 'y']`,
		},
		{
			"SELECT a, COUNT(*) FROM STREAM() GROUP BY a HAVING COUNT(*) >= 3 ORDER BY COUNT(*) DESC, a asc WINDOWING EVERY(10, TIME, FIRST, 1, RECORD) LIMIT 5",
			"SELECT a, COUNT(*) FROM STREAM() GROUP BY a HAVING COUNT(*) >= 3 ORDER BY COUNT(*) DESC, a WINDOWING EVERY(10, TIME, FIRST, 1, RECORD) LIMIT 5",
		},
		{"SELECT a FROM STREAM() WINDOWING tumbling(5, record)", "SELECT a FROM STREAM() WINDOWING TUMBLING(5, RECORD)"},
		{"SELECT a FROM STREAM() WINDOWING EVERY(5, TIME, ALL)", "SELECT a FROM STREAM() WINDOWING EVERY(5, TIME, ALL)"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			parsed, err := parser.ParseQuery(c.in)
			require.NoError(t, err)
			out := sfmt.AST(parsed.Parsed())
			assert.Equal(t, c.out, out)
			// Formatting is a fixed point.
			again, err := parser.ParseQuery(out)
			require.NoError(t, err)
			assert.Equal(t, out, sfmt.AST(again.Parsed()))
		})
	}
}

func TestRawAndQuotedExpr(t *testing.T) {
	parsed, err := parser.ParseQuery(`SELECT CONTAINSVALUE("my map", 'it\'s') FROM STREAM()`)
	require.NoError(t, err)
	e := parsed.Parsed().Select.Items[0].Expr
	assert.Equal(t, `CONTAINSVALUE(my map, 'it's')`, sfmt.RawExpr(e))
	assert.Equal(t, `CONTAINSVALUE("my map", 'it\'s')`, sfmt.ASTExpr(e))
}

func TestIRExprParens(t *testing.T) {
	a := ir.NewField("a", bql.Long)
	b := ir.NewField("b", bql.Long)
	c := ir.NewField("c", bql.Long)
	bin := func(op string, l, r ir.Expr) ir.Expr {
		return &ir.BinaryExpr{Kind: "BinaryExpr", Op: op, Left: l, Right: r, Type: bql.Long}
	}
	assert.Equal(t, "(a + b) * c", sfmt.IRExpr(bin("*", bin("+", a, b), c)))
	assert.Equal(t, "a * b + c", sfmt.IRExpr(bin("+", bin("*", a, b), c)))
	assert.Equal(t, "a - (b - c)", sfmt.IRExpr(bin("-", a, bin("-", b, c))))
	assert.Equal(t, "a - b - c", sfmt.IRExpr(bin("-", bin("-", a, b), c)))
	not := &ir.UnaryExpr{Kind: "UnaryExpr", Op: "NOT", Operand: bin("AND", a, b), Type: bql.Boolean}
	assert.Equal(t, "NOT (a AND b)", sfmt.IRExpr(not))
	neg := &ir.UnaryExpr{Kind: "UnaryExpr", Op: "-", Operand: bin("+", a, b), Type: bql.Long}
	assert.Equal(t, "-(a + b)", sfmt.IRExpr(neg))
	idx := 1
	key := "k"
	assert.Equal(t, "l[1].k", sfmt.IRExpr(&ir.FieldExpr{Kind: "FieldExpr", Field: "l", Index: &idx, SubKey: &key}))
	assert.Equal(t, "SIZEIS(a, 2d)", sfmt.IRExpr(&ir.BinaryExpr{
		Kind:  "BinaryExpr",
		Op:    "SIZEIS",
		Left:  a,
		Right: &ir.ValueExpr{Kind: "ValueExpr", Value: "2", Type: bql.Double},
	}))
}

func TestIR(t *testing.T) {
	size := int64(10)
	q := &ir.Query{
		Projection: ir.Projection{
			Type: ir.NoCopy,
			Fields: []ir.Field{
				{Name: "abc", Value: ir.NewField("abc", bql.String)},
				{Name: "def", Value: ir.NewField("def", bql.Long)},
			},
		},
		Filter: &ir.BinaryExpr{
			Kind:  "BinaryExpr",
			Op:    ">",
			Left:  ir.NewField("def", bql.Long),
			Right: &ir.ValueExpr{Kind: "ValueExpr", Value: "5", Type: bql.Long},
			Type:  bql.Boolean,
		},
		Aggregation: &ir.Raw{Kind: "Raw", Size: &size},
		PostAggregations: []ir.PostAggregation{
			&ir.OrderBy{Kind: "OrderBy", Fields: []ir.SortField{{Field: "def", Direction: ir.Asc}}},
			&ir.Culling{Kind: "Culling", TransientFields: []string{"def"}},
		},
		Window: ir.Window{
			Emit:    &ir.Emit{Type: ir.UnitRecord, Every: 1},
			Include: &ir.Include{Type: ir.IncludeAll},
		},
		Duration: 30000,
	}
	expected := `projection: NO_COPY
  abc := abc :: STRING
  def := def :: LONG
filter: def > 5L :: BOOLEAN
aggregation: RAW size=10
post_aggregations:
  ORDER BY def ASC
  CULLING def
window: EVERY 1 RECORD INCLUDE ALL
duration: 30000`
	assert.Equal(t, expected, sfmt.IR(q))
}

func TestIRGroup(t *testing.T) {
	q := &ir.Query{
		Projection: ir.Projection{Type: ir.PassThrough},
		Aggregation: &ir.Group{
			Kind:   "Group",
			Fields: []ir.GroupField{{Field: "a", Name: "x"}},
			Operations: []ir.GroupOperation{
				{Type: ir.OpCount, Name: "COUNT(*)"},
				{Type: ir.OpSum, Field: "b", Name: "s"},
			},
		},
		PostAggregations: []ir.PostAggregation{
			&ir.Computation{Kind: "Computation", Fields: []ir.Field{{
				Name: "s + 1",
				Value: &ir.BinaryExpr{
					Kind:  "BinaryExpr",
					Op:    "+",
					Left:  ir.NewField("s", bql.Double),
					Right: &ir.ValueExpr{Kind: "ValueExpr", Value: "1", Type: bql.Integer},
					Type:  bql.Double,
				},
			}}},
		},
		Duration: ir.MaxDuration,
	}
	expected := `projection: PASS_THROUGH
aggregation: GROUP
  field a AS x
  COUNT(*) AS COUNT(*)
  SUM(b) AS s
post_aggregations:
  COMPUTATION
    s + 1 := s + 1 :: DOUBLE
duration: MAX`
	assert.Equal(t, expected, sfmt.IR(q))
}
