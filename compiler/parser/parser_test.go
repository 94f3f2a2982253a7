package parser_test

import (
	"testing"

	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/parser"
	"github.com/bullet-db/bql/compiler/srcfiles"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var queries = []string{
	"SELECT * FROM STREAM()",
	"select abc from stream() limit 10",
	"SELECT abc AS def, b.c, m['k'], l[2] FROM STREAM(MAX, TIME) WHERE abc > 5 AND NOT b.c",
	"SELECT COUNT(*), SUM(a) AS s FROM STREAM(30000, TIME) GROUP BY b, c HAVING COUNT(*) >= 3 ORDER BY COUNT(*) DESC LIMIT 5",
	"SELECT COUNT(DISTINCT a, b) FROM STREAM()",
	"SELECT QUANTILE(a, LINEAR, 11) FROM STREAM()",
	"SELECT FREQ(a, REGION, -10, 10.5, 0.5) FROM STREAM()",
	"SELECT CUMFREQ(a, MANUAL, 1, 2, 3) FROM STREAM()",
	"SELECT TOP(3, 3, aaa, bbb) FROM STREAM()",
	`SELECT "my field" AS "x y" FROM STREAM() WINDOWING EVERY(5000, TIME, FIRST, 1, RECORD)`,
	"SELECT a FROM STREAM() WINDOWING TUMBLING(10, RECORD);",
	"SELECT a, b FROM STREAM() LATERAL VIEW OUTER EXPLODE(m) AS (k, v) WHERE a IN [1, 2, 3]",
	"SELECT CAST(a AS DOUBLE), IF(b IS NOT NULL, 1L, 2.5f), SIZEOF(l), SIZEIS(l, 3) FROM STREAM()",
	"SELECT a FROM STREAM() WHERE b NOT BETWEEN 1 AND 10 OR c NOT RLIKE 'x.*' XOR d NOT IN ['a']",
	"SELECT -a + 1 * (b - -2) % 3 FROM STREAM() -- trailing comment",
}

func TestParseRoundTrip(t *testing.T) {
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			parsed, err := parser.ParseQuery(q)
			require.NoError(t, err)
			b, err := json.Marshal(parsed.Parsed())
			require.NoError(t, err)
			out, err := ast.UnmarshalQuery(b)
			require.NoError(t, err)
			assert.Equal(t, parsed.Parsed(), out)
			assert.Equal(t, parsed.Parsed(), parsed.Copy())
		})
	}
}

func parse(t *testing.T, q string) *ast.Query {
	t.Helper()
	parsed, err := parser.ParseQuery(q)
	require.NoError(t, err)
	return parsed.Parsed()
}

func TestPrecedence(t *testing.T) {
	q := parse(t, "SELECT a FROM STREAM() WHERE a OR b AND c = 1 + 2 * 3")
	or, ok := q.Where.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "OR", or.Op)
	and := or.RHS.(*ast.BinaryExpr)
	assert.Equal(t, "AND", and.Op)
	eq := and.RHS.(*ast.BinaryExpr)
	assert.Equal(t, "=", eq.Op)
	plus := eq.RHS.(*ast.BinaryExpr)
	assert.Equal(t, "+", plus.Op)
	assert.Equal(t, "*", plus.RHS.(*ast.BinaryExpr).Op)

	q = parse(t, "SELECT a - b - c FROM STREAM()")
	minus := q.Select.Items[0].Expr.(*ast.BinaryExpr)
	assert.Equal(t, "-", minus.Op)
	assert.IsType(t, &ast.FieldExpr{}, minus.RHS)
	assert.IsType(t, &ast.BinaryExpr{}, minus.LHS)
}

func TestPredicates(t *testing.T) {
	q := parse(t, "SELECT a FROM STREAM() WHERE a <> 1 AND b NOT IN [1] AND c NOT RLIKE 'x' AND d IS NOT NULL")
	var ops []string
	ast.Walk(q.Where, func(e ast.Expr) bool {
		switch e := e.(type) {
		case *ast.BinaryExpr:
			ops = append(ops, e.Op)
		case *ast.UnaryExpr:
			ops = append(ops, "unary "+e.Op)
		case *ast.IsNullExpr:
			assert.True(t, e.Not)
			ops = append(ops, "IS NULL")
		}
		return true
	})
	assert.Equal(t, []string{"AND", "AND", "AND", "!=", "NOT IN", "unary NOT", "RLIKE", "IS NULL"}, ops)
}

func TestOccurrencesAreUnique(t *testing.T) {
	q := parse(t, "SELECT a + 1, a + 1 FROM STREAM() ORDER BY a + 1")
	seen := map[int]bool{}
	exprs := append(q.SelectExprs(), q.OrderBy.Items[0].Expr)
	for _, e := range exprs {
		ast.Walk(e, func(e ast.Expr) bool {
			assert.False(t, seen[e.Occ()], "duplicate occurrence %d", e.Occ())
			seen[e.Occ()] = true
			return true
		})
	}
	assert.Len(t, seen, 9)
}

func TestLiterals(t *testing.T) {
	q := parse(t, "SELECT 1, 3000000000, 1L, 1.5, 1.5f, 2D, 'it\\'s', TRUE, NULL, -7, 99999999999999999999 FROM STREAM()")
	var got [][2]string
	for _, e := range q.SelectExprs() {
		lit := e.(*ast.LiteralExpr)
		got = append(got, [2]string{lit.Type, lit.Text})
	}
	expected := [][2]string{
		{ast.LiteralInteger, "1"},
		{ast.LiteralLong, "3000000000"},
		{ast.LiteralLong, "1"},
		{ast.LiteralDouble, "1.5"},
		{ast.LiteralFloat, "1.5"},
		{ast.LiteralDouble, "2"},
		{ast.LiteralString, "it's"},
		{ast.LiteralBoolean, "TRUE"},
		{ast.LiteralNull, "NULL"},
		{ast.LiteralInteger, "-7"},
		{"", "99999999999999999999"},
	}
	assert.Equal(t, expected, got)
}

func TestDecimalModes(t *testing.T) {
	const q = "SELECT 1.50 FROM STREAM()"
	parsed, err := parser.ParseQueryWithDecimals(q, parser.DecimalAsDecimal)
	require.NoError(t, err)
	lit := parsed.Parsed().Select.Items[0].Expr.(*ast.LiteralExpr)
	assert.Equal(t, ast.LiteralDouble, lit.Type)
	assert.Equal(t, "1.5", lit.Text)

	_, err = parser.ParseQueryWithDecimals(q, parser.DecimalReject)
	require.Error(t, err)
	assert.Equal(t, "decimal literals are not allowed at line 1, column 8:\n"+
		"SELECT 1.50 FROM STREAM()\n"+
		"   === ^ ===\n"+
		"Use an explicit type suffix such as 1.5d or 1.5f.", err.Error())

	_, err = parser.ParseQueryWithDecimals("SELECT 1.5f FROM STREAM()", parser.DecimalReject)
	assert.NoError(t, err)
	assert.False(t, parser.DecimalMode("EXACT").Valid())
}

func TestUnknownFunctionHint(t *testing.T) {
	_, err := parser.ParseQuery("SELECT SIZOF(a) FROM STREAM()")
	require.Error(t, err)
	list, ok := err.(srcfiles.ErrorList)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "unknown function SIZOF", list[0].Msg)
	assert.Equal(t, "did you mean SIZEOF?", list[0].Hint)
	assert.Equal(t, 7, list[0].Pos)

	_, err = parser.ParseQuery("SELECT BLAHBLAH(a) FROM STREAM()")
	require.Error(t, err)
	assert.Empty(t, err.(srcfiles.ErrorList)[0].Hint)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		query string
		msg   string
		pos   int
	}{
		{"SELECT a FROM", "parse error: expected STREAM, found end of query", 13},
		{"SELECT a FROM STREAM() WHERE", "parse error: expected expression, found end of query", 28},
		{"SELECT a FROM STREAM(10, DAYS)", "parse error: expected TIME or RECORD, found DAYS", 25},
		{"SELECT 'abc FROM STREAM()", "parse error: unterminated string literal", 7},
		{"SELECT a FROM STREAM() LIMIT 5 5", "parse error: expected end of query, found 5", 31},
		{"SELECT a # b FROM STREAM()", "parse error: unexpected character #", 9},
		{"SELECT ABS(a, b) FROM STREAM()", "parse error: ABS takes 1 arguments but 2 were given", 7},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			_, err := parser.ParseQuery(c.query)
			require.Error(t, err)
			list := err.(srcfiles.ErrorList)
			require.Len(t, list, 1)
			assert.Equal(t, c.msg, list[0].Msg)
			assert.Equal(t, c.pos, list[0].Pos)
		})
	}
}

func TestEmptyGroupBy(t *testing.T) {
	q := parse(t, "SELECT COUNT(*) FROM STREAM() GROUP BY ()")
	require.NotNil(t, q.GroupBy)
	assert.Empty(t, q.GroupBy.Exprs)
	assert.False(t, q.HasGroupBy())
}

func TestSubfieldKeywordKey(t *testing.T) {
	q := parse(t, "SELECT m.desc FROM STREAM()")
	sub := q.Select.Items[0].Expr.(*ast.SubFieldExpr)
	require.NotNil(t, sub.Key)
	assert.Equal(t, "desc", *sub.Key)
	assert.True(t, sub.Dot)
}
