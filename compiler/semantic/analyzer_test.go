package semantic_test

import (
	"testing"

	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/parser"
	"github.com/bullet-db/bql/compiler/semantic"
	"github.com/bullet-db/bql/compiler/sfmt"
	"github.com/bullet-db/bql/compiler/srcfiles"
	"github.com/bullet-db/bql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = schema.MustNew(
	schema.Field{Name: "abc", Type: bql.String},
	schema.Field{Name: "def", Type: bql.Long},
	schema.Field{Name: "ghi", Type: bql.Double},
	schema.Field{Name: "m", Type: bql.MapOf(bql.String)},
	schema.Field{Name: "l", Type: bql.ListOf(bql.Long)},
)

func analyze(t *testing.T, query string) (*ir.Query, error) {
	t.Helper()
	p, err := parser.ParseQuery(query)
	require.NoError(t, err)
	return semantic.Analyze(p, testSchema)
}

func messages(t *testing.T, err error) []string {
	t.Helper()
	var list srcfiles.ErrorList
	require.ErrorAs(t, err, &list)
	var msgs []string
	for _, e := range list {
		msgs = append(msgs, e.Msg)
	}
	return msgs
}

func TestAnalyze(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:  "select all",
			query: "SELECT * FROM STREAM()",
			expected: `projection: PASS_THROUGH
aggregation: RAW
duration: MAX`,
		},
		{
			name:  "select all with limit",
			query: "SELECT * FROM STREAM() LIMIT 10",
			expected: `projection: PASS_THROUGH
aggregation: RAW size=10
duration: MAX`,
		},
		{
			name:  "unselected order by key",
			query: "SELECT abc FROM STREAM(30000, TIME) WHERE def > 5 ORDER BY def LIMIT 10",
			expected: `projection: NO_COPY
  abc := abc :: STRING
  def := def :: LONG
filter: def > 5 :: BOOLEAN
aggregation: RAW size=10
post_aggregations:
  ORDER BY def ASC
  CULLING def
duration: 30000`,
		},
		{
			name:  "alias lookup is not transitive",
			query: "SELECT abc AS def, def AS abc FROM STREAM() ORDER BY abc",
			expected: `projection: NO_COPY
  def := abc :: STRING
  abc := def :: LONG
aggregation: RAW
post_aggregations:
  ORDER BY abc ASC
duration: MAX`,
		},
		{
			name:  "group",
			query: "SELECT abc, COUNT(*) AS n, AVG(def) + 1 AS x FROM STREAM() GROUP BY abc, def",
			expected: `projection: PASS_THROUGH
aggregation: GROUP
  field abc AS abc
  field def AS def
  COUNT(*) AS n
  AVG(def) AS AVG(def)
post_aggregations:
  COMPUTATION
    x := AVG(def) + 1 :: DOUBLE
  CULLING def, AVG(def)
duration: MAX`,
		},
		{
			name:  "select distinct",
			query: "SELECT DISTINCT abc, def + 1 AS x FROM STREAM()",
			expected: `projection: COPY
  def + 1 := def + 1 :: LONG
aggregation: GROUP
  field abc AS abc
  field def + 1 AS x
duration: MAX`,
		},
		{
			name:  "special k",
			query: "SELECT abc, def, COUNT(*) AS cnt FROM STREAM() GROUP BY abc, def HAVING COUNT(*) >= 3 ORDER BY COUNT(*) DESC LIMIT 10",
			expected: `projection: PASS_THROUGH
aggregation: TOP_K 10 threshold=3 AS cnt
  field abc AS abc
  field def AS def
duration: MAX`,
		},
		{
			name:  "count distinct",
			query: "SELECT COUNT(DISTINCT abc, def) AS n FROM STREAM()",
			expected: `projection: PASS_THROUGH
aggregation: COUNT_DISTINCT abc, def AS n
duration: MAX`,
		},
		{
			name:  "distribution",
			query: "SELECT QUANTILE(def, LINEAR, 11) FROM STREAM() LIMIT 5",
			expected: `projection: PASS_THROUGH
aggregation: DISTRIBUTION QUANTILE(def) LINEAR 11 size=5
duration: MAX`,
		},
		{
			name:  "lateral view",
			query: "SELECT e FROM STREAM() LATERAL VIEW EXPLODE(l) AS e",
			expected: `projection: NO_COPY
  e := e :: LONG
aggregation: RAW
duration: MAX
table_function: EXPLODE(l) AS e`,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := analyze(t, c.query)
			require.NoError(t, err)
			assert.Equal(t, c.expected, sfmt.IR(q))
		})
	}
}

func TestEmptyGroupBy(t *testing.T) {
	q1, err := analyze(t, "SELECT COUNT(*) FROM STREAM() GROUP BY ()")
	require.NoError(t, err)
	q2, err := analyze(t, "SELECT COUNT(*) FROM STREAM()")
	require.NoError(t, err)
	assert.Equal(t, q2, q1)
}

func TestPostAggregationOrder(t *testing.T) {
	q, err := analyze(t, "SELECT TOP(10, abc) AS t, abc + 'x' AS y FROM STREAM() ORDER BY t + 1 DESC")
	require.NoError(t, err)
	require.Len(t, q.PostAggregations, 3)
	assert.IsType(t, &ir.Computation{}, q.PostAggregations[0])
	assert.IsType(t, &ir.OrderBy{}, q.PostAggregations[1])
	assert.IsType(t, &ir.Culling{}, q.PostAggregations[2])
	assert.Equal(t, []string{"y", "t + 1"}, ir.FieldNames(q.PostAggregations[0].(*ir.Computation).Fields))
	assert.Equal(t, []string{"t + 1"}, q.PostAggregations[2].(*ir.Culling).TransientFields)
}

func TestAnalyzeErrors(t *testing.T) {
	cases := []struct {
		query    string
		expected []string
	}{
		{
			"SELECT TOP(10, abc) FROM STREAM() LIMIT 5",
			[]string{"LIMIT must be same as the k of TopK aggregation."},
		},
		{
			"SELECT MIN(DISTINCT def) FROM STREAM()",
			[]string{"MIN function doesn't support DISTINCT."},
		},
		{
			"SELECT *, abc FROM STREAM()",
			[]string{"SELECT * cannot run with other non-computation selectItems"},
		},
		{
			"SELECT abc FROM STREAM() HAVING COUNT(*) >= 1",
			[]string{"HAVING is only supported for TOP K"},
		},
		{
			"SELECT COUNT(DISTINCT abc) FROM STREAM() GROUP BY abc",
			[]string{"NonGroup aggregation cannot be followed by GROUP BY"},
		},
		{
			"SELECT abc FROM STREAM() GROUP BY abc ORDER BY COUNT(*) DESC LIMIT 5",
			[]string{"Only order by fields supported"},
		},
		{
			"SELECT abc AS x, def AS x FROM STREAM()",
			[]string{"The name x is given to more than one select item."},
		},
		{
			"SELECT COUNT(*) AS abc FROM STREAM() GROUP BY abc",
			[]string{"The GROUP BY field abc has the same name as a select item."},
		},
		{
			"SELECT DISTINCT abc FROM STREAM() ORDER BY def",
			[]string{"ORDER BY contains a non-existent field: def"},
		},
		{
			"SELECT TOP(10, abc) FROM STREAM() ORDER BY def",
			[]string{"ORDER BY contains a non-existent field: def"},
		},
		{
			"SELECT abc, def FROM STREAM() GROUP BY abc",
			[]string{"def is not an aggregate or group by expression."},
		},
		{
			"SELECT COUNT(*) FROM STREAM() WINDOWING TUMBLING(10, RECORD)",
			[]string{"RECORD windows are only supported for RAW queries."},
		},
		{
			"SELECT abc FROM STREAM(10, RECORD)",
			[]string{"STREAM duration in RECORD is not supported yet."},
		},
		{
			"SELECT abc + 1, CAST(m AS LONG) FROM STREAM() WHERE def",
			[]string{
				"WHERE clause must evaluate to a boolean. Type given: LONG",
				"The left and right operands in abc + 1 must be numeric or STRING. Types given: STRING, INTEGER",
				"Cannot cast m from STRING_MAP to LONG.",
			},
		},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			_, err := analyze(t, c.query)
			assert.Equal(t, c.expected, messages(t, err))
		})
	}
}

func TestSecondNames(t *testing.T) {
	computed := func(t *testing.T, q *ir.Query) map[string]string {
		t.Helper()
		require.NotEmpty(t, q.PostAggregations)
		comp, ok := q.PostAggregations[0].(*ir.Computation)
		require.True(t, ok)
		out := make(map[string]string)
		for _, f := range comp.Fields {
			out[f.Name] = sfmt.IRExpr(f.Value)
		}
		return out
	}

	q, err := analyze(t, "SELECT abc, abc AS y, COUNT(*) FROM STREAM() GROUP BY abc")
	require.NoError(t, err)
	group := q.Aggregation.(*ir.Group)
	assert.Equal(t, []ir.GroupField{{Field: "abc", Name: "abc"}}, group.Fields)
	assert.Equal(t, map[string]string{"y": "abc"}, computed(t, q))

	q, err = analyze(t, "SELECT COUNT(*), COUNT(*) AS n FROM STREAM()")
	require.NoError(t, err)
	assert.Len(t, q.Aggregation.(*ir.Group).Operations, 1)
	assert.Equal(t, map[string]string{"n": "COUNT(*)"}, computed(t, q))

	q, err = analyze(t, "SELECT abc, abc AS y, COUNT(*) FROM STREAM() GROUP BY abc ORDER BY COUNT(*) DESC LIMIT 5")
	require.NoError(t, err)
	top := q.Aggregation.(*ir.TopK)
	assert.Equal(t, []ir.GroupField{{Field: "abc", Name: "abc"}}, top.Fields)
	assert.Equal(t, map[string]string{"y": "abc"}, computed(t, q))

	q, err = analyze(t, "SELECT abc, abc FROM STREAM()")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, ir.FieldNames(q.Projection.Fields))
}

func TestUnknownSchema(t *testing.T) {
	p, err := parser.ParseQuery("SELECT abc FROM STREAM() WHERE abc > 1")
	require.NoError(t, err)
	q, err := semantic.Analyze(p, nil)
	require.NoError(t, err)
	assert.Equal(t, bql.Unknown, q.Projection.Fields[0].Value.ResultType())
}
