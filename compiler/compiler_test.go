package compiler_test

import (
	"strings"
	"testing"

	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/parser"
	"github.com/bullet-db/bql/compiler/srcfiles"
	"github.com/bullet-db/bql/config"
	"github.com/bullet-db/bql/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testSchema = schema.MustNew(
	schema.Field{Name: "abc", Type: bql.String},
	schema.Field{Name: "def", Type: bql.Long},
	schema.Field{Name: "m", Type: bql.MapOf(bql.String)},
	schema.Field{Name: "l", Type: bql.ListOf(bql.Long)},
)

func newCompiler(t *testing.T, settings config.Settings) *compiler.Compiler {
	t.Helper()
	c, err := compiler.New(settings, testSchema, nil, nil)
	require.NoError(t, err)
	return c
}

func TestCompile(t *testing.T) {
	c := newCompiler(t, config.DefaultSettings())
	res, err := c.Compile("select abc from stream() where def > 5 limit 3")
	require.NoError(t, err)
	assert.Equal(t, "SELECT abc FROM STREAM() WHERE def > 5 LIMIT 3", res.Text)
	assert.False(t, res.ID.IsNil())
	assert.Equal(t, ir.NoCopy, res.Query.Projection.Type)
	assert.IsType(t, &ir.Raw{}, res.Query.Aggregation)
}

func TestCompileFixedPoint(t *testing.T) {
	cases := []struct {
		name  string
		query string
		// bare decimals do not parse under REJECT
		bare bool
	}{
		{
			name:  "special k",
			query: "SELECT abc, COUNT(*) AS n FROM STREAM() GROUP BY abc ORDER BY n DESC LIMIT 5",
		},
		{
			name:  "suffixed literals",
			query: "SELECT def * 2.0d AS x, 1E3d, 3L, 4.5f, 'x', TRUE FROM STREAM() WHERE def > 1.5d LIMIT 5",
		},
		{
			name:  "bare decimals",
			query: "SELECT def * 2.50 AS x, 1e3, -0.5 FROM STREAM() WHERE def > 1.5",
			bare:  true,
		},
		{
			name:  "subfields",
			query: "SELECT m['k'] AS k, l[0] AS first FROM STREAM() WHERE l[1] > 2",
		},
		{
			name:  "distribution",
			query: "SELECT FREQ(def, REGION, 0, 10.5d, 0.5d) FROM STREAM() LIMIT 10",
		},
		{
			name:  "quantile",
			query: "SELECT QUANTILE(def, LINEAR, 11) FROM STREAM() LIMIT 5",
		},
		{
			name:  "record window",
			query: "SELECT abc FROM STREAM() WINDOWING EVERY(10, TIME, FIRST, 1, RECORD)",
		},
		{
			name:  "tumbling window",
			query: "SELECT COUNT(*) FROM STREAM() WINDOWING TUMBLING(5000, TIME)",
		},
		{
			name:  "lateral view",
			query: "SELECT e, abc FROM STREAM() LATERAL VIEW EXPLODE(l) AS e WHERE e > 1",
		},
	}
	for _, mode := range []parser.DecimalMode{parser.DecimalAsDouble, parser.DecimalAsDecimal, parser.DecimalReject} {
		settings := config.DefaultSettings()
		settings.DecimalLiteral = mode
		c := newCompiler(t, settings)
		for _, tc := range cases {
			if tc.bare && mode == parser.DecimalReject {
				continue
			}
			t.Run(string(mode)+"/"+tc.name, func(t *testing.T) {
				first, err := c.Compile(tc.query)
				require.NoError(t, err)
				second, err := c.Compile(first.Text)
				require.NoError(t, err)
				assert.Equal(t, first.Text, second.Text)
				assert.Equal(t, first.Query, second.Query)
			})
		}
	}
}

func TestEmptyQuery(t *testing.T) {
	c := newCompiler(t, config.DefaultSettings())
	for _, q := range []string{"", "   \n\t"} {
		_, err := c.Compile(q)
		var list srcfiles.ErrorList
		require.ErrorAs(t, err, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "empty query", list[0].Msg)
	}
}

func TestMaxQueryLength(t *testing.T) {
	settings := config.DefaultSettings()
	settings.MaxQueryLength = 20
	c := newCompiler(t, settings)
	_, err := c.Compile("SELECT * FROM STREAM() LIMIT 10")
	var list srcfiles.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Equal(t, "query is too long", list[0].Msg)
	assert.Equal(t, "The query has 31 characters but at most 20 are allowed.", list[0].Hint)
}

func TestParseErrorPosition(t *testing.T) {
	c := newCompiler(t, config.DefaultSettings())
	_, err := c.Compile("SELECT abc\nFROM STREAM() WHERE")
	var list srcfiles.ErrorList
	require.ErrorAs(t, err, &list)
	pos := list[0].Position()
	assert.Equal(t, 2, pos.Line)
}

func TestDecimalReject(t *testing.T) {
	settings := config.DefaultSettings()
	settings.DecimalLiteral = "REJECT"
	c := newCompiler(t, settings)
	_, err := c.Compile("SELECT abc FROM STREAM() WHERE def > 1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decimal literals are not allowed")
}

func TestNormalize(t *testing.T) {
	c := newCompiler(t, config.DefaultSettings())
	res, err := c.Compile("SELECT abc FROM STREAM() WHERE abc = 'café'")
	require.NoError(t, err)
	assert.True(t, strings.Contains(res.Text, "café"), res.Text)
}

func TestBadSettings(t *testing.T) {
	_, err := compiler.New(config.Settings{}, nil, nil, nil)
	assert.EqualError(t, err, "max_query_length must be positive: 0")
}

func TestLogsAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	c, err := compiler.New(config.DefaultSettings(), testSchema, zap.New(core), reg)
	require.NoError(t, err)
	_, err = c.Compile("SELECT abc FROM STREAM()")
	require.NoError(t, err)
	_, err = c.Compile("SELECT nope( FROM STREAM()")
	require.Error(t, err)
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "compiled", entries[0].Message)
	assert.Equal(t, "compile failed", entries[1].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	n, err := testutil.GatherAndCount(reg, "bql_compiles_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
