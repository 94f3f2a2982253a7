package semantic

import (
	"testing"

	"github.com/bullet-db/bql/compiler/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		query    string
		typ      QueryType
		specialK bool
	}{
		{"SELECT * FROM STREAM()", SelectAll, false},
		{"SELECT *, abc + 1 FROM STREAM()", SelectAll, false},
		{"SELECT abc, def FROM STREAM()", Select, false},
		{"SELECT DISTINCT abc FROM STREAM()", SelectDistinct, false},
		{"SELECT COUNT(*) FROM STREAM()", Group, false},
		{"SELECT abc FROM STREAM() GROUP BY abc", Group, false},
		{"SELECT SUM(def) / COUNT(*) FROM STREAM()", Group, false},
		{"SELECT COUNT(DISTINCT abc) FROM STREAM()", CountDistinct, false},
		{"SELECT FREQ(def, MANUAL, 1, 2) FROM STREAM()", Distribution, false},
		{"SELECT TOP(5, abc), 1 + 2 FROM STREAM()", TopK, false},
		{"SELECT abc, COUNT(*) FROM STREAM() GROUP BY abc ORDER BY COUNT(*) DESC LIMIT 3", TopK, true},
		{"SELECT abc, COUNT(*) AS c FROM STREAM() GROUP BY abc ORDER BY c DESC LIMIT 3", TopK, true},
		// Not special K: ascending, no limit, an extra aggregate or no COUNT(*).
		{"SELECT abc, COUNT(*) AS c FROM STREAM() GROUP BY abc ORDER BY c LIMIT 3", Group, false},
		{"SELECT abc, COUNT(*) AS c FROM STREAM() GROUP BY abc ORDER BY c DESC", Group, false},
		{"SELECT abc, SUM(def), COUNT(*) AS c FROM STREAM() GROUP BY abc ORDER BY c DESC LIMIT 3", Group, false},
		{"SELECT abc FROM STREAM() GROUP BY abc ORDER BY abc DESC LIMIT 3", Group, false},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			p, err := parser.ParseQuery(c.query)
			require.NoError(t, err)
			s, errl := classify(p.Parsed())
			require.Nil(t, errl)
			assert.Equal(t, c.typ, s.typ)
			assert.Equal(t, c.specialK, s.specialK)
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	cases := []struct {
		query    string
		expected string
	}{
		{"SELECT TOP(5, abc), def FROM STREAM()", "TOP K cannot run with other non-computation selectItems"},
		{"SELECT COUNT(DISTINCT abc), COUNT(*) FROM STREAM()", "COUNT DISTINCT cannot run with other non-computation selectItems"},
		{"SELECT QUANTILE(def, LINEAR, 3), abc FROM STREAM()", "DISTRIBUTION cannot run with other non-computation selectItems"},
		{"SELECT * FROM STREAM() GROUP BY abc", "NonGroup aggregation cannot be followed by GROUP BY"},
		{"SELECT DISTINCT abc, COUNT(*) FROM STREAM()", "SELECT DISTINCT cannot be combined with * or aggregates or GROUP BY"},
		{"SELECT abc, COUNT(*) FROM STREAM() GROUP BY abc HAVING COUNT(*) > 1", "HAVING is only supported for TOP K"},
		{"SELECT abc FROM STREAM() GROUP BY abc ORDER BY abc + 1", "Only order by fields supported"},
		{"SELECT abc FROM STREAM() GROUP BY abc ORDER BY COUNT(*) DESC LIMIT 5", "Only order by fields supported"},
		{"SELECT abc, COUNT(*), COUNT(*) AS n FROM STREAM() GROUP BY abc ORDER BY COUNT(*) DESC LIMIT 3", "For Top K, there can only be one COUNT(*)"},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			p, err := parser.ParseQuery(c.query)
			require.NoError(t, err)
			_, errl := classify(p.Parsed())
			require.NotNil(t, errl)
			assert.EqualError(t, errl.err, c.expected)
		})
	}
}

func TestHavingThreshold(t *testing.T) {
	p, err := parser.ParseQuery("SELECT abc FROM STREAM() WHERE COUNT(*) >= 42")
	require.NoError(t, err)
	n, ok := havingThreshold(p.Parsed().Where)
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
	p, err = parser.ParseQuery("SELECT abc FROM STREAM() WHERE COUNT(*) > 42")
	require.NoError(t, err)
	_, ok = havingThreshold(p.Parsed().Where)
	assert.False(t, ok)
}
