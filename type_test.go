package bql_test

import (
	"testing"

	"github.com/bullet-db/bql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var numerics = []bql.Type{bql.Integer, bql.Long, bql.Float, bql.Double}

func TestWidenCommutesAndPicksWider(t *testing.T) {
	for _, a := range numerics {
		for _, b := range numerics {
			w := bql.Widen(a, b)
			assert.Equal(t, w, bql.Widen(b, a), "%s %s", a, b)
			assert.True(t, w == a || w == b)
			assert.GreaterOrEqual(t, w, a)
			assert.GreaterOrEqual(t, w, b)
			for _, c := range numerics {
				assert.Equal(t, bql.Widen(bql.Widen(a, b), c), bql.Widen(a, bql.Widen(b, c)))
			}
		}
	}
	assert.Equal(t, bql.Double, bql.Widen(bql.Integer, bql.Double))
	assert.Equal(t, bql.Long, bql.Widen(bql.Long, bql.Integer))
	assert.Equal(t, bql.Unknown, bql.Widen(bql.String, bql.Integer))
}

func TestTypeNames(t *testing.T) {
	cases := map[bql.Type]string{
		bql.Unknown:               "UNKNOWN",
		bql.Null:                  "NULL",
		bql.Long:                  "LONG",
		bql.ListOf(bql.String):    "STRING_LIST",
		bql.MapOf(bql.Boolean):    "BOOLEAN_MAP",
		bql.MapListOf(bql.Double): "DOUBLE_MAP_LIST",
		bql.MapMapOf(bql.Integer): "INTEGER_MAP_MAP",
	}
	for typ, name := range cases {
		assert.Equal(t, name, typ.String())
		parsed, err := bql.ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
	_, err := bql.ParseType("DECIMAL")
	assert.EqualError(t, err, `unknown type "DECIMAL"`)
	typ, err := bql.ParseType("string_map")
	require.NoError(t, err)
	assert.Equal(t, bql.MapOf(bql.String), typ)
}

func TestSub(t *testing.T) {
	assert.Equal(t, bql.Integer, bql.ListOf(bql.Integer).Sub())
	assert.Equal(t, bql.String, bql.MapOf(bql.String).Sub())
	assert.Equal(t, bql.MapOf(bql.Long), bql.MapListOf(bql.Long).Sub())
	assert.Equal(t, bql.MapOf(bql.Long), bql.MapMapOf(bql.Long).Sub())
	assert.Equal(t, bql.Unknown, bql.String.Sub())
	assert.True(t, bql.MapListOf(bql.Long).IsMapLike())
	assert.False(t, bql.ListOf(bql.Long).IsMapLike())
}

func TestBinarySignatures(t *testing.T) {
	check := func(op string, l, r bql.Type) (bql.Type, bool) {
		return bql.Binary[op].Check(l, r)
	}
	typ, ok := check("+", bql.Integer, bql.Double)
	assert.True(t, ok)
	assert.Equal(t, bql.Double, typ)
	typ, ok = check("+", bql.String, bql.String)
	assert.True(t, ok)
	assert.Equal(t, bql.String, typ)
	_, ok = check("*", bql.String, bql.Integer)
	assert.False(t, ok)
	typ, ok = check("-", bql.Unknown, bql.Long)
	assert.True(t, ok)
	assert.Equal(t, bql.Long, typ)
	typ, ok = check("/", bql.Null, bql.Unknown)
	assert.True(t, ok)
	assert.Equal(t, bql.Unknown, typ)
	_, ok = check("=", bql.String, bql.Integer)
	assert.False(t, ok)
	_, ok = check("<", bql.Boolean, bql.Boolean)
	assert.False(t, ok)
	_, ok = check("AND", bql.Boolean, bql.Null)
	assert.True(t, ok)
	_, ok = check("IN", bql.Long, bql.ListOf(bql.Integer))
	assert.True(t, ok)
	_, ok = check("IN", bql.String, bql.ListOf(bql.Integer))
	assert.False(t, ok)
	_, ok = check("CONTAINSKEY", bql.MapListOf(bql.String), bql.String)
	assert.True(t, ok)
	_, ok = check("CONTAINSVALUE", bql.MapMapOf(bql.String), bql.String)
	assert.False(t, ok)
	typ, ok = check("FILTER", bql.ListOf(bql.String), bql.ListOf(bql.Boolean))
	assert.True(t, ok)
	assert.Equal(t, bql.ListOf(bql.String), typ)
	_, ok = check("SIZEIS", bql.String, bql.Double)
	assert.False(t, ok)
}

func TestUnarySignatures(t *testing.T) {
	typ, ok := bql.Unary["SIZEOF"].Check(bql.MapOf(bql.Long), bql.Unknown)
	assert.True(t, ok)
	assert.Equal(t, bql.Integer, typ)
	_, ok = bql.Unary["NOT"].Check(bql.Integer, bql.Unknown)
	assert.False(t, ok)
	typ, ok = bql.Unary["ABS"].Check(bql.Float, bql.Unknown)
	assert.True(t, ok)
	assert.Equal(t, bql.Float, typ)
}

func TestCanCast(t *testing.T) {
	assert.True(t, bql.CanCast(bql.Integer, bql.String))
	assert.True(t, bql.CanCast(bql.String, bql.Double))
	assert.True(t, bql.CanCast(bql.Unknown, bql.Boolean))
	assert.False(t, bql.CanCast(bql.ListOf(bql.Integer), bql.String))
	assert.False(t, bql.CanCast(bql.Integer, bql.ListOf(bql.Integer)))
}
