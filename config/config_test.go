package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bullet-db/bql/compiler/parser"
	"github.com/bullet-db/bql/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseService(t *testing.T) {
	s, err := config.ParseService([]byte(`
addr: ":8080"
max_body_size: 64KB
allowed_origins: [https://example.com]
compiler:
  max_query_length: 100
  decimal_literal: REJECT
`))
	require.NoError(t, err)
	assert.Equal(t, ":8080", s.Addr)
	assert.Equal(t, config.Bytes(64*1024), s.MaxBodySize)
	assert.Equal(t, config.DefaultCacheSize, s.CacheSize)
	assert.Equal(t, []string{"https://example.com"}, s.AllowedOrigins)
	assert.Equal(t, 100, s.Compiler.MaxQueryLength)
	assert.Equal(t, parser.DecimalReject, s.Compiler.DecimalLiteral)
}

func TestDefaults(t *testing.T) {
	s, err := config.ParseService([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultService(), s)
	assert.Equal(t, "1MiB", s.MaxBodySize.String())
	assert.Equal(t, config.DefaultMaxQueryLength, s.Compiler.MaxQueryLength)
	assert.Equal(t, parser.DecimalAsDouble, s.Compiler.DecimalLiteral)
}

func TestValidate(t *testing.T) {
	_, err := config.ParseSettings([]byte("max_query_length: 0\n"))
	assert.EqualError(t, err, "max_query_length must be positive: 0")
	_, err = config.ParseSettings([]byte("decimal_literal: FLOAT\n"))
	assert.EqualError(t, err, `decimal_literal must be one of AS_DOUBLE, AS_DECIMAL or REJECT: "FLOAT"`)
	_, err = config.ParseService([]byte("cache_size: -1\n"))
	assert.EqualError(t, err, "cache_size must not be negative: -1")
	_, err = config.ParseService([]byte("compiler:\n  max_query_length: -5\n"))
	assert.EqualError(t, err, "compiler: max_query_length must be positive: -5")
	_, err = config.ParseService([]byte("max_body_size: lots\n"))
	assert.Error(t, err)
}

func TestUnknownField(t *testing.T) {
	_, err := config.ParseSettings([]byte("max_query_len: 10\n"))
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema: fields.yaml\n"), 0644))
	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "fields.yaml", s.Schema)
	_, err = config.LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBytesFlag(t *testing.T) {
	var b config.Bytes
	require.NoError(t, b.Set("2MiB"))
	assert.Equal(t, config.Bytes(2<<20), b)
	assert.Equal(t, "bytes", b.Type())
}
