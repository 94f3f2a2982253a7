package logflags_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bullet-db/bql/cli/logflags"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bql.log")
	var f logflags.Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log.path", path, "--log.format", "json", "--log.level", "warn"}))
	assert.Equal(t, zapcore.WarnLevel, f.Level)

	logger, err := f.Open()
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept", zap.Int("n", 7))
	require.NoError(t, logger.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"kept"`)
	assert.Contains(t, string(b), `"n":7`)
	assert.NotContains(t, string(b), "dropped")
}

func TestBadFlags(t *testing.T) {
	var f logflags.Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.SetFlags(fs)
	assert.Error(t, fs.Parse([]string{"--log.level", "loud"}))

	f.Format = "xml"
	_, err := f.Open()
	assert.EqualError(t, err, `unknown log format "xml"`)
}
