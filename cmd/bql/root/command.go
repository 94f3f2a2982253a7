package root

import (
	"github.com/bullet-db/bql/cli/logflags"
	"github.com/bullet-db/bql/compiler"
	"github.com/bullet-db/bql/config"
	"github.com/bullet-db/bql/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set by the linker.
var Version = "unknown"

var Bql = &cobra.Command{
	Use:   "bql",
	Short: "compile BQL queries to Query IR",
	Long: `
The "bql" command compiles queries written in BQL, the SQL-like language of
streaming queries, into the Query IR consumed by the query engine.

Each compilation checks the shape of the query, resolves field types
against an optional schema and reports every error it finds with the
position in the query text where it occurred.

Compiler settings are read from the YAML file given by --config, e.g.,

  max_query_length: 30000
  decimal_literal: AS_DOUBLE
  schema: schema.yaml

and the schema file lists the typed fields of the input records:

  fields:
    - name: abc
      type: STRING
    - name: def
      type: LONG
`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Command holds the flags shared by every subcommand.
type Command struct {
	LogFlags   logflags.Flags
	configPath string
	schemaPath string
}

var Flags = &Command{
	LogFlags: logflags.Flags{DefaultLevel: zapcore.WarnLevel},
}

func init() {
	fs := Bql.PersistentFlags()
	Flags.LogFlags.SetFlags(fs)
	fs.StringVar(&Flags.configPath, "config", "", "path to a YAML file of compiler settings")
	fs.StringVar(&Flags.schemaPath, "schema", "", "path to a YAML schema file (overrides the settings)")
}

// Settings returns the compiler settings named by the flags.
func (c *Command) Settings() (config.Settings, error) {
	settings := config.DefaultSettings()
	if c.configPath != "" {
		var err error
		if settings, err = config.LoadSettings(c.configPath); err != nil {
			return config.Settings{}, err
		}
	}
	if c.schemaPath != "" {
		settings.Schema = c.schemaPath
	}
	return settings, nil
}

// NewCompiler returns a compiler for settings.  Metrics are registered
// with reg unless it is nil.
func NewCompiler(settings config.Settings, logger *zap.Logger, reg prometheus.Registerer) (*compiler.Compiler, error) {
	var s *schema.Schema
	if settings.Schema != "" {
		var err error
		if s, err = schema.Load(settings.Schema); err != nil {
			return nil, err
		}
	}
	return compiler.New(settings, s, logger, reg)
}

// Init opens the logger and builds a compiler from the flags.
func (c *Command) Init() (*compiler.Compiler, *zap.Logger, error) {
	logger, err := c.LogFlags.Open()
	if err != nil {
		return nil, nil, err
	}
	settings, err := c.Settings()
	if err != nil {
		return nil, nil, err
	}
	comp, err := NewCompiler(settings, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return comp, logger, nil
}
