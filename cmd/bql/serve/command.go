package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bullet-db/bql/cmd/bql/root"
	"github.com/bullet-db/bql/config"
	"github.com/bullet-db/bql/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	root.Bql.AddCommand(New())
}

type Command struct {
	configPath string
	addr       string
}

func New() *cobra.Command {
	c := &Command{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the compile service",
		Long: `
The serve command runs an HTTP service that compiles queries.

  POST /compile   compile the query in the body, either plain text or
                  {"query": "..."}; the Accept header selects JSON, text
                  or the compressed IR (application/x-bql-ir)
  GET  /status    compile counts and cache occupancy
  GET  /version   the service version
  GET  /metrics   Prometheus metrics

The service is configured by the YAML file given by --service.config:

  addr: localhost:9867
  max_body_size: 1MiB
  cache_size: 1024
  allowed_origins: ["*"]
  compiler:
    max_query_length: 30000
    decimal_literal: AS_DOUBLE

The global --config and --schema flags are not used by this command.  Run
with --log.level info to log each failed compilation.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&c.configPath, "service.config", "", "path to a YAML file of service settings")
	cmd.Flags().StringVarP(&c.addr, "listen", "l", "", "address to listen on (overrides the settings)")
	return cmd
}

func (c *Command) Run(ctx context.Context) error {
	conf := config.DefaultService()
	if c.configPath != "" {
		var err error
		if conf, err = config.LoadService(c.configPath); err != nil {
			return err
		}
	}
	if c.addr != "" {
		conf.Addr = c.addr
	}
	logger, err := root.Flags.LogFlags.Open()
	if err != nil {
		return err
	}
	defer logger.Sync()
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	comp, err := root.NewCompiler(conf.Compiler, logger.Named("compiler"), reg)
	if err != nil {
		return err
	}
	s, err := service.New(conf, comp, logger.Named("service"), reg, root.Version)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	logger.Info("starting", zap.String("version", root.Version), zap.String("addr", conf.Addr))
	return s.ListenAndServe(ctx)
}
