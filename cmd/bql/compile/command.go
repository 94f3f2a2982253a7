package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/bullet-db/bql/api/client"
	"github.com/bullet-db/bql/cli/outputflags"
	"github.com/bullet-db/bql/cmd/bql/root"
	"github.com/bullet-db/bql/compiler"
	"github.com/gosuri/uilive"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type Command struct {
	outputFlags outputflags.Flags
	includes    []string
	ast         bool
	canon       bool
	jobs        int
	progress    bool
	remote      string
}

func init() {
	root.Bql.AddCommand(New())
}

func New() *cobra.Command {
	c := &Command{}
	cmd := &cobra.Command{
		Use:   "compile [options] [query]",
		Short: "compile queries to Query IR",
		Long: `
The compile command compiles a query given on the command line or one query
per file named with -I.  Files are compiled concurrently and the results are
written in the order the files were given.

With -C the canonical text of each query is printed instead of its IR, and
with --ast the parsed syntax tree is dumped.  Neither runs the type checker.

With --remote the queries are sent to a running compile service.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}
	fs := cmd.Flags()
	c.outputFlags.SetFlags(fs)
	fs.StringArrayVarP(&c.includes, "include", "I", nil, "file containing a query (may be repeated)")
	fs.BoolVar(&c.ast, "ast", false, "dump the parsed syntax tree")
	fs.BoolVarP(&c.canon, "canon", "C", false, "print the canonical text of each query")
	fs.IntVarP(&c.jobs, "jobs", "j", 4, "number of files compiled at once")
	fs.BoolVar(&c.progress, "progress", true, "show progress on stderr when it is a terminal")
	fs.StringVar(&c.remote, "remote", "", "URL of a compile service to compile with")
	return cmd
}

// job is one query and what became of it.
type job struct {
	name  string
	query string
	out   []byte
	err   error
}

func (c *Command) Run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	if len(args) == 0 && len(c.includes) == 0 {
		return errors.New("no query specified")
	}
	if c.jobs < 1 {
		return errors.New("-j must be positive")
	}
	if err := c.outputFlags.Init(); err != nil {
		return err
	}
	jobs, err := c.load(args)
	if err != nil {
		return err
	}
	compile, err := c.compiler()
	if err != nil {
		return err
	}
	c.runAll(ctx, jobs, compile)
	w := stdout
	if c.outputFlags.FileName() != "" {
		f, err := c.outputFlags.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	var failed int
	for _, j := range jobs {
		if j.err != nil {
			failed++
			if len(jobs) > 1 {
				fmt.Fprintf(stderr, "%s: ", j.name)
			}
			fmt.Fprintln(stderr, j.err)
			continue
		}
		if _, err := w.Write(j.out); err != nil {
			return err
		}
	}
	switch {
	case failed == 0:
		return nil
	case len(jobs) == 1:
		return errors.New("compilation failed")
	}
	return fmt.Errorf("%d of %d queries failed", failed, len(jobs))
}

func (c *Command) load(args []string) ([]*job, error) {
	var jobs []*job
	if len(args) == 1 {
		jobs = append(jobs, &job{name: "query", query: args[0]})
	}
	for _, path := range c.includes {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, &job{name: path, query: string(b)})
	}
	return jobs, nil
}

type compileFunc func(ctx context.Context, query string) ([]byte, error)

func (c *Command) compiler() (compileFunc, error) {
	if c.remote != "" {
		if c.ast || c.canon {
			return nil, errors.New("--ast and -C cannot be used with --remote")
		}
		conn := client.NewConnection(c.remote)
		return func(ctx context.Context, query string) ([]byte, error) {
			res, err := conn.Compile(ctx, query)
			if err != nil {
				return nil, err
			}
			return c.outputFlags.Marshal(res.Query)
		}, nil
	}
	comp, _, err := root.Flags.Init()
	if err != nil {
		return nil, err
	}
	return func(_ context.Context, query string) ([]byte, error) {
		return c.compileLocal(comp, query)
	}, nil
}

func (c *Command) compileLocal(comp *compiler.Compiler, query string) ([]byte, error) {
	switch {
	case c.ast:
		p, err := comp.Parse(query)
		if err != nil {
			return nil, err
		}
		return []byte(pretty.Sprint(p.Parsed()) + "\n"), nil
	case c.canon:
		text, err := comp.Format(query)
		if err != nil {
			return nil, err
		}
		return []byte(text + "\n"), nil
	}
	res, err := comp.Compile(query)
	if err != nil {
		return nil, err
	}
	return c.outputFlags.Marshal(res.Query)
}

func (c *Command) runAll(ctx context.Context, jobs []*job, compile compileFunc) {
	var progress *uilive.Writer
	if c.progress && len(jobs) > 1 && term.IsTerminal(int(os.Stderr.Fd())) {
		progress = uilive.New()
		progress.Out = os.Stderr
		progress.Start()
		defer progress.Stop()
	}
	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)
	for _, j := range jobs {
		g.Go(func() error {
			j.out, j.err = compile(ctx, j.query)
			n := done.Add(1)
			if progress != nil {
				fmt.Fprintf(progress, "compiled %d/%d\n", n, len(jobs))
			}
			return nil
		})
	}
	g.Wait()
}
