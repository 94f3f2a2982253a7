package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bullet-db/bql/cli/outputflags"
	"github.com/bullet-db/bql/cmd/bql/root"
	"github.com/bullet-db/bql/compiler"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	root.Bql.AddCommand(New())
}

func New() *cobra.Command {
	var history string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "compile queries interactively",
		Long: `
The repl command reads queries from the terminal and prints the IR of each.
A line ending in a backslash is continued on the next line.

Lines starting with a dot are commands:

  .format json|text      set the output format (default text)
  .fmt                   print canonical text instead of IR
  .ir                    print IR again after .fmt
  .quit                  leave the repl
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("repl requires a terminal")
			}
			comp, _, err := root.Flags.Init()
			if err != nil {
				return err
			}
			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)
			if history != "" {
				if f, err := os.Open(history); err == nil {
					line.ReadHistory(f)
					f.Close()
				}
				defer func() {
					if f, err := os.Create(history); err == nil {
						line.WriteHistory(f)
						f.Close()
					}
				}()
			}
			return newSession(comp).run(line, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&history, "history", defaultHistory(), "file in which to keep the line history")
	return cmd
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bql_history")
}

type prompter interface {
	Prompt(string) (string, error)
	AppendHistory(string)
}

type session struct {
	comp   *compiler.Compiler
	output outputflags.Flags
	canon  bool
}

func newSession(comp *compiler.Compiler) *session {
	s := &session{comp: comp}
	s.output.Format = outputflags.DefaultFormat
	return s
}

func (s *session) run(p prompter, out io.Writer) error {
	var buf strings.Builder
	for {
		prompt := "bql> "
		if buf.Len() > 0 {
			prompt = "...> "
		}
		line, err := p.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			buf.Reset()
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if text, ok := strings.CutSuffix(line, "\\"); ok {
			buf.WriteString(text)
			buf.WriteByte('\n')
			continue
		}
		buf.WriteString(line)
		input := strings.TrimSpace(buf.String())
		buf.Reset()
		if input == "" {
			continue
		}
		p.AppendHistory(input)
		if strings.HasPrefix(input, ".") {
			quit, err := s.command(input)
			if err != nil {
				fmt.Fprintln(out, err)
			}
			if quit {
				return nil
			}
			continue
		}
		fmt.Fprint(out, s.eval(input))
	}
}

func (s *session) command(line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".quit", ".exit":
		return true, nil
	case ".fmt":
		s.canon = true
	case ".ir":
		s.canon = false
	case ".format":
		if len(fields) != 2 {
			return false, errors.New("usage: .format json|text")
		}
		switch fields[1] {
		case "json", "text":
			s.output.Format = fields[1]
		case "ir":
			return false, errors.New("binary IR cannot be printed to a terminal")
		default:
			return false, fmt.Errorf("unknown output format %q", fields[1])
		}
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}

func (s *session) eval(query string) string {
	if s.canon {
		text, err := s.comp.Format(query)
		if err != nil {
			return err.Error() + "\n"
		}
		return text + "\n"
	}
	res, err := s.comp.Compile(query)
	if err != nil {
		return err.Error() + "\n"
	}
	b, err := s.output.Marshal(res.Query)
	if err != nil {
		return err.Error() + "\n"
	}
	return string(b)
}
