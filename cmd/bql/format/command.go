package format

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bullet-db/bql/cmd/bql/root"
	"github.com/spf13/cobra"
)

func init() {
	root.Bql.AddCommand(New())
}

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt [query]",
		Short: "print the canonical text of a query",
		Long: `
The fmt command parses a query, from the command line or from standard input
when none is given, and prints it in canonical form with keywords upper
cased, literals in their typed form and identifiers quoted where needed.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			} else {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				query = string(b)
			}
			settings, err := root.Flags.Settings()
			if err != nil {
				return err
			}
			settings.Schema = ""
			comp, err := root.NewCompiler(settings, nil, nil)
			if err != nil {
				return err
			}
			text, err := comp.Format(query)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return errors.New("parse failed")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}
