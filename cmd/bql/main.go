package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/bullet-db/bql/cmd/bql/compile"
	_ "github.com/bullet-db/bql/cmd/bql/format"
	_ "github.com/bullet-db/bql/cmd/bql/repl"
	"github.com/bullet-db/bql/cmd/bql/root"
	_ "github.com/bullet-db/bql/cmd/bql/serve"
)

func main() {
	if err := root.Bql.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
