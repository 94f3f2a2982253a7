package outputflags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/sfmt"
	"github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const DefaultFormat = "text"

type Flags struct {
	Format      string
	Codec       ir.Codec
	codec       string
	forceBinary bool
	indent      int
	outputFile  string
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Format, "format", "f", DefaultFormat, "format for compiled queries [ir,json,text]")
	fs.StringVar(&f.codec, "codec", ir.CodecZstd.String(), "compression of -f ir output [none,lz4,zstd]")
	fs.BoolVarP(&f.forceBinary, "binary", "B", false, "allow -f ir output to be sent to a terminal")
	fs.IntVar(&f.indent, "pretty", 2, "tab size to pretty print JSON output (0 for one line per query)")
	fs.StringVarP(&f.outputFile, "output", "o", "", "write output to file")
}

func (f *Flags) Init() error {
	switch f.Format {
	case "ir", "json", "text":
	default:
		return fmt.Errorf("unknown output format %q", f.Format)
	}
	codec, err := ir.ParseCodec(f.codec)
	if err != nil {
		return err
	}
	f.Codec = codec
	if f.outputFile == "-" {
		f.outputFile = ""
	}
	if f.Format == "ir" && f.outputFile == "" && !f.forceBinary && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write binary IR to a terminal (use -B to override)")
	}
	return nil
}

func (f *Flags) FileName() string {
	return f.outputFile
}

// Open returns the output file or standard output.
func (f *Flags) Open() (io.WriteCloser, error) {
	if f.outputFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(f.outputFile)
}

// Marshal renders q in the selected format.
func (f *Flags) Marshal(q *ir.Query) ([]byte, error) {
	switch f.Format {
	case "ir":
		return ir.Encode(q, f.Codec)
	case "json":
		if f.indent > 0 {
			b, err := json.MarshalIndent(q, "", strings.Repeat(" ", f.indent))
			return append(b, '\n'), err
		}
		b, err := ir.Marshal(q)
		return append(b, '\n'), err
	case "text":
		return []byte(sfmt.IR(q) + "\n"), nil
	}
	return nil, fmt.Errorf("unknown output format %q", f.Format)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
