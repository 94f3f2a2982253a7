package sfmt

import (
	"fmt"
	"strings"
)

type formatter struct {
	strings.Builder
	indent  int
	tab     int
	needRet bool
}

func (f *formatter) write(args ...any) {
	if f.needRet {
		f.needRet = false
		f.WriteByte('\n')
		f.writeTab()
	}
	if len(args) == 1 {
		f.WriteString(args[0].(string))
	} else if len(args) > 1 {
		fmt.Fprintf(&f.Builder, args[0].(string), args[1:]...)
	}
}

func (f *formatter) writeTab() {
	f.WriteString(strings.Repeat(" ", f.indent))
}

// open writes its optional arguments and then indents the lines that
// follow.
func (f *formatter) open(args ...any) {
	f.write(args...)
	f.indent += f.tab
}

func (f *formatter) close() {
	f.indent -= f.tab
}

// ret ends the current line.  The newline is written lazily so a trailing
// ret produces no output.
func (f *formatter) ret() {
	f.needRet = true
}

func (f *formatter) space() {
	f.write(" ")
}

func (f *formatter) flush() {
	f.needRet = false
}
