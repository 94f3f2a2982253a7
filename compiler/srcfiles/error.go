package srcfiles

import (
	"fmt"
	"strings"
)

// ErrList is a list of Errors.
type ErrorList []*Error

// Append appends an Error to e.
func (e *ErrorList) Append(list *List, msg string, pos, end int) {
	*e = append(*e, &Error{Msg: msg, Pos: pos, End: end, list: list})
}

// Hint sets the resolution hint of the most recently appended Error.
func (e ErrorList) Hint(hint string) {
	if len(e) > 0 {
		e[len(e)-1].Hint = hint
	}
}

// Bind takes errors that were created elsewhere (e.g., the service) using
// the list's files and points the errors back at this list.
func (e ErrorList) Bind(list *List) {
	for i := range e {
		e[i].list = list
	}
}

// Error concatenates the errors in e with a newline between each.
func (e ErrorList) Error() string {
	var b strings.Builder
	for i, err := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Error is a message tied to a span of the source text.  Hint, when
// present, suggests how to resolve the problem.  A negative Pos means the
// error applies to the query as a whole.
type Error struct {
	Msg  string `json:"error"`
	Hint string `json:"hint,omitempty"`
	Pos  int    `json:"pos"`
	End  int    `json:"end"`
	list *List
}

// Position returns the line and column of the start of e.
func (e *Error) Position() Position {
	if e.list == nil || e.Pos < 0 {
		return Position{-1, -1, -1}
	}
	return e.list.File.Position(e.Pos)
}

func (e *Error) Error() string {
	if e.list == nil || e.Pos < 0 {
		return e.withHint(e.Msg)
	}
	file := e.list.File
	start := file.Position(e.Pos)
	end := file.Position(e.End)
	var b strings.Builder
	b.WriteString(e.Msg)
	line := file.LineOf(e.Pos)
	fmt.Fprintf(&b, " at line %d, column %d:\n%s\n", start.Line, start.Column, line)
	if end.IsValid() {
		formatSpanError(&b, line, start, end)
	} else {
		formatPointError(&b, start)
	}
	return e.withHint(b.String())
}

func (e *Error) withHint(s string) string {
	if e.Hint == "" {
		return s
	}
	return s + "\n" + e.Hint
}

func formatSpanError(b *strings.Builder, line string, start, end Position) {
	b.WriteString(strings.Repeat(" ", start.Column-1))
	n := end.Column - start.Column + 1
	if start.Line != end.Line {
		n = len(line) - start.Column + 1
	}
	b.WriteString(strings.Repeat("~", n))
}

func formatPointError(b *strings.Builder, start Position) {
	col := start.Column - 1
	for k := range col {
		if k >= col-4 && k != col-1 {
			b.WriteByte('=')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString("^ ===")
}
