package srcfiles

import (
	"sort"
	"strings"
)

// File indexes the lines of a query text so byte offsets can be
// reported as lines and columns.
type File struct {
	text  string
	lines []int
}

// NewFile returns the line index of text.
func NewFile(text string) File {
	lines := []int{0}
	for k := range len(text) {
		if text[k] == '\n' && k+1 < len(text) {
			lines = append(lines, k+1)
		}
	}
	return File{text: text, lines: lines}
}

// Position returns the line and column of the byte at pos.  Columns
// count bytes.
func (f File) Position(pos int) Position {
	if pos < 0 {
		return Position{-1, -1, -1}
	}
	i := f.lineIndex(pos)
	return Position{
		Pos:    pos,
		Line:   i + 1,
		Column: pos - f.lines[i] + 1,
	}
}

// LineOf returns the line holding pos without its newline.
func (f File) LineOf(pos int) string {
	i := f.lineIndex(pos)
	line := f.text[f.lines[i]:]
	if n := strings.IndexByte(line, '\n'); n >= 0 {
		line = line[:n]
	}
	return strings.TrimSuffix(line, "\r")
}

// NumLines is the number of lines in the text.
func (f File) NumLines() int {
	return len(f.lines)
}

func (f File) lineIndex(pos int) int {
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > pos }) - 1
	return max(i, 0)
}

type Position struct {
	Pos    int `json:"pos"`    // Byte offset in the query text.
	Line   int `json:"line"`   // 1-based line number.
	Column int `json:"column"` // 1-based column number.
}

func (p Position) IsValid() bool { return p.Pos >= 0 }
