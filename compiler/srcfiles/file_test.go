package srcfiles_test

import (
	"testing"

	"github.com/bullet-db/bql/compiler/srcfiles"
	"github.com/stretchr/testify/assert"
)

func TestFilePositions(t *testing.T) {
	f := srcfiles.NewFile("SELECT a\r\nFROM STREAM()\n\nLIMIT 1\n")
	assert.Equal(t, 4, f.NumLines())
	cases := []struct {
		pos    int
		line   int
		column int
		text   string
	}{
		{0, 1, 1, "SELECT a"},
		{7, 1, 8, "SELECT a"},
		{10, 2, 1, "FROM STREAM()"},
		{24, 3, 1, ""},
		{25, 4, 1, "LIMIT 1"},
		{32, 4, 8, "LIMIT 1"},
	}
	for _, c := range cases {
		pos := f.Position(c.pos)
		assert.Equal(t, c.line, pos.Line, "line of %d", c.pos)
		assert.Equal(t, c.column, pos.Column, "column of %d", c.pos)
		assert.Equal(t, c.text, f.LineOf(c.pos))
	}
	assert.False(t, f.Position(-1).IsValid())
}

func TestEmptyFile(t *testing.T) {
	f := srcfiles.NewFile("")
	assert.Equal(t, 1, f.NumLines())
	assert.Equal(t, srcfiles.Position{Pos: 0, Line: 1, Column: 1}, f.Position(0))
	assert.Equal(t, "", f.LineOf(0))
}
