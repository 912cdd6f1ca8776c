package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/daveroberts0321/renewdsl/parser/indent"
)

// lineMap translates positions in marked text back to the source. Markers
// replace indentation on the same line, so only columns need adjusting.
type lineMap struct {
	file   string
	source []string
	marked []string
}

func newLineMap(file, source, marked string) *lineMap {
	return &lineMap{
		file:   file,
		source: strings.Split(source, "\n"),
		marked: strings.Split(marked, "\n"),
	}
}

func (m *lineMap) position(p lexer.Position) Position {
	pos := Position{File: m.file, Line: p.Line, Column: p.Column}
	if p.Line < 1 {
		return pos
	}

	// The closing markers live on a line past the end of the source.
	if p.Line > len(m.source) {
		last := m.source[len(m.source)-1]
		pos.Line = len(m.source)
		pos.Column = len(last) + 1
		return pos
	}

	src := m.source[p.Line-1]
	width := indent.Width(src)
	prefix := width
	if p.Line <= len(m.marked) {
		prefix = len(m.marked[p.Line-1]) - (len(src) - width)
	}

	if p.Column <= prefix {
		pos.Column = width + 1
	} else {
		pos.Column = p.Column - prefix + width
	}
	return pos
}
