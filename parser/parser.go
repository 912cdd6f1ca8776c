// Package parser turns RenewDSL text into a model.Model.
//
// Parsing runs in three stages: indent.Preprocess replaces significant
// indentation with block markers, grammar.ParseTokens builds a parse tree,
// and a per-call transformer coerces literals and assembles the Model.
// A document either parses completely or fails with a *SyntaxError or a
// *LiteralCoercionError; no partial Model is ever returned.
//
// Cross-references (a layout naming equipment that does not exist) are not
// checked, and quantities keep the unit they were written with.
package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/daveroberts0321/renewdsl/model"
	"github.com/daveroberts0321/renewdsl/parser/grammar"
	"github.com/daveroberts0321/renewdsl/parser/indent"
)

// Parse parses a RenewDSL document.
func Parse(text string) (*model.Model, error) {
	return ParseString("", text)
}

// ParseString parses text, naming it filename in error positions.
func ParseString(filename, text string) (*model.Model, error) {
	marked := indent.Preprocess(text)
	lines := newLineMap(filename, text, marked)

	doc, err := grammar.ParseTokens(filename, marked)
	if err != nil {
		return nil, newSyntaxError(lines, marked, err)
	}

	t := &transformer{lines: lines}
	return t.document(doc)
}

// ParseReader reads all of r and parses it.
func ParseReader(filename string, r io.Reader) (*model.Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return ParseString(filename, string(data))
}

// ParseFile parses the document stored at path.
func ParseFile(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(path, f)
}
