package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/daveroberts0321/renewdsl/parser/grammar"
	"github.com/daveroberts0321/renewdsl/parser/indent"
)

// Sentinels for errors.Is checks by kind.
var (
	ErrSyntax  = errors.New("syntax error")
	ErrLiteral = errors.New("literal coercion error")
)

// Position is a location in the original (unmarked) source text.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// SyntaxError reports input that matches no grammar production.
type SyntaxError struct {
	Pos   Position
	Token string // offending token as written, empty at end of input
	Msg   string
	Err   error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error        { return e.Err }
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// LiteralCoercionError reports a literal that matched the grammar but could
// not be converted to its typed value.
type LiteralCoercionError struct {
	Pos     Position
	Literal string
	Target  string
	Err     error
}

func (e *LiteralCoercionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %q to %s: %v", e.Pos, e.Literal, e.Target, e.Err)
}

func (e *LiteralCoercionError) Unwrap() error        { return e.Err }
func (e *LiteralCoercionError) Is(target error) bool { return target == ErrLiteral }

// newSyntaxError converts a participle error into a SyntaxError positioned in
// the original source. marked is the text the parser saw; errors that do not
// carry their token get it back by lexing marked at the error position.
func newSyntaxError(lines *lineMap, marked string, err error) *SyntaxError {
	serr := &SyntaxError{Msg: err.Error(), Err: err}

	var uerr *participle.UnexpectedTokenError
	if errors.As(err, &uerr) {
		serr.Pos = lines.position(uerr.Unexpected.Pos)
		serr.setToken(uerr.Unexpected)
		if uerr.Expect != "" {
			serr.Msg += " (expected " + uerr.Expect + ")"
		}
		return serr
	}

	var perr participle.Error
	if errors.As(err, &perr) {
		serr.Pos = lines.position(perr.Position())
		serr.Msg = perr.Message()
		if tok, ok := grammar.TokenAt(lines.file, marked, perr.Position()); ok {
			serr.setToken(tok)
		}
	}
	return serr
}

func (e *SyntaxError) setToken(tok lexer.Token) {
	if !tok.EOF() {
		e.Token = tok.Value
	}
	e.Msg = "unexpected " + describeToken(tok.Value, tok.EOF())
}

func describeToken(value string, eof bool) string {
	switch {
	case eof:
		return "end of input"
	case value == indent.BlockStart:
		return "indented block"
	case value == indent.BlockEnd:
		return "end of block"
	case value == "\n" || value == "\r\n":
		return "end of line"
	default:
		return fmt.Sprintf("%q", value)
	}
}
