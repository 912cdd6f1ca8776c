package grammar

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The built parser is immutable and safe for concurrent use; each call to
// ParseTokens gets its own lexer state and parse tree.
var parser = participle.MustBuild[Document](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(1),
)

// ParseTokens parses text that has already been through indent.Preprocess.
// filename is only used in error positions.
func ParseTokens(filename, marked string) (*Document, error) {
	return parser.ParseString(filename, marked)
}

// EBNF returns the grammar in EBNF form, as derived from the parse tree types.
func EBNF() string {
	return parser.String()
}

// TokenAt returns the first token at or after pos in marked text, skipping
// whitespace and comments. At end of input it returns the EOF token.
func TokenAt(filename, marked string, pos lexer.Position) (lexer.Token, bool) {
	lex, err := Lexer.LexString(filename, marked)
	if err != nil {
		return lexer.Token{}, false
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return lexer.Token{}, false
	}

	symbols := Lexer.Symbols()
	for _, tok := range tokens {
		if tok.Type == symbols["Whitespace"] || tok.Type == symbols["Comment"] {
			continue
		}
		if tok.EOF() || tok.Pos.Offset >= pos.Offset {
			return tok, true
		}
	}
	return lexer.Token{}, false
}
