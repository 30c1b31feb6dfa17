package cyphergrammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// CypherLexer defines the lexer for Cypher pattern fragments.
//
// The lexer is total: every byte of any input produces a token. Text that is
// not part of the pattern surface (RETURN clauses, operators, stray quotes)
// falls through to Char, so scanning a whole query never fails to lex.
var CypherLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Whitespace and comments (elided from output)
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`, Action: nil},
		{Name: "LineComment", Pattern: `//[^\r\n]*`, Action: nil},

		// Multi-character operators (must come before single-char)
		{Name: "NotEqual", Pattern: `<>`},
		{Name: "LessEqual", Pattern: `<=`},
		{Name: "GreaterEqual", Pattern: `>=`},
		{Name: "Range", Pattern: `\.\.`},

		// Single-character operators
		{Name: "Eq", Pattern: `=`},
		{Name: "Less", Pattern: `<`},
		{Name: "Greater", Pattern: `>`},
		{Name: "Minus", Pattern: `-`},
		{Name: "Star", Pattern: `\*`},
		{Name: "Dot", Pattern: `\.`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Pipe", Pattern: `\|`},
		{Name: "Bang", Pattern: `!`},
		{Name: "Dollar", Pattern: `\$`},
		{Name: "LParen", Pattern: `\(`},
		{Name: "RParen", Pattern: `\)`},
		{Name: "LBrace", Pattern: `\{`},
		{Name: "RBrace", Pattern: `\}`},
		{Name: "LBracket", Pattern: `\[`},
		{Name: "RBracket", Pattern: `\]`},

		// String literals (both single and double quotes)
		{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`},

		// Escaped identifier (backtick-quoted)
		{Name: "EscapedIdent", Pattern: "`[^`]+`"},

		// Numbers - float must come before int to match longest. A sign is
		// lexed as Minus.
		{Name: "Float", Pattern: `(?:\d+\.\d*|\.\d+)(?:[eE][+-]?\d+)?`},
		{Name: "HexInt", Pattern: `0[xX][0-9a-fA-F]+`},
		{Name: "OctalInt", Pattern: `0[0-7]+`},
		{Name: "Int", Pattern: `\d+`},

		// Identifiers (including keywords)
		// Must come after numbers to avoid matching leading digits
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

		// Anything else is a single opaque character.
		{Name: "Char", Pattern: `[^ \t\r\n]`},
	},
})
