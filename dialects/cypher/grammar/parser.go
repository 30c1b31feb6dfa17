package cyphergrammar

import (
	"errors"
	"slices"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var parserOptions = []participle.Option{
	participle.Lexer(CypherLexer),
	participle.Elide("Whitespace", "BlockComment", "LineComment"),
	participle.UseLookahead(4),
}

// Parsers for each recognised shape. They parse a prefix of their input and
// ignore whatever follows.
var (
	TypedParser = participle.MustBuild[TypedPattern](parserOptions...)
	ShortParser = participle.MustBuild[ShortPattern](parserOptions...)
	NodeParser  = participle.MustBuild[Node](parserOptions...)
)

// ErrNoTokenAt is returned when a parse offset is not the start of a token.
var ErrNoTokenAt = errors.New("no token starts at offset")

var (
	symbols = CypherLexer.Symbols()
	lparen  = symbols["LParen"]
	rparen  = symbols["RParen"]
	elided  = map[lexer.TokenType]bool{
		symbols["Whitespace"]:   true,
		symbols["BlockComment"]: true,
		symbols["LineComment"]:  true,
	}
)

// Parentheses a shape spans: a pattern has two nodes, a node one.
const (
	patternParens = 4
	nodeParens    = 2
)

// Tokens is a text lexed once, with whitespace and comments dropped.
//
// Nodes and relationships never contain parentheses of their own, so a
// pattern starting at a ( ends at the fourth parenthesis token counting from
// it. Parses read only that window, which keeps a scan over every start of a
// query linear in the query's length.
type Tokens struct {
	tokens []lexer.Token
	// parens indexes the ( and ) tokens in tokens.
	parens []int
	end    lexer.Position
}

// Lex lexes text for repeated parsing. The lexer is total, so this never
// fails on any input.
func Lex(text string) *Tokens {
	t := &Tokens{end: lexer.Position{Offset: len(text)}}

	lex, err := CypherLexer.LexString("", text)
	if err != nil {
		return t
	}

	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return t
	}

	t.tokens = make([]lexer.Token, 0, len(raw))

	for _, tok := range raw {
		if tok.EOF() {
			t.end = tok.Pos

			continue
		}

		if elided[tok.Type] {
			continue
		}

		if tok.Type == lparen || tok.Type == rparen {
			t.parens = append(t.parens, len(t.tokens))
		}

		t.tokens = append(t.tokens, tok)
	}

	return t
}

// NodeStarts returns the byte offset of every ( token, in order.
func (t *Tokens) NodeStarts() []int {
	var starts []int

	for _, i := range t.parens {
		if t.tokens[i].Type == lparen {
			starts = append(starts, t.tokens[i].Pos.Offset)
		}
	}

	return starts
}

// ParseTypedAt parses a typed relationship pattern starting at offset.
func (t *Tokens) ParseTypedAt(offset int) (*TypedPattern, error) {
	return parseWindow(TypedParser, t, offset, patternParens)
}

// ParseShortAt parses a short relationship pattern starting at offset.
func (t *Tokens) ParseShortAt(offset int) (*ShortPattern, error) {
	return parseWindow(ShortParser, t, offset, patternParens)
}

// ParseNodeAt parses a single node pattern starting at offset.
func (t *Tokens) ParseNodeAt(offset int) (*Node, error) {
	return parseWindow(NodeParser, t, offset, nodeParens)
}

// window returns the tokens from the token at offset through the n-th
// parenthesis token counting from it.
func (t *Tokens) window(offset, n int) ([]lexer.Token, lexer.Position, error) {
	start, ok := slices.BinarySearchFunc(t.tokens, offset, func(tok lexer.Token, off int) int {
		return tok.Pos.Offset - off
	})
	if !ok {
		return nil, lexer.Position{}, ErrNoTokenAt
	}

	// First parenthesis at or after start.
	p, _ := slices.BinarySearch(t.parens, start)

	end := len(t.tokens)
	if last := p + n - 1; last < len(t.parens) {
		end = t.parens[last] + 1
	}

	eof := t.end
	if end < len(t.tokens) {
		eof = t.tokens[end].Pos
	}

	return t.tokens[start:end], eof, nil
}

func parseWindow[G any](parser *participle.Parser[G], t *Tokens, offset, parens int) (*G, error) {
	tokens, eof, err := t.window(offset, parens)
	if err != nil {
		return nil, err
	}

	peek, err := lexer.Upgrade(&sliceLexer{tokens: tokens, eof: eof})
	if err != nil {
		return nil, err
	}

	return parser.ParseFromLexer(peek, participle.AllowTrailing(true))
}

// sliceLexer replays already lexed tokens.
type sliceLexer struct {
	tokens []lexer.Token
	eof    lexer.Position
}

func (s *sliceLexer) Next() (lexer.Token, error) {
	if len(s.tokens) == 0 {
		return lexer.EOFToken(s.eof), nil
	}

	tok := s.tokens[0]
	s.tokens = s.tokens[1:]

	return tok, nil
}

// NodeStarts returns the byte offset of every ( token in text, in order.
// Parentheses inside string literals, back-quoted identifiers and comments are
// not tokens of their own and are therefore never reported.
func NodeStarts(text string) []int {
	return Lex(text).NodeStarts()
}

// ParseTypedAt parses a typed relationship pattern starting at offset.
// Positions in the result are absolute within text. Use Lex to parse many
// offsets of the same text.
func ParseTypedAt(text string, offset int) (*TypedPattern, error) {
	return Lex(text).ParseTypedAt(offset)
}

// ParseShortAt parses a short relationship pattern starting at offset.
func ParseShortAt(text string, offset int) (*ShortPattern, error) {
	return Lex(text).ParseShortAt(offset)
}

// ParseNodeAt parses a single node pattern starting at offset.
func ParseNodeAt(text string, offset int) (*Node, error) {
	return Lex(text).ParseNodeAt(offset)
}
