package cyphergrammar

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// ----------------------------------------------------------------------------
// Pattern AST
//
// Only the node-relationship-node surface of Cypher is modelled here. The
// shapes follow the openCypher pattern grammar:
// https://github.com/opencypher/openCypher
//
// Positions of every node are absolute within the text passed to the Parse*At
// functions, not relative to the offset the parse started at.
// ----------------------------------------------------------------------------

// TypedPattern is (a)-[r:TYPE]->(b) in any direction.
type TypedPattern struct {
	Pos  lexer.Position
	From *Node              `@@`
	Rel  *TypedRelationship `@@`
	To   *Node              `@@`
}

// ShortPattern is (a)-->(b) in any direction.
type ShortPattern struct {
	Pos  lexer.Position
	From *Node              `@@`
	Rel  *ShortRelationship `@@`
	To   *Node              `@@`
}

// Node is (variable? labels? properties?).
type Node struct {
	Pos        lexer.Position
	Variable   string      `LParen @Ident?`
	Labels     []*Label    `@@*`
	Properties *Properties `@@?`
	Close      *Close      `@@`
}

// Close captures the closing parenthesis of a node so its end is known.
type Close struct {
	Pos   lexer.Position
	Paren string `@RParen`
}

// Label is a single :Label, possibly back-quoted.
type Label struct {
	Pos  lexer.Position
	Name string `Colon @(Ident | EscapedIdent)`
}

// Properties is a {key: value, ...} block. Values are kept as raw text.
type Properties struct {
	Pos     lexer.Position
	Entries []*Property `LBrace ( @@ ( Comma @@ )* )? RBrace`
}

// Property is a single key: value entry.
type Property struct {
	Pos   lexer.Position
	Key   string `@(Ident | EscapedIdent) Colon`
	Value string `( @Minus? @(Float | HexInt | OctalInt | Int) | @(String | Ident) | @Dollar @Ident )`
}

// TypedRelationship is -[...]-> or <-[...]- or -[...]-.
type TypedRelationship struct {
	Pos        lexer.Position
	Head       *Head              `@@ LBracket`
	Variable   string             `@Ident?`
	Types      *RelationshipTypes `@@?`
	Properties *Properties        `@@?`
	Tail       *Tail              `RBracket @@`
}

// ShortRelationship is --> or <-- or --.
type ShortRelationship struct {
	Pos  lexer.Position
	Head *Head `@@`
	Tail *Tail `@@`
}

// Head is the opening side of a relationship: an optional < followed by -.
// When Left is nil, Pos is the position of the dash.
type Head struct {
	Pos  lexer.Position
	Left *LeftArrow `@@? Minus`
}

// LeftArrow is the < marker.
type LeftArrow struct {
	Pos  lexer.Position
	Less string `@Less`
}

// Tail is the closing side of a relationship: - followed by an optional >.
// Pos is always the position of the dash.
type Tail struct {
	Pos   lexer.Position
	Right *RightArrow `Minus @@?`
}

// RightArrow is the > marker.
type RightArrow struct {
	Pos     lexer.Position
	Greater string `@Greater`
}

// RelationshipTypes is :TYPE|TYPE|:TYPE|...
type RelationshipTypes struct {
	Pos   lexer.Position
	First *RelationshipType   `Colon @@`
	Rest  []*RelationshipType `( Pipe Colon? @@ )*`
}

// RelationshipType is one alternative, optionally negated with !.
type RelationshipType struct {
	Pos     lexer.Position
	Negated bool   `@Bang?`
	Name    string `@(Ident | EscapedIdent)`
}

// ----------------------------------------------------------------------------
// Accessors
// ----------------------------------------------------------------------------

// Unquote strips backticks from an identifier.
func Unquote(ident string) string {
	return strings.ReplaceAll(ident, "`", "")
}

// LabelNames returns the node's labels in source order with duplicates and
// backticks removed.
func (n *Node) LabelNames() []string {
	if n == nil || len(n.Labels) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(n.Labels))
	names := make([]string, 0, len(n.Labels))

	for _, l := range n.Labels {
		name := Unquote(l.Name)
		if seen[name] {
			continue
		}

		seen[name] = true
		names = append(names, name)
	}

	return names
}

// End returns the byte offset just past the node's closing parenthesis.
func (n *Node) End() int {
	return n.Close.Pos.Offset + len(n.Close.Paren)
}

// All returns every type alternative in source order.
func (t *RelationshipTypes) All() []*RelationshipType {
	if t == nil {
		return nil
	}

	return append([]*RelationshipType{t.First}, t.Rest...)
}

// Names returns the type alternatives with negation markers and backticks
// stripped, deduplicated in source order.
func (t *RelationshipTypes) Names() []string {
	all := t.All()
	if len(all) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(all))
	names := make([]string, 0, len(all))

	for _, rt := range all {
		name := Unquote(rt.Name)
		if seen[name] {
			continue
		}

		seen[name] = true
		names = append(names, name)
	}

	return names
}

// HasLeft reports whether the head carries a < marker.
func (h *Head) HasLeft() bool {
	return h != nil && h.Left != nil
}

// HasRight reports whether the tail carries a > marker.
func (t *Tail) HasRight() bool {
	return t != nil && t.Right != nil
}
