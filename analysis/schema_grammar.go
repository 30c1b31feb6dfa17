package analysis

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// schemaLexer tokenizes the compact schema form. Names are anything but
// whitespace, parentheses, commas and backticks; back-quoted names may hold
// any of those except a backtick.
var schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Escaped", Pattern: "`[^`]+`"},
	{Name: "Name", Pattern: "[^\\s(),`]+"},
})

var schemaParser = participle.MustBuild[schemaString](
	participle.Lexer(schemaLexer),
	participle.Elide("Whitespace"),
)

// schemaString is (A,R,B),(C,R,D) with an optional trailing comma.
type schemaString struct {
	Tuples []*schemaTuple `( @@ ( "," @@ )* ","? )?`
}

// schemaTuple is a single (source,relationship,target).
type schemaTuple struct {
	Pos          lexer.Position
	Source       string `"(" @(Name | Escaped) ","`
	Relationship string `@(Name | Escaped) ","`
	Target       string `@(Name | Escaped) ")"`
}

func (t *schemaTuple) edge() Edge {
	return Edge{
		Source:       unquote(t.Source),
		Relationship: unquote(t.Relationship),
		Target:       unquote(t.Target),
	}
}

func unquote(name string) string {
	return strings.Trim(name, "`")
}

// ParseSchemaString parses the compact form used by evaluation datasets:
//
//	(Person,WORKS_AT,Organization),(Person,KNOWS,Person)
//
// Whitespace between tokens is ignored. An empty string is an empty schema.
// Errors carry the line and column of the offending token.
func ParseSchemaString(s string) (*Schema, error) {
	parsed, err := schemaParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSchema, err)
	}

	var edges []Edge
	for _, t := range parsed.Tuples {
		edges = append(edges, t.edge())
	}

	return NewSchema(edges...), nil
}
