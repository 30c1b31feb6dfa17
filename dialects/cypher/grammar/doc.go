// Package cyphergrammar provides a parser for Cypher relationship patterns built with participle.
//
// This package contains the lexer, AST types, and parsers for the
// node-relationship-node surface of openCypher. It deliberately does not parse
// whole queries: callers lex a query once with Lex, locate candidate pattern
// starts with NodeStarts and parse one hop at a time, leaving the rest of the
// query untouched.
//
// # Key Features
//
//   - Typed relationships: (a)-[r:TYPE|OTHER]->(b), with negated and back-quoted types
//   - Short relationships: (a)-->(b), (a)<--(b), (a)--(b)
//   - Property blocks are matched but never interpreted
//   - Absolute lexer.Position tracking for rewriting arrows in place
//
// # Usage
//
//	tokens := cyphergrammar.Lex(query)
//	for _, off := range tokens.NodeStarts() {
//	    p, err := tokens.ParseTypedAt(off)
//	    if err != nil {
//	        continue
//	    }
//	    // Work with p.From, p.Rel, p.To...
//	}
//
// # Grammar Origin
//
// The pattern grammar is based on the openCypher specification:
// https://github.com/opencypher/openCypher
package cyphergrammar
