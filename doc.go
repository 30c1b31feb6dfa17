// Package relcheck validates and corrects the arrow direction of relationship
// patterns in Cypher queries against a schema of allowed
// (source, relationship, target) triples.
//
// A query is scanned for node-relationship-node patterns in two passes, one
// for the bracketed form (a)-[:TYPE]->(b) and one for the bare form
// (a)-->(b). Each pattern is checked against the schema as written and then
// reversed. Patterns that only fit the schema reversed have their arrows
// flipped; patterns that fit in neither direction make the whole query
// unrecoverable.
//
//	schema := analysis.NewSchema(analysis.Edge{
//		Source: "Person", Relationship: "WORKS_AT", Target: "Organization",
//	})
//	fixed, ok := relcheck.Process("MATCH (o:Organization)-[:WORKS_AT]->(p:Person)", schema)
//	// fixed == "MATCH (o:Organization)<-[:WORKS_AT]-(p:Person)", ok == true
//
// Use NewEngine for logging, the rewrite mode, and per-match outcomes.
package relcheck
