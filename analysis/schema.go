package analysis

import (
	"fmt"
	"slices"
	"strings"
)

// Edge is an allowed (source, relationship, target) triple.
type Edge struct {
	Source       string `yaml:"source"       json:"source"`
	Relationship string `yaml:"relationship" json:"relationship"`
	Target       string `yaml:"target"       json:"target"`
}

// Validate reports whether all three fields are set.
func (e Edge) Validate() error {
	switch {
	case e.Source == "":
		return fmt.Errorf("%w: source of %s", ErrEmptyEdgeField, e)
	case e.Relationship == "":
		return fmt.Errorf("%w: relationship of %s", ErrEmptyEdgeField, e)
	case e.Target == "":
		return fmt.Errorf("%w: target of %s", ErrEmptyEdgeField, e)
	}

	return nil
}

// Reverse returns the edge with source and target swapped.
func (e Edge) Reverse() Edge {
	return Edge{Source: e.Target, Relationship: e.Relationship, Target: e.Source}
}

// String renders the edge as (Source,Relationship,Target).
func (e Edge) String() string {
	return "(" + e.Source + "," + e.Relationship + "," + e.Target + ")"
}

// Schema is an immutable index over a list of edges.
//
// The zero value and a nil *Schema are both valid empty schemas: every
// membership query on them reports false.
type Schema struct {
	edges []Edge

	classes       map[string]struct{}
	sources       map[string]struct{}
	targets       map[string]struct{}
	relationships map[string]struct{}
}

// NewSchema builds a schema from edges. Order is preserved and duplicates
// are kept; they are harmless for every query.
func NewSchema(edges ...Edge) *Schema {
	s := &Schema{
		edges:         slices.Clone(edges),
		classes:       make(map[string]struct{}),
		sources:       make(map[string]struct{}),
		targets:       make(map[string]struct{}),
		relationships: make(map[string]struct{}),
	}

	for _, e := range edges {
		s.classes[e.Source] = struct{}{}
		s.classes[e.Target] = struct{}{}
		s.sources[e.Source] = struct{}{}
		s.targets[e.Target] = struct{}{}
		s.relationships[e.Relationship] = struct{}{}
	}

	return s
}

// Validate checks every edge and returns the first invalid one.
func (s *Schema) Validate() error {
	for i, e := range s.Edges() {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("edge %d: %w", i, err)
		}
	}

	return nil
}

// Len returns the number of edges, duplicates included.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}

	return len(s.edges)
}

// Edges returns a copy of the edges in their original order.
func (s *Schema) Edges() []Edge {
	if s == nil {
		return nil
	}

	return slices.Clone(s.edges)
}

// ClassExists reports whether name is the source or target of any edge.
func (s *Schema) ClassExists(name string) bool {
	return s != nil && has(s.classes, name)
}

// RelationshipExists reports whether name is the relationship of any edge.
func (s *Schema) RelationshipExists(name string) bool {
	return s != nil && has(s.relationships, name)
}

// AnyClassExists reports whether at least one of names is a known class.
func (s *Schema) AnyClassExists(names []string) bool {
	return slices.ContainsFunc(names, s.ClassExists)
}

// AnyRelationshipExists reports whether at least one of names is a known relationship.
func (s *Schema) AnyRelationshipExists(names []string) bool {
	return slices.ContainsFunc(names, s.RelationshipExists)
}

// IsSource reports whether name is the source of any edge.
func (s *Schema) IsSource(name string) bool {
	return s != nil && has(s.sources, name)
}

// IsTarget reports whether name is the target of any edge.
func (s *Schema) IsTarget(name string) bool {
	return s != nil && has(s.targets, name)
}

// Classes returns every known class, sorted.
func (s *Schema) Classes() []string {
	if s == nil {
		return nil
	}

	return sortedKeys(s.classes)
}

// SourceClasses returns every class seen as a source, sorted.
func (s *Schema) SourceClasses() []string {
	if s == nil {
		return nil
	}

	return sortedKeys(s.sources)
}

// TargetClasses returns every class seen as a target, sorted.
func (s *Schema) TargetClasses() []string {
	if s == nil {
		return nil
	}

	return sortedKeys(s.targets)
}

// Relationships returns every known relationship name, sorted.
func (s *Schema) Relationships() []string {
	if s == nil {
		return nil
	}

	return sortedKeys(s.relationships)
}

// String renders the schema in the compact form accepted by ParseSchemaString.
func (s *Schema) String() string {
	parts := make([]string, 0, s.Len())
	for _, e := range s.Edges() {
		parts = append(parts, e.String())
	}

	return strings.Join(parts, ",")
}

func has(set map[string]struct{}, name string) bool {
	_, ok := set[name]

	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
