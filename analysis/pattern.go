package analysis

import "slices"

// Pattern is a candidate (sources, relationships, targets) combination taken
// from a query. A dimension is defined when its slice is non-empty; an
// undefined dimension matches anything.
type Pattern struct {
	Sources       []string
	Relationships []string
	Targets       []string
}

// Reverse swaps sources and targets.
func (p Pattern) Reverse() Pattern {
	return Pattern{Sources: p.Targets, Relationships: p.Relationships, Targets: p.Sources}
}

// PatternExists reports whether some edge matches one element from each
// defined dimension. Multiple candidates per dimension are tried in every
// combination and any single match is enough.
//
// A pattern with neither sources nor targets defined never exists.
func (s *Schema) PatternExists(sources, targets, rels []string) bool {
	_, ok := s.FindPattern(Pattern{Sources: sources, Relationships: rels, Targets: targets})

	return ok
}

// FindPattern returns the first edge, in schema order, that satisfies p.
func (s *Schema) FindPattern(p Pattern) (Edge, bool) {
	if s == nil {
		return Edge{}, false
	}

	match := matcherFor(p)
	if match == nil {
		return Edge{}, false
	}

	for _, e := range s.edges {
		if match(e) {
			return e, true
		}
	}

	return Edge{}, false
}

func matcherFor(p Pattern) func(Edge) bool {
	src, rel, tgt := len(p.Sources) > 0, len(p.Relationships) > 0, len(p.Targets) > 0

	in := func(names []string, name string) bool { return slices.Contains(names, name) }

	switch {
	case src && tgt && rel:
		return func(e Edge) bool {
			return in(p.Sources, e.Source) && in(p.Targets, e.Target) && in(p.Relationships, e.Relationship)
		}
	case src && tgt:
		return func(e Edge) bool {
			return in(p.Sources, e.Source) && in(p.Targets, e.Target)
		}
	case src && rel:
		return func(e Edge) bool {
			return in(p.Sources, e.Source) && in(p.Relationships, e.Relationship)
		}
	case src:
		return func(e Edge) bool {
			return in(p.Sources, e.Source)
		}
	case tgt && rel:
		return func(e Edge) bool {
			return in(p.Targets, e.Target) && in(p.Relationships, e.Relationship)
		}
	case tgt:
		return func(e Edge) bool {
			return in(p.Targets, e.Target)
		}
	default:
		return nil
	}
}
