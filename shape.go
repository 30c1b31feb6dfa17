package relcheck

import (
	cyphergrammar "github.com/rlch/relcheck/dialects/cypher/grammar"
)

// Shape selects which relationship form a pass looks for.
type Shape int

const (
	// ShapeTyped is the bracketed form (a)-[r:TYPE]->(b).
	ShapeTyped Shape = iota
	// ShapeShort is the bare form (a)-->(b).
	ShapeShort
)

// Shapes lists every shape in the order Process runs them.
var Shapes = []Shape{ShapeTyped, ShapeShort}

func (s Shape) String() string {
	switch s {
	case ShapeTyped:
		return "typed"
	case ShapeShort:
		return "short"
	default:
		return "unknown"
	}
}

// NodeSpec describes one node of a matched pattern.
type NodeSpec struct {
	Variable string
	// Labels are the inline labels, deduplicated in source order.
	Labels []string
	// HasLabels is true when the node carried at least one label marker.
	// When false, Labels is empty and must be resolved elsewhere.
	HasLabels bool
	// Start and End delimit the node text, parentheses included.
	Start, End int
}

// RelSpec describes the relationship of a matched pattern.
type RelSpec struct {
	Variable string
	// Types are the alternative relationship types with negation stripped.
	Types      []string
	HasTypes   bool
	LeftArrow  bool
	RightArrow bool

	// Byte offsets of the arrow markers. head and tail are the dashes that
	// open and close the relationship; left and right are -1 when absent.
	head, left, tail, right int
}

// Directed reports whether exactly one arrow is present.
func (r RelSpec) Directed() bool {
	return r.LeftArrow != r.RightArrow
}

// Match is one node-relationship-node occurrence in a query.
type Match struct {
	Shape Shape
	// Text is the matched substring, Start and End its offsets in the pass input.
	Text       string
	Start, End int
	From, To   NodeSpec
	Rel        RelSpec
}

// parseMatch tries to read a pattern of the given shape at offset of text,
// lexed as tokens.
func parseMatch(shape Shape, text string, tokens *cyphergrammar.Tokens, offset int) (*Match, error) {
	var (
		from, to *cyphergrammar.Node
		rel      RelSpec
	)

	switch shape {
	case ShapeShort:
		p, err := tokens.ParseShortAt(offset)
		if err != nil {
			return nil, err
		}

		from, to = p.From, p.To
		rel = arrows(p.Rel.Head, p.Rel.Tail)
	default:
		p, err := tokens.ParseTypedAt(offset)
		if err != nil {
			return nil, err
		}

		from, to = p.From, p.To
		rel = arrows(p.Rel.Head, p.Rel.Tail)
		rel.Variable = p.Rel.Variable
		rel.Types = p.Rel.Types.Names()
		rel.HasTypes = len(rel.Types) > 0
	}

	m := &Match{
		Shape: shape,
		From:  nodeSpec(from),
		To:    nodeSpec(to),
		Rel:   rel,
	}
	m.Start, m.End = m.From.Start, m.To.End
	m.Text = text[m.Start:m.End]

	return m, nil
}

func nodeSpec(n *cyphergrammar.Node) NodeSpec {
	labels := n.LabelNames()

	return NodeSpec{
		Variable:  n.Variable,
		Labels:    labels,
		HasLabels: len(labels) > 0,
		Start:     n.Pos.Offset,
		End:       n.End(),
	}
}

func arrows(head *cyphergrammar.Head, tail *cyphergrammar.Tail) RelSpec {
	r := RelSpec{
		LeftArrow:  head.HasLeft(),
		RightArrow: tail.HasRight(),
		head:       head.Pos.Offset,
		left:       -1,
		tail:       tail.Pos.Offset,
		right:      -1,
	}

	if r.LeftArrow {
		r.left = head.Left.Pos.Offset
		r.head = r.left + len(head.Left.Less)
	}

	if r.RightArrow {
		r.right = tail.Right.Pos.Offset
	}

	return r
}
