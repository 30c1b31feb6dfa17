package relcheck

import (
	cyphergrammar "github.com/rlch/relcheck/dialects/cypher/grammar"
)

// ResolveLabels returns the labels of the first node in query, left to right,
// that binds variable and carries at least one label. Nodes without labels
// are skipped.
func ResolveLabels(variable, query string) ([]string, bool) {
	return newLabelResolver(query).resolve(variable)
}

// labelResolver holds one pass input lexed once, and the labels bound to
// each variable, indexed on first lookup.
type labelResolver struct {
	tokens *cyphergrammar.Tokens
	starts []int
	bound  map[string][]string
}

func newLabelResolver(query string) *labelResolver {
	tokens := cyphergrammar.Lex(query)

	return &labelResolver{
		tokens: tokens,
		starts: tokens.NodeStarts(),
	}
}

func (r *labelResolver) resolve(variable string) ([]string, bool) {
	if variable == "" {
		return nil, false
	}

	if r.bound == nil {
		r.index()
	}

	labels, ok := r.bound[variable]

	return labels, ok
}

// index records, for every variable, the labels of the first node binding
// it with at least one label.
func (r *labelResolver) index() {
	r.bound = make(map[string][]string)

	for _, start := range r.starts {
		n, err := r.tokens.ParseNodeAt(start)
		if err != nil || n.Variable == "" {
			continue
		}

		if _, seen := r.bound[n.Variable]; seen {
			continue
		}

		if labels := n.LabelNames(); len(labels) > 0 {
			r.bound[n.Variable] = labels
		}
	}
}
