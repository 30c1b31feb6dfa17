package relcheck

import (
	"fmt"
	"slices"
	"strings"
)

// RewriteMode selects how corrections are applied to the pass input.
type RewriteMode int

const (
	// RewriteSpan edits only the matched occurrence, by offset.
	RewriteSpan RewriteMode = iota
	// RewriteAllOccurrences replaces every occurrence of the matched text,
	// including identical patterns elsewhere in the query.
	RewriteAllOccurrences
)

func (m RewriteMode) String() string {
	switch m {
	case RewriteSpan:
		return "span"
	case RewriteAllOccurrences:
		return "all-occurrences"
	default:
		return fmt.Sprintf("RewriteMode(%d)", int(m))
	}
}

// ParseRewriteMode parses the name returned by RewriteMode.String.
func ParseRewriteMode(s string) (RewriteMode, error) {
	switch s {
	case "span":
		return RewriteSpan, nil
	case "all-occurrences":
		return RewriteAllOccurrences, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRewriteMode, s)
	}
}

// Edit is a single byte-level change at an absolute offset.
type Edit struct {
	Offset int
	Delete int
	Insert string
}

// Correction flips the arrow direction of one match.
type Correction struct {
	Start, End  int
	Original    string
	Replacement string
	Edits       []Edit
}

// flip builds the correction reversing m's arrow. Only arrow markers change.
func flip(m *Match) *Correction {
	var edits []Edit

	switch {
	case m.Rel.LeftArrow:
		edits = []Edit{
			{Offset: m.Rel.left, Delete: 1},
			{Offset: m.Rel.tail + 1, Insert: ">"},
		}
	case m.Rel.RightArrow:
		edits = []Edit{
			{Offset: m.Rel.head, Insert: "<"},
			{Offset: m.Rel.right, Delete: 1},
		}
	default:
		return nil
	}

	return &Correction{
		Start:       m.Start,
		End:         m.End,
		Original:    m.Text,
		Replacement: applyEdits(m.Text, m.Start, edits),
		Edits:       edits,
	}
}

// apply applies corrections to input according to mode.
func (mode RewriteMode) apply(input string, corrections []*Correction) string {
	if len(corrections) == 0 {
		return input
	}

	if mode == RewriteAllOccurrences {
		for _, c := range corrections {
			input = strings.ReplaceAll(input, c.Original, c.Replacement)
		}

		return input
	}

	var edits []Edit
	for _, c := range corrections {
		edits = append(edits, c.Edits...)
	}

	return applyEdits(input, 0, edits)
}

// applyEdits applies edits, whose offsets are relative to base, to s.
func applyEdits(s string, base int, edits []Edit) string {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int {
		return b.Offset - a.Offset
	})

	for _, e := range sorted {
		at := e.Offset - base
		s = s[:at] + e.Insert + s[at+e.Delete:]
	}

	return s
}
