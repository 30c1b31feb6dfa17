package relcheck

import (
	"errors"
	"fmt"
)

// Reason classifies the outcome of validating one match.
type Reason int

const (
	// Consistent means the pattern is valid as written.
	Consistent Reason = iota
	// Corrected means the pattern is only valid reversed and was flipped.
	Corrected
	// Undirected means the relationship has no arrow and was left alone.
	Undirected
	// Unconstrained means neither node has labels, so nothing can be checked.
	Unconstrained
	// UnknownRelationship means none of the relationship types is in the schema.
	UnknownRelationship
	// UnknownClass means none of a node's labels is in the schema.
	UnknownClass
	// AmbiguousDirection means the relationship has both arrows.
	AmbiguousDirection
	// NoSchemaMatch means neither direction is allowed by the schema.
	NoSchemaMatch
)

var reasonNames = map[Reason]string{
	Consistent:          "consistent",
	Corrected:           "corrected",
	Undirected:          "undirected",
	Unconstrained:       "unconstrained",
	UnknownRelationship: "unknown-relationship",
	UnknownClass:        "unknown-class",
	AmbiguousDirection:  "ambiguous-direction",
	NoSchemaMatch:       "no-schema-match",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}

	return fmt.Sprintf("Reason(%d)", int(r))
}

// Failed reports whether r makes the whole pass unrecoverable.
func (r Reason) Failed() bool {
	return r.sentinel() != nil
}

func (r Reason) sentinel() error {
	switch r {
	case UnknownRelationship:
		return ErrUnknownRelationship
	case UnknownClass:
		return ErrUnknownClass
	case AmbiguousDirection:
		return ErrAmbiguousDirection
	case NoSchemaMatch:
		return ErrNoSchemaMatch
	default:
		return nil
	}
}

// Outcome is the verdict for one match.
type Outcome struct {
	Match  *Match
	Reason Reason
	// Detail names the offending or satisfying element, e.g. the labels of
	// an unknown node or the schema edge a pattern matched.
	Detail string
	// Correction is set when Reason is Corrected.
	Correction *Correction
}

// String renders the verdict, e.g.
// "typed (a)<-[:R]-(b) at 6: corrected (schema edge (A,R,B))".
func (o Outcome) String() string {
	s := fmt.Sprintf("%s %s at %d: %s", o.Match.Shape, o.Match.Text, o.Match.Start, o.Reason)
	if o.Detail != "" {
		s += " (" + o.Detail + ")"
	}

	return s
}

// Err returns a *MatchError for failed outcomes and nil otherwise.
func (o Outcome) Err() error {
	if !o.Reason.Failed() {
		return nil
	}

	return &MatchError{Outcome: o}
}

// MatchError reports a failed match. It unwraps to one of the ErrUnknown*,
// ErrAmbiguousDirection or ErrNoSchemaMatch sentinels.
type MatchError struct {
	Outcome Outcome
}

func (e *MatchError) Error() string {
	msg := fmt.Sprintf("%s pattern %s at offset %d: %v",
		e.Outcome.Match.Shape, e.Outcome.Match.Text, e.Outcome.Match.Start, e.Outcome.Reason.sentinel())
	if e.Outcome.Detail != "" {
		msg += " (" + e.Outcome.Detail + ")"
	}

	return msg
}

func (e *MatchError) Unwrap() error {
	return e.Outcome.Reason.sentinel()
}

// Result is the outcome of one pass over a query.
type Result struct {
	Shape Shape
	Input string
	// Query is the corrected query, or "" when any match failed.
	Query    string
	Outcomes []Outcome
}

func (r *Result) fold(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// finish computes Query once every match has been folded in.
func (r *Result) finish(mode RewriteMode) {
	if !r.OK() {
		r.Query = ""

		return
	}

	r.Query = mode.apply(r.Input, r.Corrections())
}

// OK reports whether no match failed.
func (r *Result) OK() bool {
	for _, o := range r.Outcomes {
		if o.Reason.Failed() {
			return false
		}
	}

	return true
}

// Changed reports whether the pass succeeded with at least one correction.
func (r *Result) Changed() bool {
	return r.OK() && r.Query != r.Input
}

// Failures returns the failed outcomes in scan order.
func (r *Result) Failures() []Outcome {
	var out []Outcome

	for _, o := range r.Outcomes {
		if o.Reason.Failed() {
			out = append(out, o)
		}
	}

	return out
}

// Corrections returns the corrections in scan order.
func (r *Result) Corrections() []*Correction {
	var out []*Correction

	for _, o := range r.Outcomes {
		if o.Correction != nil {
			out = append(out, o.Correction)
		}
	}

	return out
}

// Count returns how many outcomes have the given reason.
func (r *Result) Count(reason Reason) int {
	n := 0

	for _, o := range r.Outcomes {
		if o.Reason == reason {
			n++
		}
	}

	return n
}

// Err joins the errors of every failed outcome.
func (r *Result) Err() error {
	var errs []error
	for _, o := range r.Failures() {
		errs = append(errs, o.Err())
	}

	return errors.Join(errs...)
}

// Report is the outcome of running every shape over a query.
type Report struct {
	Input string
	// Query is the corrected query, or "" when any pass failed.
	Query string
	// Passes holds one Result per shape that ran. A failed pass stops the run.
	Passes []*Result
}

// OK reports whether every pass succeeded.
func (r *Report) OK() bool {
	for _, p := range r.Passes {
		if !p.OK() {
			return false
		}
	}

	return true
}

// Outcomes returns the outcomes of every pass in order.
func (r *Report) Outcomes() []Outcome {
	var out []Outcome
	for _, p := range r.Passes {
		out = append(out, p.Outcomes...)
	}

	return out
}

// Err joins the errors of every pass.
func (r *Report) Err() error {
	var errs []error
	for _, p := range r.Passes {
		errs = append(errs, p.Err())
	}

	return errors.Join(errs...)
}
