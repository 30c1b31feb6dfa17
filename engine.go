package relcheck

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rlch/relcheck/analysis"
)

// Engine validates relationship directions in queries against a schema.
// An Engine holds no per-query state and is safe for concurrent use.
type Engine struct {
	schema *analysis.Schema
	logger *zap.Logger
	mode   RewriteMode
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-match diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRewriteMode sets how corrections are applied.
func WithRewriteMode(mode RewriteMode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// NewEngine creates an Engine for schema.
func NewEngine(schema *analysis.Schema, opts ...Option) *Engine {
	e := &Engine{
		schema: schema,
		logger: zap.NewNop(),
		mode:   RewriteSpan,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Schema returns the schema the engine validates against.
func (e *Engine) Schema() *analysis.Schema {
	return e.schema
}

// ProcessTyped runs the typed pass: (a)-[:TYPE]->(b).
// It returns the corrected query, or "" and false when any pattern is
// unrecoverable.
func ProcessTyped(query string, schema *analysis.Schema) (string, bool) {
	r := NewEngine(schema).Run(query, ShapeTyped)

	return r.Query, r.OK()
}

// ProcessShort runs the short pass: (a)-->(b).
func ProcessShort(query string, schema *analysis.Schema) (string, bool) {
	r := NewEngine(schema).Run(query, ShapeShort)

	return r.Query, r.OK()
}

// Process runs the typed pass then the short pass on its output.
func Process(query string, schema *analysis.Schema) (string, bool) {
	r := NewEngine(schema).Process(query)

	return r.Query, r.OK()
}

// Process runs every shape in order, feeding each pass the previous output.
// The first failed pass ends the run with an empty Query.
func (e *Engine) Process(query string) *Report {
	report := &Report{Input: query, Query: query}

	for _, shape := range Shapes {
		res := e.Run(report.Query, shape)
		report.Passes = append(report.Passes, res)
		report.Query = res.Query

		if !res.OK() {
			break
		}
	}

	return report
}

// Run scans query for patterns of one shape and validates each.
//
// The scan moves a cursor over the ( tokens of the query. Where a pattern
// parses, it is validated and the cursor jumps to its second node, so the
// next hop of a chain such as (a)-->(b)-->(c) starts at (b).
func (e *Engine) Run(query string, shape Shape) *Result {
	res := &Result{Shape: shape, Input: query}
	labels := newLabelResolver(query)
	starts := labels.starts

	for i := 0; i < len(starts); {
		m, err := parseMatch(shape, query, labels.tokens, starts[i])
		if err != nil {
			i++

			continue
		}

		for _, o := range e.evaluate(m, labels) {
			e.log(o)
			res.fold(o)
		}

		for i < len(starts) && starts[i] < m.To.Start {
			i++
		}
	}

	res.finish(e.mode)

	return res
}

// evaluate validates a single match. Classification failures are all
// reported together and end evaluation of the match. Undirected patterns
// are classified but never oriented or checked against the schema.
func (e *Engine) evaluate(m *Match, labels *labelResolver) []Outcome {
	var failures []Outcome

	if m.Rel.HasTypes && !e.schema.AnyRelationshipExists(m.Rel.Types) {
		failures = append(failures, Outcome{
			Match:  m,
			Reason: UnknownRelationship,
			Detail: "types " + strings.Join(m.Rel.Types, "|"),
		})
	}

	for _, n := range []NodeSpec{m.From, m.To} {
		if n.HasLabels && !e.schema.AnyClassExists(n.Labels) {
			failures = append(failures, Outcome{
				Match:  m,
				Reason: UnknownClass,
				Detail: describeNode(n.Variable, n.Labels),
			})
		}
	}

	if !m.Rel.LeftArrow && !m.Rel.RightArrow {
		if len(failures) > 0 {
			return failures
		}

		return []Outcome{{Match: m, Reason: Undirected}}
	}

	if m.Rel.LeftArrow && m.Rel.RightArrow {
		failures = append(failures, Outcome{Match: m, Reason: AmbiguousDirection})
	}

	if len(failures) > 0 {
		return failures
	}

	from := e.nodeLabels(m.From, labels)
	to := e.nodeLabels(m.To, labels)

	if len(from) == 0 && len(to) == 0 {
		return []Outcome{{Match: m, Reason: Unconstrained}}
	}

	p := orient(m, from, to)

	if edge, ok := e.schema.FindPattern(p); ok {
		return []Outcome{{Match: m, Reason: Consistent, Detail: "schema edge " + edge.String()}}
	}

	if edge, ok := e.schema.FindPattern(p.Reverse()); ok {
		return []Outcome{{
			Match:      m,
			Reason:     Corrected,
			Detail:     "schema edge " + edge.String(),
			Correction: flip(m),
		}}
	}

	return []Outcome{{
		Match:  m,
		Reason: NoSchemaMatch,
		Detail: fmt.Sprintf("source %s, target %s", describeLabels(p.Sources), describeLabels(p.Targets)),
	}}
}

// nodeLabels returns inline labels, or labels bound to the node's variable
// elsewhere in the query.
func (e *Engine) nodeLabels(n NodeSpec, labels *labelResolver) []string {
	if n.HasLabels {
		return n.Labels
	}

	resolved, ok := labels.resolve(n.Variable)
	if ok {
		e.logger.Debug("resolved labels",
			zap.String("variable", n.Variable),
			zap.Strings("labels", resolved),
		)
	}

	return resolved
}

// orient maps the match onto source and target. A left arrow makes the
// second node the source; a right arrow makes the first node the source.
func orient(m *Match, from, to []string) analysis.Pattern {
	p := analysis.Pattern{Relationships: m.Rel.Types}

	if m.Rel.LeftArrow {
		p.Sources, p.Targets = to, from
	} else {
		p.Sources, p.Targets = from, to
	}

	return p
}

func (e *Engine) log(o Outcome) {
	fields := []zap.Field{
		zap.Stringer("shape", o.Match.Shape),
		zap.String("pattern", o.Match.Text),
		zap.Int("offset", o.Match.Start),
		zap.Stringer("reason", o.Reason),
	}
	if o.Detail != "" {
		fields = append(fields, zap.String("detail", o.Detail))
	}

	if o.Reason.Failed() {
		e.logger.Warn("pattern rejected", fields...)

		return
	}

	e.logger.Debug("pattern checked", fields...)
}

func describeNode(variable string, labels []string) string {
	if variable == "" {
		return "node " + describeLabels(labels)
	}

	return "node " + variable + " " + describeLabels(labels)
}

func describeLabels(labels []string) string {
	if len(labels) == 0 {
		return "(any)"
	}

	return ":" + strings.Join(labels, ":")
}
