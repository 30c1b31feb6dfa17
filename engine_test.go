package relcheck_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rlch/relcheck"
	"github.com/rlch/relcheck/analysis"
)

func TestProcess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  string
		ok    bool
	}{
		{
			name:  "consistent typed",
			query: "MATCH (a:Person)-[:WORKS_AT]->(b:Organization) RETURN a",
			want:  "MATCH (a:Person)-[:WORKS_AT]->(b:Organization) RETURN a",
			ok:    true,
		},
		{
			name:  "flip right to left",
			query: "MATCH (a:Organization)-[:WORKS_AT]->(b:Person) RETURN a",
			want:  "MATCH (a:Organization)<-[:WORKS_AT]-(b:Person) RETURN a",
			ok:    true,
		},
		{
			name:  "flip left to right keeps variable",
			query: "MATCH (p:Person)<-[r:WORKS_AT]-(o:Organization)",
			want:  "MATCH (p:Person)-[r:WORKS_AT]->(o:Organization)",
			ok:    true,
		},
		{
			name:  "unconstrained short",
			query: "MATCH ()-->() RETURN 1",
			want:  "MATCH ()-->() RETURN 1",
			ok:    true,
		},
		{
			name:  "unconstrained typed with known type",
			query: "MATCH ()-[:KNOWS]->()",
			want:  "MATCH ()-[:KNOWS]->()",
			ok:    true,
		},
		{
			name:  "undirected known type",
			query: "(a:Person)-[:KNOWS]-(b:Person)",
			want:  "(a:Person)-[:KNOWS]-(b:Person)",
			ok:    true,
		},
		{
			name:  "undirected unknown type",
			query: "(a:Person)-[:LIKES]-(b:Person)",
			want:  "",
		},
		{
			name:  "undirected short unknown class",
			query: "MATCH (a:Car)--(b:Person)",
			want:  "",
		},
		{
			name:  "undirected after flipped hop",
			query: "(a:Organization)-[:WORKS_AT]->(b:Person)-[:KNOWS]-(c:Person)",
			want:  "(a:Organization)<-[:WORKS_AT]-(b:Person)-[:KNOWS]-(c:Person)",
			ok:    true,
		},
		{
			name:  "negative property value",
			query: "MATCH (a:Organization {age: -1})-[:WORKS_AT]->(b:Person)",
			want:  "MATCH (a:Organization {age: -1})<-[:WORKS_AT]-(b:Person)",
			ok:    true,
		},
		{
			name:  "unknown relationship and class",
			query: "(a:Person)-[:LIKES]->(b:Car)",
			want:  "",
		},
		{
			name:  "unknown target class",
			query: "(a:Person)-[:KNOWS]->(b:Alien)",
			want:  "",
		},
		{
			name:  "no schema match either way",
			query: "(a:City)-[:KNOWS]->(b:Person)",
			want:  "",
		},
		{
			name:  "ambiguous typed",
			query: "(a:Person)<-[:KNOWS]->(b:Person)",
			want:  "",
		},
		{
			name:  "ambiguous short",
			query: "(a:Person)<-->(b:Person)",
			want:  "",
		},
		{
			name:  "chain both hops valid",
			query: "MATCH (a:Person)-[:WORKS_AT]->(b:Organization)<-[:WORKS_AT]-(c:Person)",
			want:  "MATCH (a:Person)-[:WORKS_AT]->(b:Organization)<-[:WORKS_AT]-(c:Person)",
			ok:    true,
		},
		{
			name:  "chain second hop invalid",
			query: "MATCH (a:Person)-[:WORKS_AT]->(b:Organization)-[:KNOWS]->(c:Person)",
			want:  "",
		},
		{
			name:  "chain second hop flipped",
			query: "(a:Person)-[:WORKS_AT]->(b:Organization)<-[:LOCATED_IN]-(c:City)",
			want:  "(a:Person)-[:WORKS_AT]->(b:Organization)-[:LOCATED_IN]->(c:City)",
			ok:    true,
		},
		{
			name:  "chain third hop flipped",
			query: "MATCH (p:Person)-[:KNOWS]->(q:Person)-[:WORKS_AT]->(o:Organization)<-[:LOCATED_IN]-(c:City)",
			want:  "MATCH (p:Person)-[:KNOWS]->(q:Person)-[:WORKS_AT]->(o:Organization)-[:LOCATED_IN]->(c:City)",
			ok:    true,
		},
		{
			name:  "multi label any matches",
			query: "(a:Person:Robot)-[:KNOWS]->(b:Person)",
			want:  "(a:Person:Robot)-[:KNOWS]->(b:Person)",
			ok:    true,
		},
		{
			name:  "multi label flip",
			query: "(a:Organization)-[:WORKS_AT]->(b:Robot:Person)",
			want:  "(a:Organization)<-[:WORKS_AT]-(b:Robot:Person)",
			ok:    true,
		},
		{
			name:  "label resolved from later clause",
			query: "MATCH (a:Person)<-[:WORKS_AT]-(b) MATCH (b:Organization) RETURN a",
			want:  "MATCH (a:Person)-[:WORKS_AT]->(b) MATCH (b:Organization) RETURN a",
			ok:    true,
		},
		{
			name:  "labelless hop next to short hop",
			query: "(a:Person)-->()-[:WORKS_AT]->(b)",
			want:  "(a:Person)-->()-[:WORKS_AT]->(b)",
			ok:    true,
		},
		{
			name:  "short flip right to left",
			query: "MATCH (c:City)-->(o:Organization)",
			want:  "MATCH (c:City)<--(o:Organization)",
			ok:    true,
		},
		{
			name:  "short flip left to right",
			query: "(o:Organization)<--(c:City)",
			want:  "(o:Organization)-->(c:City)",
			ok:    true,
		},
		{
			name:  "negation marker ignored",
			query: "(a:Organization)-[:!WORKS_AT]->(b:Person)",
			want:  "(a:Organization)<-[:!WORKS_AT]-(b:Person)",
			ok:    true,
		},
		{
			name:  "one alternative type known",
			query: "(a:Person)-[:LIKES|KNOWS]->(b:Person)",
			want:  "(a:Person)-[:LIKES|KNOWS]->(b:Person)",
			ok:    true,
		},
		{
			name:  "backquoted names",
			query: "(a:`Organization`)-[:`WORKS_AT`]->(b:Person)",
			want:  "(a:`Organization`)<-[:`WORKS_AT`]-(b:Person)",
			ok:    true,
		},
		{
			name:  "properties preserved",
			query: `MATCH (a:Organization {name: "Acme"})-[r:WORKS_AT {since: 2020}]->(b:Person {name: 'Bob'})`,
			want:  `MATCH (a:Organization {name: "Acme"})<-[r:WORKS_AT {since: 2020}]-(b:Person {name: 'Bob'})`,
			ok:    true,
		},
		{
			name:  "pattern inside string ignored",
			query: `MATCH (a:Person)-[:KNOWS]->(b:Person) WHERE a.bio = "(x:City)-[:LIKES]->(y:Car)" RETURN a`,
			want:  `MATCH (a:Person)-[:KNOWS]->(b:Person) WHERE a.bio = "(x:City)-[:LIKES]->(y:Car)" RETURN a`,
			ok:    true,
		},
		{
			name:  "no patterns",
			query: "RETURN 1",
			want:  "RETURN 1",
			ok:    true,
		},
	}

	schema := testSchema()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := relcheck.Process(tt.query, schema)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)

			if ok {
				again, ok := relcheck.Process(got, schema)
				assert.True(t, ok, "second run should succeed")
				assert.Equal(t, got, again, "second run should be a no-op")
			}
		})
	}
}

func TestProcess_SingleEdgeSchema(t *testing.T) {
	t.Parallel()

	schema := analysis.NewSchema(analysis.Edge{Source: "Person", Relationship: "KNOWS", Target: "Person"})

	got, ok := relcheck.Process("(a:Person)-[:LIKES]->(b:Car)", schema)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestProcess_EmptySchema(t *testing.T) {
	t.Parallel()

	got, ok := relcheck.Process("(a:Person)-[:KNOWS]->(b:Person)", nil)
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = relcheck.Process("(a)-[r]->(b)", nil)
	assert.True(t, ok)
	assert.Equal(t, "(a)-[r]->(b)", got)
}

func TestProcessTypedAndShortAreIndependent(t *testing.T) {
	t.Parallel()

	schema := testSchema()
	query := "MATCH (a:Organization)-[:WORKS_AT]->(b:Person), (c:City)-->(o:Organization)"

	typed, ok := relcheck.ProcessTyped(query, schema)
	require.True(t, ok)
	assert.Equal(t, "MATCH (a:Organization)<-[:WORKS_AT]-(b:Person), (c:City)-->(o:Organization)", typed)

	short, ok := relcheck.ProcessShort(query, schema)
	require.True(t, ok)
	assert.Equal(t, "MATCH (a:Organization)-[:WORKS_AT]->(b:Person), (c:City)<--(o:Organization)", short)

	both, ok := relcheck.Process(query, schema)
	require.True(t, ok)
	assert.Equal(t, "MATCH (a:Organization)<-[:WORKS_AT]-(b:Person), (c:City)<--(o:Organization)", both)
}

func TestEngineRun_Outcomes(t *testing.T) {
	t.Parallel()

	e := relcheck.NewEngine(testSchema())

	res := e.Run("MATCH (a:Person)-[:WORKS_AT]->(b:Organization)<-[:LOCATED_IN]-(c:City)-[r]-(d)", relcheck.ShapeTyped)
	require.True(t, res.OK())
	require.NoError(t, res.Err())

	want := []relcheck.Reason{relcheck.Consistent, relcheck.Corrected, relcheck.Undirected}
	if diff := cmp.Diff(want, reasons(res.Outcomes)); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}

	corrections := res.Corrections()
	require.Len(t, corrections, 1)
	assert.Equal(t, "(b:Organization)<-[:LOCATED_IN]-(c:City)", corrections[0].Original)
	assert.Equal(t, "(b:Organization)-[:LOCATED_IN]->(c:City)", corrections[0].Replacement)
	assert.True(t, res.Changed())
	assert.Equal(t, 1, res.Count(relcheck.Corrected))

	m := res.Outcomes[1].Match
	assert.Equal(t, relcheck.ShapeTyped, m.Shape)
	assert.Equal(t, "b", m.From.Variable)
	assert.Equal(t, []string{"City"}, m.To.Labels)
	assert.Equal(t, []string{"LOCATED_IN"}, m.Rel.Types)
	assert.True(t, m.Rel.LeftArrow)
	assert.False(t, m.Rel.RightArrow)
	assert.True(t, m.Rel.Directed())
}

func TestEngineRun_CollectsEveryFailure(t *testing.T) {
	t.Parallel()

	e := relcheck.NewEngine(testSchema())

	res := e.Run("(a:Alien)-[:LIKES]->(b:Person)-[:KNOWS]->(c:Person)<-[:KNOWS]->(d:Person)", relcheck.ShapeTyped)
	assert.False(t, res.OK())
	assert.Empty(t, res.Query)

	want := []relcheck.Reason{
		relcheck.UnknownRelationship,
		relcheck.UnknownClass,
		relcheck.Consistent,
		relcheck.AmbiguousDirection,
	}
	if diff := cmp.Diff(want, reasons(res.Outcomes)); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}

	err := res.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, relcheck.ErrUnknownRelationship)
	assert.ErrorIs(t, err, relcheck.ErrUnknownClass)
	assert.ErrorIs(t, err, relcheck.ErrAmbiguousDirection)
	assert.NotErrorIs(t, err, relcheck.ErrNoSchemaMatch)
	assert.Len(t, res.Failures(), 3)

	var matchErr *relcheck.MatchError
	require.True(t, errors.As(err, &matchErr))
	assert.Contains(t, matchErr.Error(), "(a:Alien)-[:LIKES]->(b:Person)")
}

func TestEngineRun_UndirectedStillClassified(t *testing.T) {
	t.Parallel()

	res := relcheck.NewEngine(testSchema()).Run("(a:Car)-[:LIKES]-(b:Person)", relcheck.ShapeTyped)
	assert.False(t, res.OK())
	assert.Empty(t, res.Query)

	want := []relcheck.Reason{relcheck.UnknownRelationship, relcheck.UnknownClass}
	if diff := cmp.Diff(want, reasons(res.Outcomes)); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_LongChain(t *testing.T) {
	t.Parallel()

	chain := "MATCH " + strings.Repeat("(a:Person)-[:KNOWS]->", 1999) + "(a:Person)-[:WORKS_AT]->(z:Organization)"
	query := chain + "<-[:LOCATED_IN]-(c:City)"
	want := chain + "-[:LOCATED_IN]->(c:City)"

	report := relcheck.NewEngine(testSchema()).Process(query)
	require.True(t, report.OK())
	assert.Equal(t, want, report.Query)
	assert.Equal(t, 2000, report.Passes[0].Count(relcheck.Consistent))
	assert.Equal(t, 1, report.Passes[0].Count(relcheck.Corrected))
}

func BenchmarkProcess_LongChain(b *testing.B) {
	schema := testSchema()
	query := "MATCH " + strings.Repeat("(a:Person)-[:KNOWS]->", 2000) + "(b)"

	for b.Loop() {
		relcheck.Process(query, schema)
	}
}

func TestEngineRun_NoSchemaMatchDetail(t *testing.T) {
	t.Parallel()

	res := relcheck.NewEngine(testSchema()).Run("(a:City)-[:KNOWS]->(b:Person)", relcheck.ShapeTyped)
	require.Len(t, res.Outcomes, 1)

	o := res.Outcomes[0]
	assert.Equal(t, relcheck.NoSchemaMatch, o.Reason)
	assert.Equal(t, "source :City, target :Person", o.Detail)
	assert.ErrorIs(t, o.Err(), relcheck.ErrNoSchemaMatch)
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	res := relcheck.NewEngine(testSchema()).Run("MATCH (o:Organization)<-[:WORKS_AT]-(p)-[r]-(q)", relcheck.ShapeTyped)
	require.Len(t, res.Outcomes, 2)

	assert.Equal(t,
		"typed (o:Organization)<-[:WORKS_AT]-(p) at 6: consistent (schema edge (Person,WORKS_AT,Organization))",
		res.Outcomes[0].String())
	assert.Equal(t, "typed (p)-[r]-(q) at 36: undirected", res.Outcomes[1].String())
}

func TestEngineProcess_StopsAfterFailedPass(t *testing.T) {
	t.Parallel()

	e := relcheck.NewEngine(testSchema())

	report := e.Process("(a:Person)-[:LIKES]->(b:Person), (c:City)-->(o:Organization)")
	assert.False(t, report.OK())
	assert.Empty(t, report.Query)
	require.Len(t, report.Passes, 1)
	assert.Equal(t, relcheck.ShapeTyped, report.Passes[0].Shape)
	assert.ErrorIs(t, report.Err(), relcheck.ErrUnknownRelationship)
}

func TestEngineProcess_FeedsPasses(t *testing.T) {
	t.Parallel()

	e := relcheck.NewEngine(testSchema())

	report := e.Process("(a:Organization)-[:WORKS_AT]->(b:Person)-->(c:Person)")
	require.True(t, report.OK())
	require.Len(t, report.Passes, 2)
	assert.Equal(t, report.Passes[0].Query, report.Passes[1].Input)
	assert.Equal(t, "(a:Organization)<-[:WORKS_AT]-(b:Person)-->(c:Person)", report.Query)

	want := []relcheck.Reason{relcheck.Corrected, relcheck.Consistent}
	if diff := cmp.Diff(want, reasons(report.Outcomes())); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_RewriteModes(t *testing.T) {
	t.Parallel()

	query := `MATCH (c:City)-->(o:Organization) WHERE o.note = "(c:City)-->(o:Organization)"`

	span := relcheck.NewEngine(testSchema()).Process(query)
	require.True(t, span.OK())
	assert.Equal(t, `MATCH (c:City)<--(o:Organization) WHERE o.note = "(c:City)-->(o:Organization)"`, span.Query)

	all := relcheck.NewEngine(testSchema(), relcheck.WithRewriteMode(relcheck.RewriteAllOccurrences)).Process(query)
	require.True(t, all.OK())
	assert.Equal(t, `MATCH (c:City)<--(o:Organization) WHERE o.note = "(c:City)<--(o:Organization)"`, all.Query)
}

func TestEngine_RepeatedPatternFlippedOnce(t *testing.T) {
	t.Parallel()

	query := "MATCH (c:City)-->(o:Organization) MATCH (c:City)-->(o:Organization)"
	want := "MATCH (c:City)<--(o:Organization) MATCH (c:City)<--(o:Organization)"

	for _, mode := range []relcheck.RewriteMode{relcheck.RewriteSpan, relcheck.RewriteAllOccurrences} {
		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			r := relcheck.NewEngine(testSchema(), relcheck.WithRewriteMode(mode)).Process(query)
			require.True(t, r.OK())
			assert.Equal(t, want, r.Query)
		})
	}
}

func TestEngine_Logging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	e := relcheck.NewEngine(testSchema(), relcheck.WithLogger(zap.New(core)))

	e.Run("MATCH (a:Person)<-[:WORKS_AT]-(b) MATCH (b:Organization) (x:Car)-[:KNOWS]->(y:Person)", relcheck.ShapeTyped)

	assert.Equal(t, 1, logs.FilterMessage("resolved labels").Len())
	assert.Equal(t, 1, logs.FilterMessage("pattern checked").Len())

	rejected := logs.FilterMessage("pattern rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, zap.WarnLevel, rejected[0].Level)
	assert.Equal(t, "unknown-class", rejected[0].ContextMap()["reason"])
}

func TestEngine_NilLoggerKeepsNop(t *testing.T) {
	t.Parallel()

	e := relcheck.NewEngine(testSchema(), relcheck.WithLogger(nil))
	assert.NotPanics(t, func() {
		e.Process("(a:Person)-[:KNOWS]->(b:Person)")
	})
	assert.Same(t, e.Schema(), e.Schema())
}
