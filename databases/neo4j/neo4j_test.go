//nolint:testpackage
package neo4j

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rlch/relcheck"
	"github.com/rlch/relcheck/analysis"
)

func TestSource_ImplementsInterface(_ *testing.T) {
	var _ relcheck.SchemaSource = (*Source)(nil)
}

func TestSource_Registration(t *testing.T) {
	found := false
	for _, name := range relcheck.RegisteredSources() {
		if name == Name {
			found = true

			break
		}
	}

	if !found {
		t.Error("neo4j source not registered")
	}
}

func TestSource_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  any
	}{
		{"wrong type", "bolt://localhost"},
		{"config without neo4j", &relcheck.Config{}},
		{"missing uri", &relcheck.Neo4jConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := relcheck.NewSource(Name, tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExpandEdges(t *testing.T) {
	tests := []struct {
		name    string
		sources any
		rel     any
		targets any
		want    []analysis.Edge
	}{
		{
			name:    "single labels",
			sources: []any{"Person"},
			rel:     "WORKS_AT",
			targets: []any{"Organization"},
			want:    []analysis.Edge{{Source: "Person", Relationship: "WORKS_AT", Target: "Organization"}},
		},
		{
			name:    "multi label expands",
			sources: []any{"Person", "Employee"},
			rel:     "WORKS_AT",
			targets: []string{"Organization"},
			want: []analysis.Edge{
				{Source: "Person", Relationship: "WORKS_AT", Target: "Organization"},
				{Source: "Employee", Relationship: "WORKS_AT", Target: "Organization"},
			},
		},
		{
			name:    "quoted names",
			sources: ":`Big Corp`",
			rel:     "`OWNS`",
			targets: []any{"`Asset`"},
			want:    []analysis.Edge{{Source: "Big Corp", Relationship: "OWNS", Target: "Asset"}},
		},
		{
			name:    "unlabelled node",
			sources: []any{},
			rel:     "KNOWS",
			targets: []any{"Person"},
			want:    nil,
		},
		{
			name:    "missing type",
			sources: []any{"Person"},
			rel:     nil,
			targets: []any{"Person"},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandEdges(tt.sources, tt.rel, tt.targets)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("expandEdges() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDedupEdges(t *testing.T) {
	edges := []analysis.Edge{
		{Source: "Person", Relationship: "KNOWS", Target: "Person"},
		{Source: "Organization", Relationship: "LOCATED_IN", Target: "City"},
		{Source: "Person", Relationship: "KNOWS", Target: "Person"},
	}

	want := []analysis.Edge{
		{Source: "Organization", Relationship: "LOCATED_IN", Target: "City"},
		{Source: "Person", Relationship: "KNOWS", Target: "Person"},
	}

	if diff := cmp.Diff(want, dedupEdges(edges)); diff != "" {
		t.Errorf("dedupEdges() mismatch (-want +got):\n%s", diff)
	}
}

func TestSource_Edges(t *testing.T) {
	src := setupIntegrationTest(t)
	defer func() { _ = src.Close() }()

	if got := src.Name(); got != Name {
		t.Errorf("Name() = %q, want %q", got, Name)
	}

	edges, err := src.Edges(context.Background())
	if err != nil {
		t.Fatalf("Edges() error: %v", err)
	}

	for _, e := range edges {
		if err := e.Validate(); err != nil {
			t.Errorf("invalid edge: %v", err)
		}
	}
}

func setupIntegrationTest(t *testing.T) *Source {
	t.Helper()

	uri := os.Getenv("RELCHECK_NEO4J_URI")
	if uri == "" {
		t.Skip("RELCHECK_NEO4J_URI not set, skipping integration test")
	}

	cfg := &relcheck.Neo4jConfig{
		URI:      uri,
		Username: os.Getenv("RELCHECK_NEO4J_USER"),
		Password: os.Getenv("RELCHECK_NEO4J_PASS"),
	}

	src, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	return src
}
