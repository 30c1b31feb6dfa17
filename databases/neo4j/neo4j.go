// Package neo4j provides a relcheck SchemaSource that introspects a live Neo4j database.
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rlch/relcheck"
	"github.com/rlch/relcheck/analysis"
)

// Name is the registered source name.
const Name = "neo4j"

// ErrInvalidConfig is returned when an invalid configuration is provided.
var ErrInvalidConfig = errors.New("neo4j: expected *relcheck.Neo4jConfig")

//nolint:gochecknoinits // Source self-registration pattern
func init() {
	relcheck.RegisterSource(Name, func(cfg any) (relcheck.SchemaSource, error) {
		switch c := cfg.(type) {
		case *relcheck.Neo4jConfig:
			return New(context.Background(), c)
		case *relcheck.Config:
			if c.Neo4j == nil {
				return nil, fmt.Errorf("%w: no neo4j section in config", ErrInvalidConfig)
			}

			return New(context.Background(), c.Neo4j)
		default:
			return nil, fmt.Errorf("%w, got %T", ErrInvalidConfig, cfg)
		}
	})
}

// edgeQuery returns every distinct (labels, type, labels) combination that
// occurs in the graph.
const edgeQuery = `
MATCH (a)-[r]->(b)
RETURN DISTINCT labels(a) AS sources, type(r) AS relationship, labels(b) AS targets
`

// Source reads schema edges from Neo4j.
type Source struct {
	driver neo4j.DriverWithContext
	db     string
}

// New connects to Neo4j and verifies connectivity.
func New(ctx context.Context, cfg *relcheck.Neo4jConfig) (*Source, error) {
	if cfg == nil || cfg.URI == "" {
		return nil, fmt.Errorf("%w: uri is required", ErrInvalidConfig)
	}

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to create driver: %w", err)
	}

	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		_ = driver.Close(ctx)

		return nil, fmt.Errorf("neo4j: failed to connect: %w", err)
	}

	return &Source{driver: driver, db: cfg.Database}, nil
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return Name
}

// Edges returns one edge per (source label, relationship type, target label)
// seen in the graph. Nodes with several labels contribute every label.
func (s *Source) Edges(ctx context.Context) ([]analysis.Edge, error) {
	sessionCfg := neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead}
	if s.db != "" {
		sessionCfg.DatabaseName = s.db
	}

	session := s.driver.NewSession(ctx, sessionCfg)
	defer func() { _ = session.Close(ctx) }()

	result, err := session.Run(ctx, edgeQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("neo4j: query execution failed: %w", err)
	}

	var edges []analysis.Edge

	for result.Next(ctx) {
		record := result.Record()
		if len(record.Values) < 3 {
			continue
		}

		edges = append(edges, expandEdges(record.Values[0], record.Values[1], record.Values[2])...)
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("neo4j: failed to read results: %w", err)
	}

	return dedupEdges(edges), nil
}

// Close releases the driver.
func (s *Source) Close() error {
	if s.driver == nil {
		return nil
	}

	err := s.driver.Close(context.Background())
	if err != nil {
		return fmt.Errorf("neo4j: failed to close driver: %w", err)
	}

	return nil
}

// expandEdges turns one result row into edges, one per label pair.
func expandEdges(sources, relationship, targets any) []analysis.Edge {
	rel := extractName(relationship)
	if rel == "" {
		return nil
	}

	var edges []analysis.Edge

	for _, src := range extractLabels(sources) {
		for _, tgt := range extractLabels(targets) {
			edges = append(edges, analysis.Edge{Source: src, Relationship: rel, Target: tgt})
		}
	}

	return edges
}

// extractLabels accepts a label list as returned by labels(n), or a single
// label string.
func extractLabels(v any) []string {
	switch t := v.(type) {
	case string:
		if name := extractName(t); name != "" {
			return []string{name}
		}
	case []string:
		return extractLabels(toAny(t))
	case []any:
		labels := make([]string, 0, len(t))
		for _, item := range t {
			if name := extractName(item); name != "" {
				labels = append(labels, name)
			}
		}

		return labels
	}

	return nil
}

func extractName(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}

	s = strings.TrimPrefix(s, ":")
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, "`")

	return s
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}

	return out
}

// dedupEdges removes repeated edges and sorts the rest for stable output.
func dedupEdges(edges []analysis.Edge) []analysis.Edge {
	slices.SortFunc(edges, func(a, b analysis.Edge) int {
		return strings.Compare(a.String(), b.String())
	})

	return slices.Compact(edges)
}
