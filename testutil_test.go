package relcheck_test

import (
	"github.com/rlch/relcheck"
	"github.com/rlch/relcheck/analysis"
)

// testSchema is the schema most engine tests run against.
func testSchema() *analysis.Schema {
	return analysis.NewSchema(
		analysis.Edge{Source: "Person", Relationship: "WORKS_AT", Target: "Organization"},
		analysis.Edge{Source: "Person", Relationship: "KNOWS", Target: "Person"},
		analysis.Edge{Source: "Organization", Relationship: "LOCATED_IN", Target: "City"},
	)
}

// reasons returns the reason of every outcome, in order.
func reasons(outcomes []relcheck.Outcome) []relcheck.Reason {
	out := make([]relcheck.Reason, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, o.Reason)
	}

	return out
}
