// Package runner evaluates dataset cases against the relationship checker.
package runner

import (
	"fmt"
	"path/filepath"
	"time"
)

// Action represents the type of case event.
type Action string

// Action constants for case events.
const (
	ActionRun    Action = "run"
	ActionPass   Action = "passed"
	ActionFail   Action = "failed"
	ActionReject Action = "rejected"
	ActionOutput Action = "output"
)

// IsTerminal returns true if this action ends a case.
func (a Action) IsTerminal() bool {
	return a == ActionPass || a == ActionFail || a == ActionReject
}

// Event represents a single case event emitted during evaluation.
type Event struct {
	Time    time.Time     // When the event occurred
	Action  Action        // What happened
	File    string        // Dataset file path
	Line    int           // 1-based line of the case in File
	Elapsed time.Duration // Time taken (for terminal events)
	Output  string        // Match outcome line (for ActionOutput)
	Error   error         // Why the checker rejected the statement (for ActionReject)

	Statement string
	Expected  string
	Actual    string
}

// ID returns a unique identifier: "file:line".
func (e Event) ID() string {
	return caseID(e.File, e.Line)
}

// Name returns the short display name: the file's base name and line.
func (e Event) Name() string {
	return caseID(filepath.Base(e.File), e.Line)
}

func caseID(file string, line int) string {
	return fmt.Sprintf("%s:%d", file, line)
}
