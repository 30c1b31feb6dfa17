package runner

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// Result accumulates case results during evaluation.
type Result struct {
	mu sync.RWMutex

	StartTime time.Time
	EndTime   time.Time

	Total    int
	Passed   int
	Failed   int
	Rejected int

	// Cases indexed by ID: "queries.csv:12"
	Cases map[string]*CaseResult

	// Order preserves completion order
	Order []string
}

// NewResult creates an initialized Result.
func NewResult() *Result {
	return &Result{
		StartTime: time.Now(),
		Cases:     make(map[string]*CaseResult),
	}
}

// Add records a terminal event in the result.
func (r *Result) Add(event Event) {
	if !event.Action.IsTerminal() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := event.ID()

	r.Cases[id] = &CaseResult{
		File:      event.File,
		Line:      event.Line,
		Status:    event.Action,
		Elapsed:   event.Elapsed,
		Error:     event.Error,
		Statement: event.Statement,
		Expected:  event.Expected,
		Actual:    event.Actual,
	}
	r.Order = append(r.Order, id)
	r.Total++

	switch event.Action {
	case ActionPass:
		r.Passed++
	case ActionFail:
		r.Failed++
	case ActionReject:
		r.Rejected++
	case ActionRun, ActionOutput:
		// Not terminal actions
	}
}

// AddOutput appends output to an existing case result.
func (r *Result) AddOutput(event Event) {
	if event.Action != ActionOutput {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cr, ok := r.Cases[event.ID()]; ok {
		cr.Output = append(cr.Output, event.Output)
	}
}

// Merge folds other into r. Timing spans both results.
func (r *Result) Merge(other *Result) {
	if other == nil || other == r {
		return
	}

	other.mu.RLock()
	defer other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range other.Order {
		if _, dup := r.Cases[id]; !dup {
			r.Order = append(r.Order, id)
		}

		r.Cases[id] = other.Cases[id]
	}

	r.Total += other.Total
	r.Passed += other.Passed
	r.Failed += other.Failed
	r.Rejected += other.Rejected

	if other.StartTime.Before(r.StartTime) {
		r.StartTime = other.StartTime
	}

	if other.EndTime.After(r.EndTime) {
		r.EndTime = other.EndTime
	}
}

// Finish marks the result as complete.
func (r *Result) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
}

// Elapsed returns the total evaluation time.
func (r *Result) Elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}

	return r.EndTime.Sub(r.StartTime)
}

// Ok returns true if every case produced its expected answer.
func (r *Result) Ok() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Failed == 0 && r.Rejected == 0
}

// Misses returns failed and rejected cases ordered by file and line.
func (r *Result) Misses() []*CaseResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var misses []*CaseResult

	for _, id := range r.Order {
		cr := r.Cases[id]
		if cr.Status == ActionFail || cr.Status == ActionReject {
			misses = append(misses, cr)
		}
	}

	slices.SortFunc(misses, func(a, b *CaseResult) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Line, b.Line))
	})

	return misses
}

// CaseResult holds the outcome of a single case.
type CaseResult struct {
	File    string
	Line    int
	Status  Action
	Elapsed time.Duration
	Error   error
	Output  []string

	Statement string
	Expected  string
	Actual    string
}

// ID returns "file:line".
func (cr *CaseResult) ID() string {
	return caseID(cr.File, cr.Line)
}
