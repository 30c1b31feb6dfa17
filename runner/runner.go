package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rlch/relcheck"
	"github.com/rlch/relcheck/dataset"
)

// Runner evaluates dataset cases.
type Runner struct {
	handler  Handler
	failFast bool
	filter   string
	workers  int
	logger   *zap.Logger
	mode     relcheck.RewriteMode
}

// Option configures a Runner.
type Option func(*Runner)

// WithHandler sets the event handler.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithFailFast stops on the first failed or rejected case.
func WithFailFast(enabled bool) Option {
	return func(r *Runner) {
		r.failFast = enabled
	}
}

// WithFilter sets an expression selecting which cases run. The expression
// must evaluate to a bool and may refer to statement, expected, file and line.
//
//	line > 10 && statement contains "WORKS_AT"
func WithFilter(expression string) Option {
	return func(r *Runner) {
		r.filter = expression
	}
}

// WithWorkers bounds how many cases are evaluated at once. Zero or less
// means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithLogger sets the logger handed to each case's engine.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRewriteMode sets how the engine applies corrections.
func WithRewriteMode(mode relcheck.RewriteMode) Option {
	return func(r *Runner) {
		r.mode = mode
	}
}

// New creates a Runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: zap.NewNop(),
		mode:   relcheck.RewriteSpan,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run evaluates cases concurrently and returns the results. Cases share no
// state, so completion order is not case order.
func (r *Runner) Run(ctx context.Context, cases []*dataset.Case) (*Result, error) {
	selected, err := Select(r.filter, cases)
	if err != nil {
		return nil, err
	}

	result := NewResult()

	handlers := []Handler{NewResultHandler()}
	if r.handler != nil {
		handlers = append(handlers, r.handler)
	}

	if r.failFast {
		handlers = append(handlers, NewStopOnFailHandler(1))
	}

	handler := NewMultiHandler(handlers...)

	var mu sync.Mutex

	emit := func(ctx context.Context, event Event) error {
		mu.Lock()
		defer mu.Unlock()

		return handler.Event(ctx, event, result)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workerCount())

	for _, c := range selected {
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
				return r.runCase(egCtx, c, emit)
			}
		})
	}

	err = eg.Wait()

	result.Finish()

	if errors.Is(err, ErrMaxFailures) {
		return result, nil
	}

	return result, err
}

// RunByFile runs the cases of each dataset file in turn, files in the order
// they first appear, and merges the results. With fail-fast, files after
// the first one with a miss are not run.
func (r *Runner) RunByFile(ctx context.Context, cases []*dataset.Case) (*Result, error) {
	total := NewResult()
	defer total.Finish()

	for _, group := range groupByFile(cases) {
		result, err := r.Run(ctx, group)
		total.Merge(result)

		if err != nil {
			return total, fmt.Errorf("running %s: %w", group[0].File, err)
		}

		if r.failFast && !result.Ok() {
			break
		}
	}

	return total, nil
}

// groupByFile splits cases by File, keeping case order within each file.
func groupByFile(cases []*dataset.Case) [][]*dataset.Case {
	var (
		groups [][]*dataset.Case
		index  = make(map[string]int)
	)

	for _, c := range cases {
		i, ok := index[c.File]
		if !ok {
			i = len(groups)
			index[c.File] = i
			groups = append(groups, nil)
		}

		groups[i] = append(groups[i], c)
	}

	return groups
}

func (r *Runner) runCase(ctx context.Context, c *dataset.Case, emit func(context.Context, Event) error) error {
	start := time.Now()

	_ = emit(ctx, Event{
		Time:      start,
		Action:    ActionRun,
		File:      c.File,
		Line:      c.Line,
		Statement: c.Statement,
	})

	engine := relcheck.NewEngine(c.Schema,
		relcheck.WithLogger(r.logger.With(zap.String("case", c.ID()))),
		relcheck.WithRewriteMode(r.mode),
	)
	report := engine.Process(c.Statement)

	event := Event{
		Time:      time.Now(),
		File:      c.File,
		Line:      c.Line,
		Elapsed:   time.Since(start),
		Statement: c.Statement,
		Expected:  c.Expected,
		Actual:    report.Query,
	}

	switch {
	case report.Query == c.Expected:
		event.Action = ActionPass
	case !report.OK():
		event.Action = ActionReject
		event.Error = report.Err()
	default:
		event.Action = ActionFail
	}

	stop := emit(ctx, event)

	for _, o := range report.Outcomes() {
		_ = emit(ctx, Event{
			Time:   time.Now(),
			Action: ActionOutput,
			File:   c.File,
			Line:   c.Line,
			Output: o.String(),
		})
	}

	return stop
}

func (r *Runner) workerCount() int {
	if r.workers > 0 {
		return r.workers
	}

	return runtime.GOMAXPROCS(0)
}

// filterEnv is the environment a filter expression is evaluated in.
type filterEnv struct {
	Statement string `expr:"statement"`
	Expected  string `expr:"expected"`
	File      string `expr:"file"`
	Line      int    `expr:"line"`
}

// CompileFilter compiles a case filter expression.
func CompileFilter(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	return program, nil
}

// Select returns the cases matching the filter expression. An empty
// expression selects every case.
func Select(expression string, cases []*dataset.Case) ([]*dataset.Case, error) {
	if expression == "" {
		return cases, nil
	}

	program, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}

	var selected []*dataset.Case

	for _, c := range cases {
		out, err := expr.Run(program, filterEnv{
			Statement: c.Statement,
			Expected:  c.Expected,
			File:      c.File,
			Line:      c.Line,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFilter, c.ID(), err)
		}

		if ok, _ := out.(bool); ok {
			selected = append(selected, c)
		}
	}

	return selected, nil
}
