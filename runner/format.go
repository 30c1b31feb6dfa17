package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Output format names.
const (
	FormatDots    = "dots"
	FormatVerbose = "verbose"
	FormatJSON    = "json"
	FormatPretty  = "pretty"
	FormatTUI     = "tui"
)

// Formats lists every format name accepted by the eval command.
var Formats = []string{FormatDots, FormatVerbose, FormatJSON, FormatPretty, FormatTUI}

// Formatter renders case events and results.
type Formatter interface {
	Format(event Event, result *Result) error
	Summary(result *Result) error
}

// FormatHandler is a Handler that delegates to a Formatter.
type FormatHandler struct {
	formatter Formatter
	stderr    io.Writer
}

// NewFormatHandler creates a handler that formats events.
func NewFormatHandler(f Formatter, stderr io.Writer) *FormatHandler {
	return &FormatHandler{formatter: f, stderr: stderr}
}

// Event formats the event.
func (h *FormatHandler) Event(_ context.Context, event Event, result *Result) error {
	return h.formatter.Format(event, result)
}

// Err writes to stderr.
func (h *FormatHandler) Err(text string) error {
	_, err := h.stderr.Write([]byte(text + "\n"))

	return err
}

// Summary renders the final summary.
func (h *FormatHandler) Summary(result *Result) error {
	return h.formatter.Summary(result)
}

// NewFormatter creates a streaming formatter by name. The TUI needs the
// case list up front and is built with NewTUIHandler instead.
func NewFormatter(name string, w io.Writer) (Formatter, error) {
	switch name {
	case FormatDots, "":
		return NewDotsFormatter(w), nil
	case FormatVerbose:
		return NewVerboseFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatPretty:
		return NewPrettyFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownFormat, name, strings.Join(Formats, ", "))
	}
}

func statusLine(result *Result) string {
	status := "PASS"
	if !result.Ok() {
		status = "FAIL"
	}

	return fmt.Sprintf("%s %d cases, %d passed, %d failed, %d rejected in %s",
		status,
		result.Total,
		result.Passed,
		result.Failed,
		result.Rejected,
		result.Elapsed().Round(time.Millisecond),
	)
}

// -----------------------------------------------------------------------------
// Dots Formatter
// -----------------------------------------------------------------------------

// DotsFormatter is a minimal formatter that prints dots for progress.
type DotsFormatter struct {
	w     io.Writer
	count int
}

// NewDotsFormatter creates a dots formatter.
func NewDotsFormatter(w io.Writer) *DotsFormatter {
	return &DotsFormatter{w: w}
}

const lineWidth = 80

// Format prints a single character per terminal event.
func (d *DotsFormatter) Format(event Event, _ *Result) error {
	var char string

	switch event.Action {
	case ActionPass:
		char = "."
	case ActionFail:
		char = "F"
	case ActionReject:
		char = "R"
	case ActionRun, ActionOutput:
		return nil
	}

	_, err := fmt.Fprint(d.w, char)
	d.count++

	if d.count%lineWidth == 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	return err
}

// Summary prints the misses and the final counts.
func (d *DotsFormatter) Summary(result *Result) error {
	if d.count > 0 && d.count%lineWidth != 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	_, _ = fmt.Fprintln(d.w)

	for _, cr := range result.Misses() {
		switch cr.Status {
		case ActionFail:
			_, _ = fmt.Fprintf(d.w, "FAIL %s\n", cr.ID())
			_, _ = fmt.Fprintf(d.w, "  statement: %s\n", cr.Statement)
			_, _ = fmt.Fprintf(d.w, "  expected:  %s\n", cr.Expected)
			_, _ = fmt.Fprintf(d.w, "  actual:    %s\n", cr.Actual)
		case ActionReject:
			_, _ = fmt.Fprintf(d.w, "REJECT %s\n", cr.ID())
			_, _ = fmt.Fprintf(d.w, "  statement: %s\n", cr.Statement)
			_, _ = fmt.Fprintf(d.w, "  expected:  %s\n", cr.Expected)

			if cr.Error != nil {
				_, _ = fmt.Fprintf(d.w, "  error:     %v\n", cr.Error)
			}
		case ActionPass, ActionRun, ActionOutput:
			// Not misses
		}

		_, _ = fmt.Fprintln(d.w)
	}

	_, err := fmt.Fprintln(d.w, statusLine(result))

	return err
}

// -----------------------------------------------------------------------------
// Verbose Formatter
// -----------------------------------------------------------------------------

// VerboseFormatter prints every case and each of its match outcomes.
type VerboseFormatter struct {
	w io.Writer
}

// NewVerboseFormatter creates a verbose formatter.
func NewVerboseFormatter(w io.Writer) *VerboseFormatter {
	return &VerboseFormatter{w: w}
}

// Format prints each event as it occurs.
func (v *VerboseFormatter) Format(event Event, _ *Result) error {
	switch event.Action {
	case ActionRun:
		_, _ = fmt.Fprintf(v.w, "=== RUN    %s\n", event.ID())
	case ActionPass:
		_, _ = fmt.Fprintf(v.w, "--- PASS:   %s (%s)\n", event.ID(), event.Elapsed)
	case ActionFail:
		_, _ = fmt.Fprintf(v.w, "--- FAIL:   %s (%s)\n", event.ID(), event.Elapsed)
		_, _ = fmt.Fprintf(v.w, "        expected: %s\n", event.Expected)
		_, _ = fmt.Fprintf(v.w, "        actual:   %s\n", event.Actual)
	case ActionReject:
		_, _ = fmt.Fprintf(v.w, "--- REJECT: %s (%s)\n", event.ID(), event.Elapsed)
		_, _ = fmt.Fprintf(v.w, "        expected: %s\n", event.Expected)
	case ActionOutput:
		_, _ = fmt.Fprintf(v.w, "    %s\n", event.Output)
	}

	return nil
}

// Summary prints the final results.
func (v *VerboseFormatter) Summary(result *Result) error {
	_, _ = fmt.Fprintln(v.w)

	status := "PASS"
	if !result.Ok() {
		status = "FAIL"
	}

	_, _ = fmt.Fprintf(v.w, "%s\n", status)
	_, _ = fmt.Fprintf(v.w, "  %d total, %d passed, %d failed, %d rejected\n",
		result.Total,
		result.Passed,
		result.Failed,
		result.Rejected,
	)
	_, _ = fmt.Fprintf(v.w, "  elapsed: %s\n", result.Elapsed().Round(time.Millisecond))

	return nil
}

// -----------------------------------------------------------------------------
// JSON Formatter
// -----------------------------------------------------------------------------

// JSONFormatter outputs newline-delimited JSON events.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Time      string  `json:"time"`
	Action    string  `json:"action"`
	File      string  `json:"file,omitempty"`
	Line      int     `json:"line,omitempty"`
	Case      string  `json:"case"`
	Elapsed   float64 `json:"elapsed,omitempty"`
	Output    string  `json:"output,omitempty"`
	Error     string  `json:"error,omitempty"`
	Statement string  `json:"statement,omitempty"`
	Expected  *string `json:"expected,omitempty"`
	Actual    *string `json:"actual,omitempty"`
}

// Format outputs a JSON event.
func (j *JSONFormatter) Format(event Event, _ *Result) error {
	je := jsonEvent{
		Time:   event.Time.Format(time.RFC3339Nano),
		Action: string(event.Action),
		File:   event.File,
		Line:   event.Line,
		Case:   event.ID(),
		Output: event.Output,
	}

	if event.Action.IsTerminal() {
		je.Elapsed = event.Elapsed.Seconds()
		je.Statement = event.Statement
		je.Expected = &event.Expected
		je.Actual = &event.Actual
	}

	if event.Error != nil {
		je.Error = event.Error.Error()
	}

	return j.enc.Encode(je)
}

type jsonSummary struct {
	Action   string  `json:"action"`
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Rejected int     `json:"rejected"`
	Elapsed  float64 `json:"elapsed"`
	Ok       bool    `json:"ok"`
}

// Summary outputs the final JSON summary.
func (j *JSONFormatter) Summary(result *Result) error {
	return j.enc.Encode(jsonSummary{
		Action:   "summary",
		Total:    result.Total,
		Passed:   result.Passed,
		Failed:   result.Failed,
		Rejected: result.Rejected,
		Elapsed:  result.Elapsed().Seconds(),
		Ok:       result.Ok(),
	})
}

// -----------------------------------------------------------------------------
// Pretty Formatter
// -----------------------------------------------------------------------------

// PrettyFormatter prints one colored line per case. Colors are dropped when
// w is not a terminal.
type PrettyFormatter struct {
	w      io.Writer
	styles *Styles
}

// NewPrettyFormatter creates a pretty formatter.
func NewPrettyFormatter(w io.Writer) *PrettyFormatter {
	return &PrettyFormatter{w: w, styles: NewStyles(lipgloss.NewRenderer(w))}
}

// Format prints a line for each terminal event.
func (p *PrettyFormatter) Format(event Event, _ *Result) error {
	s := p.styles

	var symbol string

	switch event.Action {
	case ActionPass:
		symbol = s.Pass.Render(s.SymbolPass)
	case ActionFail:
		symbol = s.Fail.Render(s.SymbolFail)
	case ActionReject:
		symbol = s.Reject.Render(s.SymbolReject)
	case ActionRun, ActionOutput:
		return nil
	}

	dur := s.Dim.Render(fmt.Sprintf("[%s]", formatDuration(event.Elapsed)))
	_, err := fmt.Fprintf(p.w, "%s %s %s\n", symbol, s.CaseName.Render(event.ID()), dur)

	return err
}

// Summary prints the misses and colored counts.
func (p *PrettyFormatter) Summary(result *Result) error {
	s := p.styles

	misses := result.Misses()
	if len(misses) > 0 {
		_, _ = fmt.Fprintln(p.w)
	}

	for _, cr := range misses {
		label, style := "FAIL", s.Fail
		if cr.Status == ActionReject {
			label, style = "REJECT", s.Reject
		}

		_, _ = fmt.Fprintf(p.w, "%s %s\n", style.Render(label), s.Path.Render(cr.ID()))
		_, _ = fmt.Fprintf(p.w, "  %s %s\n", s.Dim.Render("statement"), cr.Statement)
		_, _ = fmt.Fprintf(p.w, "  %s  %s\n", s.Dim.Render("expected"), s.Pass.Render(cr.Expected))

		if cr.Status == ActionFail {
			_, _ = fmt.Fprintf(p.w, "  %s    %s\n", s.Dim.Render("actual"), s.Fail.Render(cr.Actual))
		}

		for _, out := range cr.Output {
			_, _ = fmt.Fprintf(p.w, "    %s\n", s.Muted.Render(out))
		}
	}

	_, _ = fmt.Fprintln(p.w)
	_, err := fmt.Fprintln(p.w, renderCounts(s, result.Passed, result.Failed, result.Rejected, result.Total))

	return err
}

// renderCounts renders "3 passed │ 1 failed (4 total)".
func renderCounts(s *Styles, passed, failed, rejected, total int) string {
	var parts []string

	if passed > 0 {
		parts = append(parts, s.Pass.Render(fmt.Sprintf("%d passed", passed)))
	}

	if failed > 0 {
		parts = append(parts, s.Fail.Render(fmt.Sprintf("%d failed", failed)))
	}

	if rejected > 0 {
		parts = append(parts, s.Reject.Render(fmt.Sprintf("%d rejected", rejected)))
	}

	if len(parts) == 0 {
		return s.Dim.Render("  No cases run")
	}

	sep := s.Dim.Render(" │ ")

	return "  " + strings.Join(parts, sep) + " " + s.Muted.Render(fmt.Sprintf("(%d total)", total))
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}

	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
