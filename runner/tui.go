package runner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rlch/relcheck/dataset"
)

// TUIFormatter implements Formatter with an animated terminal UI.
type TUIFormatter struct {
	program  *tea.Program
	model    *tuiModel
	out      io.Writer
	done     chan struct{}
	mu       sync.Mutex
	finished bool
}

// NewTUIFormatter creates a TUI formatter with animations.
func NewTUIFormatter(w io.Writer, files []FileTree) *TUIFormatter {
	model := newTUIModel(files, NewStyles(lipgloss.NewRenderer(w)))

	opts := []tea.ProgramOption{
		tea.WithOutput(w),
		tea.WithoutSignalHandler(),
		tea.WithAltScreen(), // Keep the animation out of scrollback
	}

	// Input is only read from a terminal
	if !IsTerminal(w) {
		opts = append(opts, tea.WithInput(nil))
	}

	return &TUIFormatter{
		program: tea.NewProgram(model, opts...),
		model:   model,
		out:     w,
		done:    make(chan struct{}),
	}
}

// Start begins the TUI event loop. Call this before running cases.
func (t *TUIFormatter) Start() error {
	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()

	// Give the program a moment to initialize
	time.Sleep(20 * time.Millisecond)

	return nil
}

// Format sends an event to the TUI.
func (t *TUIFormatter) Format(event Event, _ *Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return nil
	}

	t.program.Send(caseEventMsg(event))

	return nil
}

// Summary waits for completion and renders final output.
func (t *TUIFormatter) Summary(result *Result) error {
	t.mu.Lock()
	t.finished = true
	t.mu.Unlock()

	t.program.Send(doneMsg{result: result})
	t.program.Quit()
	<-t.done

	// The alternate screen is gone, so the static view lands in scrollback.
	_, err := fmt.Fprintln(t.out, t.model.FinalView())

	return err
}

// -----------------------------------------------------------------------------
// Tree Model - Built from the case list before evaluation
// -----------------------------------------------------------------------------

// caseStatus tracks the execution state of a case.
type caseStatus int

const (
	statusPending caseStatus = iota
	statusRunning
	statusPass
	statusFail
	statusReject
)

// caseNode is a single case in the tree.
type caseNode struct {
	id      string
	name    string
	status  caseStatus
	elapsed time.Duration
	expect  string
	actual  string
	err     error
}

// FileTree holds the cases of one dataset file.
type FileTree struct {
	path  string
	cases []*caseNode
}

// BuildFileTrees groups cases by file, preserving first-seen file order and
// the case order within each file.
func BuildFileTrees(cases []*dataset.Case) []FileTree {
	var trees []FileTree

	index := make(map[string]int)

	for _, c := range cases {
		i, ok := index[c.File]
		if !ok {
			i = len(trees)
			index[c.File] = i
			trees = append(trees, FileTree{path: c.File})
		}

		trees[i].cases = append(trees[i].cases, &caseNode{
			id:   c.ID(),
			name: fmt.Sprintf("line %d", c.Line),
		})
	}

	return trees
}

// -----------------------------------------------------------------------------
// Bubbletea Model
// -----------------------------------------------------------------------------

// tuiModel is the bubbletea model for the eval UI.
type tuiModel struct {
	styles  *Styles
	spinner spinner.Model

	width  int
	height int

	files []FileTree
	idx   map[string]*caseNode

	counters counters

	startTime time.Time
	endTime   time.Time

	finalResult *Result
	isDone      bool
}

type counters struct {
	total    int
	passed   int
	failed   int
	rejected int
}

// Messages
type (
	tickMsg      time.Time
	caseEventMsg Event
	doneMsg      struct{ result *Result }
)

func newTUIModel(files []FileTree, styles *Styles) *tuiModel {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerFrames(),
		FPS:    time.Second / 10,
	}
	s.Style = styles.Running

	idx := make(map[string]*caseNode)

	for _, f := range files {
		for _, node := range f.cases {
			idx[node.id] = node
		}
	}

	return &tuiModel{
		styles:    styles,
		spinner:   s,
		files:     files,
		idx:       idx,
		startTime: time.Now(),
		width:     80,
		height:    24,
		counters:  counters{total: len(idx)},
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.tick(),
	)
}

func (m *tuiModel) tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.QuitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case tickMsg:
		if !m.isDone {
			cmds = append(cmds, m.tick())
		}

	case spinner.TickMsg:
		if !m.isDone {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case caseEventMsg:
		m.handleEvent(Event(msg))

	case doneMsg:
		m.isDone = true
		m.endTime = time.Now()
		m.finalResult = msg.result
	}

	return m, tea.Batch(cmds...)
}

func (m *tuiModel) handleEvent(event Event) {
	node, ok := m.idx[event.ID()]
	if !ok {
		return
	}

	switch event.Action {
	case ActionRun:
		node.status = statusRunning

	case ActionPass:
		node.status = statusPass
		node.elapsed = event.Elapsed
		m.counters.passed++

	case ActionFail:
		node.status = statusFail
		node.elapsed = event.Elapsed
		node.expect = event.Expected
		node.actual = event.Actual
		m.counters.failed++

	case ActionReject:
		node.status = statusReject
		node.elapsed = event.Elapsed
		node.expect = event.Expected
		node.err = event.Error
		m.counters.rejected++

	case ActionOutput:
		// Outcome lines are only shown by the streaming formatters
	}
}

// clearEOL is the ANSI escape sequence to clear from cursor to end of line.
const clearEOL = "\033[K"

// FinalView renders the complete output printed after the TUI exits.
func (m *tuiModel) FinalView() string {
	lines := m.lines()
	lines = append(lines, "", m.renderSummary())

	return strings.Join(lines, "\n")
}

func (m *tuiModel) View() string {
	lines := m.lines()

	if m.isDone {
		lines = append(lines, "", m.renderSummary())
	}

	// Clear to EOL to prevent rendering artifacts
	for i := range lines {
		lines[i] += clearEOL
	}

	return strings.Join(lines, "\n") + "\n"
}

func (m *tuiModel) lines() []string {
	lines := []string{m.renderHeader(), m.renderProgress(), ""}

	for _, f := range m.files {
		lines = append(lines, m.renderFile(f)...)
	}

	return lines
}

func (m *tuiModel) renderHeader() string {
	logo := m.styles.Bold.Render("relcheck")
	subtitle := m.styles.Dim.Render(" eval")

	var status string

	switch {
	case m.isDone && (m.counters.failed > 0 || m.counters.rejected > 0):
		status = m.styles.Fail.Render("FAIL")
	case m.isDone:
		status = m.styles.Pass.Render("PASS")
	case m.countRunning() > 0:
		status = m.styles.Running.Render(fmt.Sprintf("running %d", m.countRunning()))
	default:
		status = m.styles.Dim.Render("starting")
	}

	return fmt.Sprintf("%s%s  %s", logo, subtitle, status)
}

func (m *tuiModel) countRunning() int {
	count := 0

	for _, node := range m.idx {
		if node.status == statusRunning {
			count++
		}
	}

	return count
}

func (m *tuiModel) renderProgress() string {
	done := m.counters.passed + m.counters.failed + m.counters.rejected
	total := max(m.counters.total, 1)

	pct := float64(done) / float64(total)

	elapsed := time.Since(m.startTime)
	if !m.endTime.IsZero() {
		elapsed = m.endTime.Sub(m.startTime)
	}

	elapsedStr := m.styles.Dim.Render(fmt.Sprintf("[%s]", formatDuration(elapsed)))

	barWidth := 30
	filled := min(int(pct*float64(barWidth)), barWidth)
	filledChar, emptyChar := ProgressChars()

	bar := m.styles.ProgressFilled.Render(strings.Repeat(filledChar, filled)) +
		m.styles.ProgressEmpty.Render(strings.Repeat(emptyChar, barWidth-filled))

	counter := m.styles.Muted.Render(fmt.Sprintf("%d/%d", done, m.counters.total))

	return fmt.Sprintf("%s %s %s", elapsedStr, bar, counter)
}

func (m *tuiModel) renderFile(f FileTree) []string {
	lines := []string{m.styles.Path.Render(f.path)}

	for i, node := range f.cases {
		isLast := i == len(f.cases)-1

		branch, detailPrefix := "├─", "│ "
		if isLast {
			branch, detailPrefix = "╰─", "  "
		}

		dur := ""
		if node.status != statusPending && node.status != statusRunning {
			dur = m.styles.Dim.Render(fmt.Sprintf("  [%s]", formatDuration(node.elapsed)))
		}

		lines = append(lines, m.styles.Dim.Render(branch+" ")+
			m.renderSymbol(node.status)+" "+
			m.styles.CaseName.Render(node.name)+dur)

		switch node.status {
		case statusFail:
			detail := fmt.Sprintf("expected %s, got %s", node.expect, node.actual)
			lines = append(lines, m.styles.Dim.Render(detailPrefix+"   ")+m.styles.Fail.Render(detail))
		case statusReject:
			if node.err != nil {
				lines = append(lines, m.styles.Dim.Render(detailPrefix+"   ")+m.styles.Reject.Render(node.err.Error()))
			}
		case statusPending, statusRunning, statusPass:
		}
	}

	return append(lines, "")
}

func (m *tuiModel) renderSymbol(status caseStatus) string {
	switch status {
	case statusPending:
		return m.styles.Dim.Render("⋯")
	case statusRunning:
		return m.spinner.View()
	case statusPass:
		return m.styles.Pass.Render(m.styles.SymbolPass)
	case statusFail:
		return m.styles.Fail.Render(m.styles.SymbolFail)
	case statusReject:
		return m.styles.Reject.Render(m.styles.SymbolReject)
	default:
		return " "
	}
}

func (m *tuiModel) renderSummary() string {
	return renderCounts(m.styles, m.counters.passed, m.counters.failed, m.counters.rejected, m.counters.total)
}

// -----------------------------------------------------------------------------
// TUIHandler - Bridges TUI to Handler interface
// -----------------------------------------------------------------------------

// TUIHandler wraps TUIFormatter to implement Handler.
type TUIHandler struct {
	formatter *TUIFormatter
	stderr    io.Writer
}

// NewTUIHandler creates a handler that draws cases to w.
func NewTUIHandler(w, stderr io.Writer, cases []*dataset.Case) *TUIHandler {
	return &TUIHandler{
		formatter: NewTUIFormatter(w, BuildFileTrees(cases)),
		stderr:    stderr,
	}
}

// Start initializes the TUI.
func (h *TUIHandler) Start() error {
	return h.formatter.Start()
}

// Event sends an event to the TUI.
func (h *TUIHandler) Event(_ context.Context, event Event, result *Result) error {
	return h.formatter.Format(event, result)
}

// Err writes to stderr.
func (h *TUIHandler) Err(text string) error {
	_, err := h.stderr.Write([]byte(text + "\n"))

	return err
}

// Summary renders the final summary.
func (h *TUIHandler) Summary(result *Result) error {
	return h.formatter.Summary(result)
}
