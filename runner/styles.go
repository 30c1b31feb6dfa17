package runner

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette.
var (
	colorAccent = lipgloss.Color("#7D56F4")
	colorText   = lipgloss.Color("#DDDDDD")
	colorMuted  = lipgloss.Color("#9B9B9B")
	colorDim    = lipgloss.Color("#626262")
	colorPass   = lipgloss.Color("#04B575")
	colorFail   = lipgloss.Color("#FF5F87")
	colorReject = lipgloss.Color("#FFAF00")
)

// Styles holds the lipgloss styles used by the pretty formatter and the TUI.
type Styles struct {
	Bold     lipgloss.Style
	Dim      lipgloss.Style
	Muted    lipgloss.Style
	Path     lipgloss.Style
	CaseName lipgloss.Style
	Pass     lipgloss.Style
	Fail     lipgloss.Style
	Reject   lipgloss.Style
	Running  lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style

	SymbolPass   string
	SymbolFail   string
	SymbolReject string
}

// DefaultStyles returns styles rendered for stdout.
func DefaultStyles() *Styles {
	return NewStyles(lipgloss.DefaultRenderer())
}

// NewStyles returns styles bound to renderer. A renderer writing to a
// non-terminal drops all colors.
func NewStyles(renderer *lipgloss.Renderer) *Styles {
	style := renderer.NewStyle

	return &Styles{
		Bold:     style().Bold(true).Foreground(colorAccent),
		Dim:      style().Foreground(colorDim),
		Muted:    style().Foreground(colorMuted),
		Path:     style().Foreground(colorMuted).Underline(true),
		CaseName: style().Foreground(colorText),
		Pass:     style().Foreground(colorPass),
		Fail:     style().Foreground(colorFail).Bold(true),
		Reject:   style().Foreground(colorReject),
		Running:  style().Foreground(colorAccent),

		ProgressFilled: style().Foreground(colorAccent),
		ProgressEmpty:  style().Foreground(colorDim),

		SymbolPass:   "✓",
		SymbolFail:   "✗",
		SymbolReject: "⊘",
	}
}

// SpinnerFrames returns the frames of the running-case spinner.
func SpinnerFrames() []string {
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}

// ProgressChars returns the filled and empty progress bar characters.
func ProgressChars() (string, string) {
	return "━", "─"
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
