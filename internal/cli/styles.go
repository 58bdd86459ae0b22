package cli

import (
	"io"
	"os"
	"strings"

	"notes/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	boxChecked   = "☑"
	boxUnchecked = "☐"
	noteBullet   = "•"
)

// Styles renders command output for one writer.
type Styles struct {
	renderer *lipgloss.Renderer

	Title   lipgloss.Style
	Success lipgloss.Style
	Pending lipgloss.Style
	Accent  lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Done    lipgloss.Style
	Overdue lipgloss.Style
}

// NewStyles builds styles for w. Colour is dropped for the mono theme,
// --no-color and NO_COLOR; a non-terminal writer gets plain text anyway.
func NewStyles(w io.Writer, display config.DisplayConfig) *Styles {
	r := lipgloss.NewRenderer(w)
	if display.NoColor || display.Theme == "mono" || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		renderer: r,
		Title:    r.NewStyle().Bold(true),
		Success:  r.NewStyle().Foreground(lipgloss.Color("42")),
		Pending:  r.NewStyle().Foreground(lipgloss.Color("214")),
		Accent:   r.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:    r.NewStyle().Faint(true),
		Error:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning:  r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Done:     r.NewStyle().Faint(true).Strikethrough(true),
		Overdue:  r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Plain reports whether the styles emit no escape sequences.
func (s *Styles) Plain() bool {
	return s.renderer.ColorProfile() == termenv.Ascii
}

// Panel draws a rounded border around lines.
func (s *Styles) Panel(lines []string) string {
	return s.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// truncate shortens s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
