package tui

import (
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

type styles struct {
	renderer *lipgloss.Renderer

	title    lipgloss.Style
	success  lipgloss.Style
	pending  lipgloss.Style
	accent   lipgloss.Style
	muted    lipgloss.Style
	errStyle lipgloss.Style
	done     lipgloss.Style
	overdue  lipgloss.Style
	selected lipgloss.Style
	help     lipgloss.Style
}

func newStyles(display config.DisplayConfig) styles {
	r := lipgloss.NewRenderer(os.Stdout)
	if display.NoColor || display.Theme == "mono" || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		r.SetColorProfile(termenv.Ascii)
	}

	return styles{
		renderer: r,
		title:    r.NewStyle().Bold(true),
		success:  r.NewStyle().Foreground(lipgloss.Color("42")),
		pending:  r.NewStyle().Foreground(lipgloss.Color("214")),
		accent:   r.NewStyle().Foreground(lipgloss.Color("12")),
		muted:    r.NewStyle().Faint(true),
		errStyle: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		done:     r.NewStyle().Faint(true).Strikethrough(true),
		overdue:  r.NewStyle().Foreground(lipgloss.Color("9")),
		selected: r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		help:     r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (s styles) panel(inner string) string {
	return s.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Render(inner)
}
