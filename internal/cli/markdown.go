package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders item content for the terminal. Rendering problems
// fall back to the raw text.
func renderMarkdown(md string, width int, style string, plain bool) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if plain || style == "" {
		style = "notty"
	}

	r, err := glamour.NewTermRenderer(
		// WithAutoStyle can block on terminal queries; the style comes from config.
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
