package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"notes/internal/domain"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// listItem adapts a store item to bubbles/list.Item
type listItem struct {
	item     domain.Item
	position int
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.item.Title() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Content }

// itemDelegate renders one item per line
type itemDelegate struct {
	styles styles
	width  int // content width, 0 for unlimited
	now    func() time.Time
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	st := d.styles
	now := d.now()

	title := it.item.Title()
	if d.width > 1 && len([]rune(title)) > d.width {
		title = string([]rune(title)[:d.width-1]) + "…"
	}

	var marker string
	switch {
	case !it.item.IsTask():
		marker = st.accent.Render(noteBullet)
	case it.item.IsDone():
		marker = st.success.Render(boxChecked)
		title = st.done.Render(title)
	default:
		marker = st.muted.Render(boxUnchecked)
	}

	line := fmt.Sprintf("%s %s %s", st.muted.Render(fmt.Sprintf("%3d", it.position)), marker, title)
	if due := it.item.FormatDue(now); due != "" {
		if it.item.IsOverdue(now) {
			line += " " + st.overdue.Render("(overdue "+due+")")
		} else {
			line += " " + st.pending.Render("(due "+due+")")
		}
	}

	prefix := "  "
	if index == m.Index() {
		prefix = st.selected.Render("> ")
	}
	fmt.Fprint(w, prefix+strings.TrimRight(line, " "))
}
