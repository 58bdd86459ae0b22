// Package tui is the interactive item browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"notes/internal/api"
	"notes/internal/config"
	"notes/internal/domain"
	"notes/internal/errors"
	"notes/internal/projection"
	"notes/internal/reminder"
	"notes/internal/store"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeDue
)

// Messages delivered from outside the event loop
type (
	storeChangedMsg struct{ event store.EventType }
	reminderMsg     struct{ reminder reminder.Reminder }
	warningMsg      struct{ err error }
)

var views = []projection.View{projection.ViewAll, projection.ViewNotes, projection.ViewTasks}

var viewNames = map[projection.View]string{
	projection.ViewAll:   "All",
	projection.ViewNotes: "Notes",
	projection.ViewTasks: "Tasks by due date",
}

// Model is the Bubble Tea model of the item browser
type Model struct {
	ctx    context.Context
	api    api.ItemsAPI
	events <-chan tea.Msg
	styles styles
	now    func() time.Time

	list    list.Model
	view    int
	listing *api.Listing

	width, height int

	// Inline add, edit and due date input
	mode     mode
	addKind  domain.Kind
	target   string
	input    textinput.Model
	inputErr string

	status    string
	statusErr bool
}

// New creates the model and loads the initial listing. events may be nil.
func New(ctx context.Context, itemsAPI api.ItemsAPI, cfg *config.Config, events <-chan tea.Msg) Model {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	st := newStyles(cfg.Display)

	l := list.New(nil, itemDelegate{styles: st, width: cfg.Display.ContentWidth, now: time.Now}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = st.title
	l.Styles.HelpStyle = st.help
	l.Styles.PaginationStyle = st.help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	bindings := []key.Binding{
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add note")),
		key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add task")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "due")),
		key.NewBinding(key.WithKeys("x", "d"), key.WithHelp("x", "delete")),
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "view")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return bindings }
	l.AdditionalFullHelpKeys = func() []key.Binding { return bindings }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = cfg.Validation.ContentMaxLength

	m := Model{
		ctx:    ctx,
		api:    itemsAPI,
		events: events,
		styles: st,
		now:    time.Now,
		list:   l,
		input:  ti,
		width:  80,
		height: 24,
	}
	for i, v := range views {
		if string(v) == cfg.Commands.ListDefaultView {
			m.view = i
		}
	}
	m.layout()
	m.refresh("")
	return m
}

// Init waits for the first store event or reminder
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// waitForEvent receives the next message sent from outside the program
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case storeChangedMsg:
		cmd := m.refresh("")
		return m, tea.Batch(cmd, waitForEvent(m.events))
	case reminderMsg:
		body := strings.SplitN(msg.reminder.Body, "\n", 2)[0]
		m.setStatus(fmt.Sprintf("⏰ %s: %s", msg.reminder.Title, body), false)
		return m, waitForEvent(m.events)
	case warningMsg:
		m.setStatus("warning: "+errors.GetUserMessage(msg.err), true)
		return m, waitForEvent(m.events)
	}

	if m.mode != modeBrowse {
		return m.updateInput(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if cmd, handled := m.handleKey(k); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKey runs the browse mode bindings. Keys it does not handle go to the list.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit, true
	case "esc":
		if m.list.FilterState() == list.Unfiltered {
			return tea.Quit, true
		}
		return nil, false
	case "tab":
		m.view = (m.view + 1) % len(views)
		m.list.ResetFilter()
		cmd := m.refresh("")
		m.list.ResetSelected()
		return cmd, true
	case " ":
		return m.toggleSelected(), true
	case "a":
		m.startInput(modeAdd, "", "New note...")
		m.addKind = domain.KindNote
		return nil, true
	case "t":
		m.startInput(modeAdd, "", "New task...")
		m.addKind = domain.KindTask
		return nil, true
	case "e":
		if it, ok := m.selected(); ok {
			m.target = it.item.ID
			m.startInput(modeEdit, it.item.Content, "Edit item...")
		}
		return nil, true
	case "D":
		if it, ok := m.selected(); ok {
			if !it.item.IsTask() {
				m.setStatus("Only tasks have due dates", true)
				return nil, true
			}
			m.target = it.item.ID
			current := ""
			if due := it.item.DueDate(); due != nil {
				current = due.In(m.now().Location()).Format("2006-01-02 15:04")
			}
			m.startInput(modeDue, current, "tomorrow, 2025-01-05 17:00, 3d or none")
		}
		return nil, true
	case "x", "d":
		return m.deleteSelected(), true
	}
	return nil, false
}

func (m *Model) toggleSelected() tea.Cmd {
	it, ok := m.selected()
	if !ok {
		return nil
	}
	item, err := m.api.ToggleDone(m.ctx, it.item.ID)
	if err != nil {
		m.setError(err)
		return nil
	}
	if item.IsDone() {
		m.setStatus("Completed: "+item.Title(), false)
	} else {
		m.setStatus("Reopened: "+item.Title(), false)
	}
	return m.refresh("")
}

func (m *Model) deleteSelected() tea.Cmd {
	it, ok := m.selected()
	if !ok {
		return nil
	}
	if _, err := m.api.RemoveItems(m.ctx, []string{it.item.ID}); err != nil {
		m.setError(err)
		return nil
	}
	m.setStatus("Deleted: "+it.item.Title(), false)
	return m.refresh("")
}

// updateInput handles keys while the inline input is open
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			cmd := m.submit()
			return m, cmd
		case "esc":
			m.stopInput()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())

	var (
		item   *domain.Item
		err    error
		status string
	)
	switch m.mode {
	case modeAdd:
		if value == "" {
			m.inputErr = "Content cannot be empty"
			return nil
		}
		item, err = m.api.AddItem(m.ctx, value, m.addKind, "")
		status = "Added " + string(m.addKind)
	case modeEdit:
		if value == "" {
			m.inputErr = "Content cannot be empty"
			return nil
		}
		item, err = m.api.EditItem(m.ctx, m.target, value, api.EditOptions{})
		status = "Updated"
	case modeDue:
		if value == "" {
			value = "none"
		}
		item, err = m.api.SetDue(m.ctx, m.target, value)
		status = "Due date cleared"
		if err == nil && item.HasDueDate() {
			status = "Due " + item.FormatDue(m.now())
		}
	}
	if err != nil {
		m.inputErr = errors.GetUserMessage(err)
		return nil
	}

	m.stopInput()
	m.setStatus(status+": "+item.Title(), false)
	return m.refresh(item.ID)
}

func (m *Model) startInput(md mode, value, placeholder string) {
	m.mode = md
	m.inputErr = ""
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.layout()
}

func (m *Model) stopInput() {
	m.mode = modeBrowse
	m.target = ""
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
	m.layout()
}

// refresh reloads the current view. The selection follows selectID, or the
// previously selected item when selectID is empty.
func (m *Model) refresh(selectID string) tea.Cmd {
	if selectID == "" {
		if it, ok := m.selected(); ok {
			selectID = it.item.ID
		}
	}

	listing, err := m.api.ListItems(m.ctx, api.ListOptions{View: views[m.view]})
	if err != nil {
		m.setError(err)
		return nil
	}
	m.listing = listing

	items := make([]list.Item, 0, len(listing.Items))
	selected := -1
	for i, item := range listing.Items {
		items = append(items, listItem{item: item, position: listing.Position(item.ID)})
		if item.ID == selectID {
			selected = i
		}
	}
	cmd := m.list.SetItems(items)
	if selected >= 0 && m.list.FilterState() == list.Unfiltered {
		m.list.Select(selected)
	}
	m.list.Title = m.header()
	return cmd
}

func (m *Model) header() string {
	st := m.styles
	stats := m.listing.Stats
	title := fmt.Sprintf("%s %s   %s %d  %s %d",
		st.title.Render("Notes"),
		st.muted.Render(viewNames[views[m.view]]),
		st.success.Render(boxChecked), stats.Done,
		st.pending.Render(boxUnchecked), stats.Pending,
	)
	if stats.Overdue > 0 {
		title += fmt.Sprintf("  %s %d", st.overdue.Render("overdue"), stats.Overdue)
	}
	return title + fmt.Sprintf("  %s %d", st.accent.Render("Total"), stats.Total())
}

func (m *Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) setError(err error) {
	m.setStatus(errors.GetUserMessage(err), true)
}

// layout sizes the list to the window, leaving room for the input and status lines
func (m *Model) layout() {
	listHeight := m.height - 4
	if m.mode != modeBrowse {
		listHeight -= 4
	}
	if listHeight < 1 {
		listHeight = 1
	}
	m.list.SetSize(m.width-4, listHeight)
}

func (m Model) View() string {
	content := m.list.View()

	if m.mode != modeBrowse {
		title := map[mode]string{
			modeAdd:  "Add " + string(m.addKind),
			modeEdit: "Edit item",
			modeDue:  "Set due date",
		}[m.mode]
		if m.inputErr != "" {
			title += "  " + m.styles.errStyle.Render(m.inputErr)
		}
		content += "\n" + m.styles.panel(title+"\n"+m.input.View())
	}

	if m.status != "" {
		style := m.styles.muted
		if m.statusErr {
			style = m.styles.errStyle
		}
		content += "\n" + style.Render(m.status)
	}
	return m.styles.panel(content)
}
