package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"notes/internal/api"
	"notes/internal/domain"
	"notes/internal/errors"
	"notes/internal/projection"

	"github.com/charmbracelet/lipgloss"
)

// ListOptions are the flags of the list command
type ListOptions struct {
	View    string
	Sort    string
	Group   bool
	Columns bool
}

// ListCommand handles the list command
type ListCommand struct {
	app  *App
	opts ListOptions
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App, opts ListOptions) *ListCommand {
	return &ListCommand{app: app, opts: opts}
}

// Execute runs the list command
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	view := c.opts.View
	if view == "" {
		view = c.app.config.Commands.ListDefaultView
	}

	var opts api.ListOptions
	switch projection.View(view) {
	case projection.ViewAll, projection.ViewNotes, projection.ViewTasks:
		opts.View = projection.View(view)
	default:
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("view", view, "view must be one of all, notes, tasks"))
	}
	switch c.opts.Sort {
	case "", "store":
	case "due":
		opts.SortByDue = true
	default:
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("sort", c.opts.Sort, "sort must be due"))
	}

	listing, err := c.app.itemsAPI.ListItems(ctx, opts)
	if err != nil {
		return c.app.errorHandler.Handle("list items", err)
	}

	c.printHeader(listing)
	if len(listing.Items) == 0 {
		c.app.printf("No items found\n")
		return nil
	}

	switch {
	case c.opts.Group:
		c.printGrouped(listing)
	case c.opts.Columns:
		c.printColumns(listing)
	default:
		c.app.printf("%s\n", strings.Join(c.renderLines(listing, listing.Items), "\n"))
	}
	return nil
}

func (c *ListCommand) printHeader(listing *api.Listing) {
	st := c.app.styles
	stats := listing.Stats
	parts := []string{
		fmt.Sprintf("%d notes", stats.Notes),
		fmt.Sprintf("%d tasks", stats.Tasks),
		st.Success.Render(fmt.Sprintf("%d done", stats.Done)),
	}
	if stats.Overdue > 0 {
		parts = append(parts, st.Overdue.Render(fmt.Sprintf("%d overdue", stats.Overdue)))
	}
	c.app.printf("%s   %s\n", st.Title.Render("Notes"), strings.Join(parts, st.Muted.Render(" · ")))
}

func (c *ListCommand) printGrouped(listing *api.Listing) {
	notes := projection.ByKind(listing.Items, domain.KindNote)
	pending, done := projection.SplitDone(listing.Items)

	sections := []struct {
		title string
		items []domain.Item
	}{
		{"Notes", notes},
		{"Pending", pending},
		{"Done", done},
	}
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		c.app.printf("\n%s %s\n", c.app.styles.Title.Render(section.title), c.app.styles.Muted.Render(strconv.Itoa(len(section.items))))
		c.app.printf("%s\n", strings.Join(c.renderLines(listing, section.items), "\n"))
	}
}

func (c *ListCommand) printColumns(listing *api.Listing) {
	left, right := projection.SplitAlternating(listing.Items)
	leftBlock := strings.Join(c.renderLines(listing, left), "\n")
	rightBlock := strings.Join(c.renderLines(listing, right), "\n")
	c.app.printf("%s\n", lipgloss.JoinHorizontal(lipgloss.Top, leftBlock, "    ", rightBlock))
}

// renderLines renders one line per item:
//
//	 3  ☐ Call the bank (due Tomorrow)
func (c *ListCommand) renderLines(listing *api.Listing, items []domain.Item) []string {
	st := c.app.styles
	width := len(strconv.Itoa(listing.Stats.Total()))
	lines := make([]string, 0, len(items))

	for _, item := range items {
		pos := fmt.Sprintf("%*d", width, listing.Position(item.ID))
		title := truncate(item.Title(), c.app.config.Display.ContentWidth)

		var marker string
		switch {
		case !item.IsTask():
			marker = st.Accent.Render(noteBullet)
		case item.IsDone():
			marker = st.Success.Render(boxChecked)
			title = st.Done.Render(title)
		default:
			marker = st.Muted.Render(boxUnchecked)
		}

		line := fmt.Sprintf("%s  %s %s", st.Muted.Render(pos), marker, title)
		if due := item.FormatDue(listing.Now); due != "" {
			if item.IsOverdue(listing.Now) {
				line += " " + st.Overdue.Render("(overdue "+due+")")
			} else {
				line += " " + st.Pending.Render("(due "+due+")")
			}
		}
		lines = append(lines, line)
	}
	return lines
}
