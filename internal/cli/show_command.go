package cli

import (
	"context"
	"fmt"
	"strings"

	"notes/internal/errors"
)

// ShowCommand handles the show command
type ShowCommand struct {
	app *App
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App) *ShowCommand {
	return &ShowCommand{app: app}
}

// Execute prints one item with its content rendered as markdown
func (c *ShowCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("ref", args, "usage: notes show <ref>"))
	}

	detail, err := c.app.itemsAPI.GetItem(ctx, args[0])
	if err != nil {
		return c.app.errorHandler.Handle("show item", err)
	}

	st := c.app.styles
	display := c.app.config.Display
	item := detail.Item
	now := timeNow()

	meta := []string{string(item.Kind)}
	if item.IsTask() {
		if item.IsDone() {
			meta = append(meta, st.Success.Render("done"))
		} else {
			meta = append(meta, st.Pending.Render("pending"))
		}
		if due := item.FormatDue(now); due != "" {
			label := "due " + due
			if item.IsOverdue(now) {
				label = st.Overdue.Render("overdue " + due)
			}
			meta = append(meta, label)
		}
	}
	meta = append(meta, "created "+item.CreatedAt.In(now.Location()).Format(display.TimeFormat))

	header := fmt.Sprintf("%s %s", st.Title.Render(fmt.Sprintf("#%d", detail.Position)), strings.Join(meta, st.Muted.Render(" · ")))
	lines := []string{header, st.Muted.Render(item.ID), ""}

	body := item.Content
	if display.Markdown {
		body = renderMarkdown(item.Content, display.ContentWidth, display.MarkdownStyle, st.Plain())
	}
	lines = append(lines, body)

	c.app.printf("%s\n", st.Panel(lines))
	return nil
}
