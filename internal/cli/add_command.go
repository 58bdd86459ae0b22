package cli

import (
	"context"
	"strings"

	"notes/internal/domain"
	"notes/internal/errors"
)

// AddOptions are the flags of the add command
type AddOptions struct {
	Task bool
	Due  string
}

// AddCommand handles the add command
type AddCommand struct {
	app  *App
	opts AddOptions
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App, opts AddOptions) *AddCommand {
	return &AddCommand{app: app, opts: opts}
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	content := strings.Join(args, " ")
	if strings.TrimSpace(content) == "" {
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("content", content, "usage: notes add [--task] [--due WHEN] <content...>"))
	}

	kind := domain.KindNote
	if c.opts.Task || c.opts.Due != "" {
		kind = domain.KindTask
	}

	item, err := c.app.itemsAPI.AddItem(ctx, content, kind, c.opts.Due)
	if err != nil {
		return c.app.errorHandler.Handle("add item", err)
	}

	line := "Added " + string(item.Kind) + " " + c.app.styles.Accent.Render("#1") + ": " + item.Title()
	if due := item.FormatDue(timeNow()); due != "" {
		line += " " + c.app.styles.Muted.Render("(due "+due+")")
	}
	c.app.ok("%s %s", line, c.app.styles.Muted.Render(shortID(item.ID)))
	return nil
}
