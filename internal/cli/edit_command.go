package cli

import (
	"context"
	"strings"

	"notes/internal/api"
	"notes/internal/errors"
)

// EditOptions are the flags of the edit command
type EditOptions struct {
	Due      string
	ClearDue bool
}

// EditCommand handles the edit command
type EditCommand struct {
	app  *App
	opts EditOptions
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App, opts EditOptions) *EditCommand {
	return &EditCommand{app: app, opts: opts}
}

// Execute replaces the content of the referenced item
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("content", args, "usage: notes edit <ref> [--due WHEN] [--clear-due] <content...>"))
	}

	item, err := c.app.itemsAPI.EditItem(ctx, args[0], strings.Join(args[1:], " "), api.EditOptions{
		When:     c.opts.Due,
		ClearDue: c.opts.ClearDue,
	})
	if err != nil {
		return c.app.errorHandler.Handle("edit item", err)
	}

	c.app.ok("Updated: %s", item.Title())
	return nil
}
