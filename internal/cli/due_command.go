package cli

import (
	"context"
	"strings"

	"notes/internal/errors"
)

// DueCommand handles the due command
type DueCommand struct {
	app *App
}

// NewDueCommand creates a new due command handler
func NewDueCommand(app *App) *DueCommand {
	return &DueCommand{app: app}
}

// Execute sets or clears the due date of the referenced task.
// The date may span several arguments, as in: notes due 2 2025-01-05 17:00
func (c *DueCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("when", args, "usage: notes due <ref> <when|none>"))
	}

	item, err := c.app.itemsAPI.SetDue(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return c.app.errorHandler.Handle("set due date", err)
	}

	if due := item.FormatDue(timeNow()); due != "" {
		c.app.ok("Due %s: %s", due, item.Title())
	} else {
		c.app.ok("Cleared due date: %s", item.Title())
	}
	return nil
}
