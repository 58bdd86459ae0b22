package cli

import (
	"context"

	"notes/internal/errors"
)

// DoneCommand handles the done command
type DoneCommand struct {
	app *App
}

// NewDoneCommand creates a new done command handler
func NewDoneCommand(app *App) *DoneCommand {
	return &DoneCommand{app: app}
}

// Execute toggles completion of the referenced task
func (c *DoneCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("ref", args, "usage: notes done <ref>"))
	}

	item, err := c.app.itemsAPI.ToggleDone(ctx, args[0])
	if err != nil {
		return c.app.errorHandler.Handle("complete item", err)
	}

	if item.IsDone() {
		c.app.ok("Completed: %s", item.Title())
	} else {
		c.app.ok("Reopened: %s", item.Title())
	}
	return nil
}
