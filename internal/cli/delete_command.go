package cli

import (
	"context"

	"notes/internal/errors"
)

// DeleteCommand handles the rm command
type DeleteCommand struct {
	app *App
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app}
}

// Execute deletes every referenced item. Positions refer to the store order
// before anything is removed.
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("ref", args, "usage: notes rm <ref...>"))
	}

	removed, err := c.app.itemsAPI.RemoveItems(ctx, args)
	if err != nil {
		return c.app.errorHandler.Handle("delete items", err)
	}

	for _, item := range removed {
		c.app.ok("Deleted %s: %s", item.Kind, item.Title())
	}
	return nil
}
