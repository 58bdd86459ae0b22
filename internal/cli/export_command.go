package cli

import (
	"context"
	"strings"

	"notes/internal/api"
	"notes/internal/errors"
)

// ExportCommand handles the export command
type ExportCommand struct {
	app    *App
	format string
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App, format string) *ExportCommand {
	return &ExportCommand{app: app, format: format}
}

// Execute writes the whole collection to the output stream
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	format := c.format
	if format == "" {
		format = c.app.config.Commands.ExportDefaultFormat
	}
	format = strings.ToLower(format)

	supported := false
	for _, f := range api.ExportFormats {
		if f == format {
			supported = true
		}
	}
	if !supported {
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("format", format, "supported formats are "+strings.Join(api.ExportFormats, ", ")))
	}

	if err := c.app.itemsAPI.ExportItems(ctx, format, c.app.out); err != nil {
		return c.app.errorHandler.Handle("export items", err)
	}
	return nil
}
