package cli

import (
	"context"
	"fmt"

	"notes/internal/errors"
	"notes/internal/store"
)

// BackupsOptions selects what the backups command does. With no option set
// it lists.
type BackupsOptions struct {
	Show   bool
	Delete bool
	Purge  bool
}

// BackupsCommand handles the backups command
type BackupsCommand struct {
	app  *App
	opts BackupsOptions
}

// NewBackupsCommand creates a new backups command handler
func NewBackupsCommand(app *App, opts BackupsOptions) *BackupsCommand {
	return &BackupsCommand{app: app, opts: opts}
}

// Execute lists, prints or deletes backups of unreadable saved data
func (c *BackupsCommand) Execute(ctx context.Context, args []string) error {
	switch {
	case c.opts.Show:
		if len(args) != 1 {
			return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("name", args, "usage: notes backups --show <name>"))
		}
		return c.show(ctx, args[0])
	case c.opts.Delete:
		if len(args) == 0 {
			return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("name", args, "usage: notes backups --delete <name...>"))
		}
		return c.delete(ctx, args)
	case len(args) > 0:
		return c.app.errorHandler.HandleSimple(errors.NewInvalidInputError("name", args, "names are only used with --show or --delete"))
	}

	backups, err := c.app.backups.Backups(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("list backups", err)
	}
	if c.opts.Purge {
		names := make([]string, len(backups))
		for i, b := range backups {
			names[i] = b.Key
		}
		if len(names) == 0 {
			c.app.printf("No backups found\n")
			return nil
		}
		return c.delete(ctx, names)
	}

	c.list(backups)
	return nil
}

func (c *BackupsCommand) list(backups []store.Backup) {
	if len(backups) == 0 {
		c.app.printf("No backups found\n")
		return
	}

	st := c.app.styles
	now := timeNow()
	c.app.printf("%s\n", st.Title.Render(fmt.Sprintf("Backups %d", len(backups))))
	for _, b := range backups {
		saved := b.SavedAt.In(now.Location()).Format(c.app.config.Display.TimeFormat)
		c.app.printf("  %s  %s  %s\n", b.Key, saved, st.Muted.Render(fmt.Sprintf("%d bytes", b.Size)))
	}
	c.app.printf("%s\n", st.Muted.Render("Inspect one with 'notes backups --show <name>'"))
}

func (c *BackupsCommand) show(ctx context.Context, name string) error {
	data, err := c.app.backups.ReadBackup(ctx, name)
	if err != nil {
		return c.app.errorHandler.Handle("show backup", err)
	}
	_, err = c.app.out.Write(data)
	return err
}

func (c *BackupsCommand) delete(ctx context.Context, names []string) error {
	for _, name := range names {
		key, err := c.app.backups.DeleteBackup(ctx, name)
		if err != nil {
			return c.app.errorHandler.Handle("delete backup", err)
		}
		c.app.ok("Deleted backup: %s", key)
	}
	return nil
}
