package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"notes/internal/api"
	"notes/internal/config"
	"notes/internal/store"

	"go.uber.org/zap"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// BackupStore is the recovery side of the store: copies of saved data that
// could not be read
type BackupStore interface {
	Backups(ctx context.Context) ([]store.Backup, error)
	ReadBackup(ctx context.Context, name string) ([]byte, error)
	DeleteBackup(ctx context.Context, name string) (string, error)
}

// App carries what every command handler needs
type App struct {
	itemsAPI     api.ItemsAPI
	backups      BackupStore
	config       *config.Config
	out          io.Writer
	errOut       io.Writer
	styles       *Styles
	errorHandler *ErrorHandler
}

// NewAppWithOutput creates an application writing to the given streams
func NewAppWithOutput(itemsAPI api.ItemsAPI, cfg *config.Config, out, errOut io.Writer, log *zap.Logger) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &App{
		itemsAPI:     itemsAPI,
		config:       cfg,
		out:          out,
		errOut:       errOut,
		styles:       NewStyles(out, cfg.Display),
		errorHandler: NewErrorHandler(log),
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

// ok prints a confirmation line
func (a *App) ok(format string, args ...interface{}) {
	fmt.Fprintln(a.out, a.styles.Success.Render("✔")+" "+fmt.Sprintf(format, args...))
}

// warn prints a non-fatal problem to the error stream
func (a *App) warn(err error) {
	fmt.Fprintln(a.errOut, a.styles.Warning.Render("warning:")+" "+a.errorHandler.Warning(err))
}

// shortID is the id prefix shown next to items
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
