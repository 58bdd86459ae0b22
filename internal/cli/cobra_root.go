package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"notes/internal/api"
	"notes/internal/codec"
	"notes/internal/config"
	"notes/internal/logging"
	"notes/internal/storage"
	"notes/internal/store"
	"notes/internal/tui"
	"notes/internal/validation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// StorageOpener opens the key-value storage selected by the configuration
type StorageOpener func(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.KV, error)

// session is the store opened for one invocation
type session struct {
	kv    storage.KV
	store *store.Store
	api   api.ItemsAPI
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	config *config.Config
	open   StorageOpener
	out    io.Writer
	errOut io.Writer

	log     *zap.Logger
	app     *App
	session *session

	warnMu   sync.Mutex
	warnSink func(error)
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(cfg *config.Config, open StorageOpener, out, errOut io.Writer) *RootCommand {
	root := &RootCommand{
		config: cfg,
		open:   open,
		out:    out,
		errOut: errOut,
		log:    zap.NewNop(),
	}

	root.cmd = &cobra.Command{
		Use:   "notes",
		Short: "A local notes and tasks manager",
		Long: `notes keeps free-form notes and tasks with optional due dates on this device.

FEATURES:
  • Capture notes and tasks, newest first
  • Complete tasks, give them due dates and get reminded in the interactive UI
  • List by kind, by due date, grouped or in two columns
  • Render notes as markdown and export everything as JSON, YAML or CSV
  • Fully configurable via environment variables and command-line flags

EXAMPLES:
  notes add "Ideas for the garden"          # Add a note
  notes add --task "Call the bank"          # Add a task
  notes add --due tomorrow "Pay rent"       # Add a task due tomorrow at 09:00
  notes list --view tasks --sort due        # Tasks, soonest due first
  notes done 2                              # Toggle the second item
  notes due 2 "2025-01-05 17:00"            # Set a due date
  notes rm 3 5 1f3a                         # Delete by position or id prefix
  notes show 1                              # Show an item with markdown rendering
  notes export --format csv > notes.csv     # Export to CSV
  notes backups                             # List copies of unreadable saved data
  notes ui                                  # Interactive UI

REFERENCES:
  Items are referenced by their position in 'notes list', by full id or by
  an id prefix of at least 4 characters.

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > .env file > defaults

  Storage Configuration:
    NOTES_STORAGE_BACKEND                  sqlite, file or memory (default: sqlite)
    NOTES_STORAGE_DIR                      Storage directory (default: ~/.notes)
    NOTES_STORAGE_FILENAME                 Database filename (default: notes.db)
    NOTES_STORAGE_KEY                      Record key (default: items)
    NOTES_STORAGE_FORMAT                   json or yaml (default: json)
    NOTES_STORAGE_WRITE_TIMEOUT            Write timeout (default: 5s)

  Display Configuration:
    NOTES_DISPLAY_TIME_FORMAT              Time format (default: 2006-01-02 15:04)
    NOTES_DISPLAY_THEME                    classic or mono (default: classic)
    NOTES_DISPLAY_NO_COLOR                 Disable colour (default: false)
    NOTES_DISPLAY_MARKDOWN                 Render markdown in show (default: true)
    NOTES_DISPLAY_CONTENT_WIDTH            Content width (default: 60)

  Application Configuration:
    NOTES_APP_TIMEOUT                      Command timeout (default: 60s)
    NOTES_LOG_LEVEL                        debug, info, warn, error (default: warn)
    NOTES_REMINDERS_ENABLED                Reminders in the UI (default: true)
    NOTES_ENV                              development, testing or production

WHEN FORMATS:
  today, tomorrow, 2025-01-05, "2025-01-05 17:00", RFC 3339,
  30m, 2h, 1d, 2w, 3mo, 1y (from now), none

GETTING HELP:
  notes [command] --help                    # Get help for any specific command
  notes completion bash                     # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Apply configuration overrides from flags before any command runs
			if err := root.getConfigFromFlags(cmd); err != nil {
				return err
			}
			root.log = logging.New(logging.Options{
				Level:   root.config.Application.LogLevel,
				Format:  root.config.Application.LogFormat,
				Verbose: root.config.Application.Verbose,
				Output:  root.errOut,
			})
			return nil
		},
	}
	root.cmd.SetOut(out)
	root.cmd.SetErr(errOut)

	// Add global flags for configuration overrides
	root.addGlobalFlags()

	// Add all subcommands
	root.addSubcommands()

	return root
}

// Execute runs the root command and closes the store afterwards
func (r *RootCommand) Execute() error {
	defer r.closeSession()
	return r.cmd.Execute()
}

// SetArgs sets the arguments used instead of os.Args
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Storage configuration
	flags.String("storage-backend", "", "Storage backend: sqlite, file, memory (overrides NOTES_STORAGE_BACKEND)")
	flags.String("storage-dir", "", "Storage directory (overrides NOTES_STORAGE_DIR)")
	flags.String("storage-filename", "", "Database filename (overrides NOTES_STORAGE_FILENAME)")
	flags.String("storage-key", "", "Record key (overrides NOTES_STORAGE_KEY)")
	flags.String("storage-format", "", "Storage format: json, yaml (overrides NOTES_STORAGE_FORMAT)")

	// Display configuration
	flags.String("time-format", "", "Time display format (overrides NOTES_DISPLAY_TIME_FORMAT)")
	flags.String("theme", "", "Colour theme: classic, mono (overrides NOTES_DISPLAY_THEME)")
	flags.Bool("no-color", false, "Disable colour output (overrides NOTES_DISPLAY_NO_COLOR)")
	flags.Bool("no-markdown", false, "Show raw content instead of rendered markdown (overrides NOTES_DISPLAY_MARKDOWN)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Command timeout (overrides NOTES_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose logging (overrides NOTES_APP_VERBOSE)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides NOTES_LOG_LEVEL)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	// Add command
	var addOpts AddOptions
	addCmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a note or task",
		Long: `Add a new note, or a task with --task. Giving a due date makes it a task.

Examples:
  notes add "Ideas for the garden"
  notes add --task "Renew passport"
  notes add --due "2025-01-05 17:00" "Submit report"`,
		Args: cobra.MinimumNArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewAddCommand(app, addOpts).Execute(ctx, args)
		}),
	}
	addCmd.Flags().BoolVarP(&addOpts.Task, "task", "t", false, "Add a task instead of a note")
	addCmd.Flags().StringVarP(&addOpts.Due, "due", "d", "", "Due date of the task")

	// List command
	var listOpts ListOptions
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes and tasks",
		Long: `List items newest first, numbered by position.

Examples:
  notes list                     # Everything
  notes list --view notes        # Notes only
  notes list --sort due          # Tasks, soonest due first, undated last
  notes list --group             # Notes, pending and done sections
  notes list --columns           # Two columns`,
		Args: cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewListCommand(app, listOpts).Execute(ctx, args)
		}),
	}
	listCmd.Flags().StringVar(&listOpts.View, "view", "", "View: all, notes, tasks (default from NOTES_LIST_DEFAULT_VIEW)")
	listCmd.Flags().StringVar(&listOpts.Sort, "sort", "", "Sort order: due")
	listCmd.Flags().BoolVar(&listOpts.Group, "group", false, "Group into notes, pending and done")
	listCmd.Flags().BoolVar(&listOpts.Columns, "columns", false, "Show two columns")

	// Done command
	doneCmd := &cobra.Command{
		Use:   "done [ref]",
		Short: "Toggle completion of a task",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewDoneCommand(app).Execute(ctx, args)
		}),
	}

	// Due command
	dueCmd := &cobra.Command{
		Use:   "due [ref] [when]",
		Short: "Set or clear the due date of a task",
		Long: `Set the due date of a task, or clear it with 'none'.

Examples:
  notes due 2 tomorrow
  notes due 2 2025-01-05 17:00
  notes due 2 3d
  notes due 2 none`,
		Args: cobra.MinimumNArgs(2),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewDueCommand(app).Execute(ctx, args)
		}),
	}

	// Edit command
	var editOpts EditOptions
	editCmd := &cobra.Command{
		Use:   "edit [ref] [content]",
		Short: "Replace the content of an item",
		Long: `Replace the content of an item. The due date is kept unless --due or
--clear-due is given.`,
		Args: cobra.MinimumNArgs(2),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewEditCommand(app, editOpts).Execute(ctx, args)
		}),
	}
	editCmd.Flags().StringVarP(&editOpts.Due, "due", "d", "", "New due date")
	editCmd.Flags().BoolVar(&editOpts.ClearDue, "clear-due", false, "Remove the due date")

	// Delete command
	rmCmd := &cobra.Command{
		Use:     "rm [ref...]",
		Aliases: []string{"delete"},
		Short:   "Delete items",
		Long: `Delete one or more items. Positions refer to the list before anything
is removed, so 'notes rm 1 2' deletes the first two items.

This operation cannot be undone.`,
		Args: cobra.MinimumNArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewDeleteCommand(app).Execute(ctx, args)
		}),
	}

	// Show command
	showCmd := &cobra.Command{
		Use:   "show [ref]",
		Short: "Show one item in full",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewShowCommand(app).Execute(ctx, args)
		}),
	}

	// Export command
	var exportFormat string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all items",
		Long: `Write every item to standard output.

Supported formats:
  json - the storage record format
  yaml - the same records as YAML
  csv  - one row per item with its position

Example:
  notes export --format csv > notes.csv`,
		Args: cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewExportCommand(app, exportFormat).Execute(ctx, args)
		}),
	}
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Export format: json, yaml, csv (default from NOTES_EXPORT_DEFAULT_FORMAT)")

	// Backups command
	var backupsOpts BackupsOptions
	backupsCmd := &cobra.Command{
		Use:   "backups [name...]",
		Short: "List or discard copies of unreadable saved data",
		Long: `When saved items cannot be read, notes starts with an empty list and keeps
the unreadable data under a backup name. Backups are never loaded again;
inspect them with --show and remove them once recovered.

Examples:
  notes backups                             # List backups
  notes backups --show 1734426000 > old.json
  notes backups --delete 1734426000
  notes backups --purge`,
		RunE: r.run(func(ctx context.Context, app *App, args []string) error {
			return NewBackupsCommand(app, backupsOpts).Execute(ctx, args)
		}),
	}
	backupsCmd.Flags().BoolVar(&backupsOpts.Show, "show", false, "Print the raw content of one backup")
	backupsCmd.Flags().BoolVar(&backupsOpts.Delete, "delete", false, "Delete the named backups")
	backupsCmd.Flags().BoolVar(&backupsOpts.Purge, "purge", false, "Delete every backup")
	backupsCmd.MarkFlagsMutuallyExclusive("show", "delete", "purge")

	// UI command
	uiCmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive UI",
		Long: `Browse and edit items interactively. Reminders for due tasks are shown
while the UI is open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runUI()
		},
	}

	// Add all subcommands to root
	r.cmd.AddCommand(
		addCmd,
		listCmd,
		doneCmd,
		dueCmd,
		editCmd,
		rmCmd,
		showCmd,
		exportCmd,
		backupsCmd,
		uiCmd,
	)
}

// run wraps a command handler with the command timeout and the store session
func (r *RootCommand) run(handler func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
		defer cancel()

		app, err := r.getApp(ctx)
		if err != nil {
			return err
		}
		return handler(ctx, app, args)
	}
}

// runUI starts the interactive UI. Log output would corrupt the screen, so it
// is only kept when NOTES_DEBUG is set.
func (r *RootCommand) runUI() error {
	if !logging.DebugEnabled() {
		r.log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	openCtx, openCancel := context.WithTimeout(ctx, r.getAppTimeout())
	_, err := r.getApp(openCtx)
	openCancel()
	if err != nil {
		return err
	}

	return tui.Run(ctx, tui.Options{
		API:       r.session.api,
		Subscribe: r.session.store.Subscribe,
		Config:    r.config,
		Logger:    r.log,
		Warnings:  r.setWarningSink,
	})
}

// getApp opens the store on first use
func (r *RootCommand) getApp(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}

	format, err := codec.ParseFormat(r.config.Storage.Format)
	if err != nil {
		return nil, fmt.Errorf("storage format: %w", err)
	}
	itemCodec, err := codec.New(format)
	if err != nil {
		return nil, err
	}

	kv, err := r.open(ctx, r.config, r.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	app := NewAppWithOutput(nil, r.config, r.out, r.errOut, r.log)
	r.app = app
	r.setWarningSink(app.warn)

	st := store.New(ctx, kv, store.Options{
		Key:          r.config.Storage.Key,
		Codec:        itemCodec,
		Validator:    validation.NewItemValidatorWithConfig(r.config),
		Logger:       r.log,
		OnWarning:    r.warning,
		WriteTimeout: r.config.GetWriteTimeout(),
	})
	app.itemsAPI = api.NewItemsAPI(st, timeNow)
	app.backups = st
	r.session = &session{kv: kv, store: st, api: app.itemsAPI}

	return app, nil
}

// closeSession waits for pending writes and closes the storage
func (r *RootCommand) closeSession() {
	if r.session == nil {
		return
	}
	s := r.session
	r.session = nil

	ctx, cancel := context.WithTimeout(context.Background(), r.config.GetWriteTimeout())
	defer cancel()
	if err := s.store.Close(ctx); err != nil {
		r.warning(err)
	}
	if err := s.kv.Close(); err != nil {
		r.log.Warn("closing storage failed", zap.Error(err))
	}
	_ = r.log.Sync()
}

// warning delivers a store warning to the current sink
func (r *RootCommand) warning(err error) {
	r.warnMu.Lock()
	sink := r.warnSink
	r.warnMu.Unlock()
	if sink != nil {
		sink(err)
	}
}

// setWarningSink redirects store warnings, e.g. into the UI status line
func (r *RootCommand) setWarningSink(sink func(error)) {
	r.warnMu.Lock()
	r.warnSink = sink
	r.warnMu.Unlock()
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second // Default timeout
}

// getConfigFromFlags updates the configuration with the flags the user set
func (r *RootCommand) getConfigFromFlags(cmd *cobra.Command) error {
	if r.config == nil {
		return fmt.Errorf("configuration not initialized")
	}

	flags := cmd.Flags()
	overrides := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	// Storage configuration
	overrides.StorageBackend = stringFlag("storage-backend")
	overrides.StorageDir = stringFlag("storage-dir")
	overrides.StorageFilename = stringFlag("storage-filename")
	overrides.StorageKey = stringFlag("storage-key")
	overrides.StorageFormat = stringFlag("storage-format")

	// Display configuration
	overrides.TimeFormat = stringFlag("time-format")
	overrides.Theme = stringFlag("theme")
	if flags.Changed("no-color") {
		noColor, _ := flags.GetBool("no-color")
		overrides.NoColor = &noColor
	}
	if flags.Changed("no-markdown") {
		noMarkdown, _ := flags.GetBool("no-markdown")
		markdown := !noMarkdown
		overrides.Markdown = &markdown
	}

	// Application configuration
	if flags.Changed("app-timeout") {
		timeout, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &timeout
	}
	if flags.Changed("verbose") {
		verbose, _ := flags.GetBool("verbose")
		overrides.Verbose = &verbose
	}
	overrides.LogLevel = stringFlag("log-level")

	return config.ApplyOverrides(r.config, overrides)
}
