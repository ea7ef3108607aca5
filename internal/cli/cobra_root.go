package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"todo-sync/internal/config"
	"todo-sync/internal/logging"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd       *cobra.Command
	loader    *config.Loader
	bootstrap BootstrapFunc
	config    *config.Config
	app       *App
	closeFn   func() error
}

// NewRootCommand creates the root cobra command with global flags. The
// configuration is loaded and the stack built once flags are parsed.
func NewRootCommand(loader *config.Loader, bootstrap BootstrapFunc) *RootCommand {
	if bootstrap == nil {
		bootstrap = DefaultBootstrap
	}
	root := &RootCommand{
		loader:    loader,
		bootstrap: bootstrap,
	}

	root.cmd = &cobra.Command{
		Use:   "todo",
		Short: "A synced to-do list for the command line",
		Long: `todo keeps a personal to-do list in a hosted Supabase project, or in a
local SQLite file.

EXAMPLES:
  todo signup ana@example.com Ana          # Create an account (prompts for a password)
  todo login ana@example.com               # Log in
  todo add "Buy milk" due=tomorrow         # Add a task with a due date
  todo add "Call Bo" "desc=about Friday"   # Add a task with a description
  todo list                                # Numbered list of every task
  todo search milk                         # Tasks whose title or description match
  todo done 2                              # Complete (or reopen) task 2
  todo edit 2 title="Buy oat milk" due=    # Rename task 2 and clear its due date
  todo delete                              # Pick a task to delete

Overdue tasks cannot be completed until their due date is moved.

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  The config file is ~/.todo/config.toml, or the file named by TODO_CONFIG.

  Backend Configuration:
    TODO_BACKEND                           supabase or sqlite (default: sqlite)
    TODO_SUPABASE_URL                      Supabase project URL
    TODO_SUPABASE_ANON_KEY                 Supabase anon key
    TODO_TABLE                             Task table (default: tareas)
    TODO_REQUEST_TIMEOUT                   Request timeout (default: 10s)

  Database Configuration (sqlite backend):
    TODO_DB_DIR                            Database directory (default: ~/.todo)
    TODO_DB_FILENAME                       Database filename (default: todo.db)
    TODO_JWT_SECRET                        Token signing secret (default: generated)

  Session, Cache and Display:
    TODO_SESSION_FILE                      Saved session (default: ~/.todo/session.json)
    TODO_CACHE_STALE_TIME                  Cache freshness (default: 30s)
    TODO_DISPLAY_DATE_FORMAT               Date format (default: 2006-01-02)
    TODO_DISPLAY_COLOR / NO_COLOR          Colored output (default: true)

  Application Configuration:
    TODO_APP_TIMEOUT                       Application timeout (default: 60s)
    TODO_APP_VERBOSE                       Enable verbose output (default: false)
    TODO_DEBUG                             Debug logging to stderr`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.initialize(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command returns the underlying cobra command.
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command and releases the stack afterwards, also
// when the command failed.
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a parent context.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if r.closeFn != nil {
		if closeErr := r.closeFn(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.closeFn = nil
	}
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Backend configuration
	flags.String("backend", "", "Backend kind, supabase or sqlite (overrides TODO_BACKEND)")
	flags.String("supabase-url", "", "Supabase project URL (overrides TODO_SUPABASE_URL)")
	flags.String("supabase-key", "", "Supabase anon key (overrides TODO_SUPABASE_ANON_KEY)")
	flags.Duration("request-timeout", 0, "Backend request timeout (overrides TODO_REQUEST_TIMEOUT)")

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides TODO_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TODO_DB_FILENAME)")

	// Session and cache configuration
	flags.String("session-file", "", "Saved session file (overrides TODO_SESSION_FILE)")
	flags.Duration("stale-time", 0, "Cache freshness (overrides TODO_CACHE_STALE_TIME)")

	// Validation configuration
	flags.Int("title-min-length", 0, "Minimum title length (overrides TODO_VALIDATION_TITLE_MIN)")
	flags.Int("title-max-length", 0, "Maximum title length (overrides TODO_VALIDATION_TITLE_MAX)")

	// Display configuration
	flags.String("date-format", "", "Date display format (overrides TODO_DISPLAY_DATE_FORMAT)")
	flags.Bool("color", true, "Colored output (overrides TODO_DISPLAY_COLOR)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Application timeout (overrides TODO_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides TODO_APP_VERBOSE)")
}

// subcommand describes one registered command for cobra.
type subcommand struct {
	name  string
	use   string
	short string
	args  cobra.PositionalArgs
}

var subcommands = []subcommand{
	{name: "signup", use: "signup <email> [name]", short: "Create an account and log in", args: cobra.MinimumNArgs(1)},
	{name: "login", use: "login <email>", short: "Log in with email and password", args: cobra.ExactArgs(1)},
	{name: "logout", use: "logout", short: "Log out", args: cobra.NoArgs},
	{name: "whoami", use: "whoami", short: "Show the logged in user", args: cobra.NoArgs},
	{name: "list", use: "list", short: "List every task, numbered", args: cobra.NoArgs},
	{name: "search", use: "search <text>", short: "List tasks whose title or description contains text", args: cobra.MinimumNArgs(1)},
	{name: "add", use: "add <title> [desc=<text>] [due=YYYY-MM-DD]", short: "Add a task", args: cobra.MinimumNArgs(1)},
	{name: "edit", use: "edit <number|id> [title=<text>] [desc=<text>] [due=YYYY-MM-DD]", short: "Change a task; an empty desc= or due= clears it", args: cobra.MinimumNArgs(2)},
	{name: "done", use: "done <number|id>", short: "Complete a task, or reopen a completed one", args: cobra.ExactArgs(1)},
	{name: "delete", use: "delete [number|id]", short: "Delete a task, choosing from the list without an argument", args: cobra.MaximumNArgs(1)},
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	for _, sc := range subcommands {
		r.cmd.AddCommand(&cobra.Command{
			Use:   sc.use,
			Short: sc.short,
			Args:  sc.args,
			RunE:  r.run(sc.name),
		})
	}
}

// run dispatches a cobra command to the registered handler of that name.
func (r *RootCommand) run(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if r.app == nil {
			return errNotBootstrapped
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()
		return r.app.Run(ctx, append([]string{name}, args...))
	}
}

// initialize loads configuration with flag overrides and builds the stack.
func (r *RootCommand) initialize(cmd *cobra.Command) error {
	cfg, err := r.loader.LoadWithOverrides(r.getOverridesFromFlags(cmd))
	if err != nil {
		return err
	}
	r.config = cfg
	logging.SetVerbose(cfg.Application.Verbose)

	taskAPI, closeFn, err := r.bootstrap(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	r.closeFn = closeFn
	r.app = NewAppWithConfig(taskAPI, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	return nil
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// getOverridesFromFlags collects the flags the user actually set
func (r *RootCommand) getOverridesFromFlags(cmd *cobra.Command) *config.ConfigOverrides {
	flags := cmd.Flags()
	overrides := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	durationFlag := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}
	intFlag := func(name string) *int {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetInt(name)
		return &v
	}
	boolFlag := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}

	// Backend configuration
	overrides.Backend = stringFlag("backend")
	overrides.SupabaseURL = stringFlag("supabase-url")
	overrides.SupabaseKey = stringFlag("supabase-key")
	overrides.RequestTimeout = durationFlag("request-timeout")

	// Database configuration
	overrides.DBDir = stringFlag("db-dir")
	overrides.DBFilename = stringFlag("db-filename")

	// Session and cache configuration
	overrides.SessionFile = stringFlag("session-file")
	overrides.StaleTime = durationFlag("stale-time")

	// Validation configuration
	overrides.TitleMinLength = intFlag("title-min-length")
	overrides.TitleMaxLength = intFlag("title-max-length")

	// Display configuration
	overrides.DateFormat = stringFlag("date-format")
	overrides.Color = boolFlag("color")

	// Application configuration
	overrides.Timeout = durationFlag("app-timeout")
	overrides.Verbose = boolFlag("verbose")

	return overrides
}
