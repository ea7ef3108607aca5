package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"todo-sync/internal/api"
	"todo-sync/internal/config"
	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App represents the main CLI application
type App struct {
	api      api.TaskAPI
	config   *config.Config
	in       *bufio.Reader
	out      io.Writer
	styles   *Styles
	registry *CommandRegistry
}

// NewApp creates a CLI application on stdin and stdout with default settings.
func NewApp(taskAPI api.TaskAPI) *App {
	return NewAppWithConfig(taskAPI, config.NewConfig(), os.Stdin, os.Stdout)
}

// NewAppWithConfig creates a CLI application with explicit configuration
// and streams.
func NewAppWithConfig(taskAPI api.TaskAPI, cfg *config.Config, in io.Reader, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	app := &App{
		api:    taskAPI,
		config: cfg,
		in:     bufio.NewReader(in),
		out:    out,
		styles: NewStyles(out, cfg.Display.Color),
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// Run executes the CLI application with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "", a.registry.GetUsage())
	}
	return a.registry.Execute(ctx, args[0], args[1:])
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}

// prompt writes label and reads one line of input.
func (a *App) prompt(label string) (string, error) {
	a.printf("%s", label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.NewInvalidInputError("input", "", "no input given")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// resolveTask turns a list position, as printed by the list command, or a
// task id into a task. Positions refer to the full list.
func (a *App) resolveTask(ctx context.Context, ref string) (*domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.NewInvalidInputError("task", ref, "a list number or task id is required")
	}
	tasks, err := a.api.Tasks(ctx, "")
	if err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return nil, errors.NewInvalidInputError("task", ref, fmt.Sprintf("choose a number between 1 and %d", len(tasks)))
		}
		return tasks[n-1], nil
	}
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
	}
	return nil, errors.NewNotFoundError("task", ref)
}

// parseOptions splits args into positional words and key=value options.
// Only the given keys are treated as options; anything else is positional.
func parseOptions(args []string, keys ...string) ([]string, map[string]string) {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	var positional []string
	options := make(map[string]string)
	for _, arg := range args {
		if k, v, ok := strings.Cut(arg, "="); ok && allowed[k] {
			options[k] = v
			continue
		}
		positional = append(positional, arg)
	}
	return positional, options
}
