package cli

import (
	"context"
	"strings"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the list command. The rows are numbered so later commands
// can refer to them.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return errors.NewInvalidInputError("command", "list", "usage: todo list (use search to filter)")
	}

	tasks, err := c.api.Tasks(ctx, "")
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	if len(tasks) == 0 {
		c.app.println("No tasks yet. Add one with: todo add <title>")
		return nil
	}
	renderTasks(c.app.out, c.app.styles, tasks, timeNow(), c.app.config.Display.DateFormat, true)
	return nil
}

// SearchCommand handles the search command
type SearchCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewSearchCommand creates a new search command handler
func NewSearchCommand(app *App) *SearchCommand {
	return &SearchCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the search command: search <text>. Title and description are
// matched case-insensitively.
func (c *SearchCommand) Execute(ctx context.Context, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.NewInvalidInputError("command", "search", "usage: todo search <text>")
	}

	tasks, err := c.api.Tasks(ctx, text)
	if err != nil {
		return c.errorHandler.Handle("search tasks", err)
	}
	if len(tasks) == 0 {
		c.app.printf("No tasks match %q.\n", text)
		return nil
	}
	renderTasks(c.app.out, c.app.styles, tasks, timeNow(), c.app.config.Display.DateFormat, false)
	return nil
}
