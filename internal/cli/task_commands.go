package cli

import (
	"context"
	"strings"

	"todo-sync/internal/api"
	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
)

const (
	optTitle       = "title"
	optDescription = "desc"
	optDue         = "due"
)

// parseDue reads a due date option. "today" and "tomorrow" are accepted
// besides YYYY-MM-DD.
func parseDue(value string) (domain.Date, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return domain.DateOf(timeNow()), nil
	case "tomorrow":
		return domain.DateOf(timeNow()).AddDays(1), nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, errors.NewInvalidInputError(optDue, value, "use YYYY-MM-DD, today or tomorrow")
	}
	return d, nil
}

// AddCommand handles the add command
type AddCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the add command: add <title> [desc=...] [due=YYYY-MM-DD].
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	words, opts := parseOptions(args, optDescription, optDue)
	if len(words) == 0 {
		return errors.NewInvalidInputError("command", "add", "usage: todo add <title> [desc=<text>] [due=YYYY-MM-DD]")
	}

	input := domain.NewTaskInput(strings.Join(words, " "))
	if desc, ok := opts[optDescription]; ok {
		input = input.WithDescription(desc)
	}
	if due, ok := opts[optDue]; ok {
		d, err := parseDue(due)
		if err != nil {
			return c.errorHandler.Handle("add task", err)
		}
		input = input.WithDueDate(d)
	}

	task, err := c.api.CreateTask(ctx, input)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}
	c.app.println(c.app.styles.Success.Render("Added: " + task.Title))
	return nil
}

// EditCommand handles the edit command
type EditCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the edit command: edit <number|id> [title=...] [desc=...]
// [due=...]. An empty desc or due clears the field.
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	words, opts := parseOptions(args, optTitle, optDescription, optDue)
	if len(words) != 1 || len(opts) == 0 {
		return errors.NewInvalidInputError("command", "edit", "usage: todo edit <number|id> [title=<text>] [desc=<text>] [due=YYYY-MM-DD]")
	}

	var patch domain.TaskPatch
	if title, ok := opts[optTitle]; ok {
		patch.Title = &title
	}
	if desc, ok := opts[optDescription]; ok {
		if strings.TrimSpace(desc) == "" {
			patch.ClearDescription = true
		} else {
			patch.Description = &desc
		}
	}
	if due, ok := opts[optDue]; ok {
		if strings.TrimSpace(due) == "" {
			patch.ClearDueDate = true
		} else {
			d, err := parseDue(due)
			if err != nil {
				return c.errorHandler.Handle("edit task", err)
			}
			patch.DueDate = &d
		}
	}

	task, err := c.app.resolveTask(ctx, words[0])
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}
	updated, err := c.api.UpdateTask(ctx, task.ID, patch)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}
	c.app.println(c.app.styles.Success.Render("Updated: " + updated.Title))
	return nil
}

// DoneCommand handles the done command
type DoneCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewDoneCommand creates a new done command handler
func NewDoneCommand(app *App) *DoneCommand {
	return &DoneCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the done command: done <number|id>. It toggles completion,
// so running it on a completed task reopens it.
func (c *DoneCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "done", "usage: todo done <number|id>")
	}

	task, err := c.app.resolveTask(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("complete task", err)
	}
	updated, err := c.api.ToggleComplete(ctx, task.ID)
	if err != nil {
		return c.errorHandler.Handle("complete task", err)
	}
	if updated.Completed {
		c.app.println(c.app.styles.Success.Render("Completed: " + updated.Title))
	} else {
		c.app.println("Reopened: " + updated.Title)
	}
	return nil
}
