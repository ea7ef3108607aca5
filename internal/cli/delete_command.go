package cli

import (
	"context"
	"strings"

	"todo-sync/internal/api"
	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the delete command: delete [number|id]. Without an argument
// the task is chosen from the list.
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.NewInvalidInputError("command", "delete", "usage: todo delete [number|id]")
	}

	var task *domain.Task
	var err error
	if len(args) == 1 {
		task, err = c.app.resolveTask(ctx, args[0])
	} else {
		task, err = c.choose(ctx)
	}
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}
	if task == nil {
		c.app.println("Delete cancelled.")
		return nil
	}

	if err := c.api.DeleteTask(ctx, task.ID); err != nil {
		return c.errorHandler.Handle("delete task", err)
	}
	c.app.println("Deleted task: " + task.Title)
	return nil
}

// choose lists the tasks and reads a number. It returns nil when the user
// quits.
func (c *DeleteCommand) choose(ctx context.Context) (*domain.Task, error) {
	tasks, err := c.api.Tasks(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, errors.NewInvalidInputError("task", "", "there are no tasks to delete")
	}

	c.app.println("Select a task to delete:")
	renderTasks(c.app.out, c.app.styles, tasks, timeNow(), c.app.config.Display.DateFormat, true)
	input, err := c.app.prompt("Enter number to delete, or 'q' to quit: ")
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(strings.TrimSpace(input), "q") {
		return nil, nil
	}
	return c.app.resolveTask(ctx, input)
}
