package cli

import (
	"context"
	"sort"
	"strings"

	"todo-sync/internal/errors"
)

// Command represents a CLI command
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// CommandRegistry manages all available commands
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	// Session commands
	registry.Register("signup", NewSignUpCommand(app))
	registry.Register("login", NewLoginCommand(app))
	registry.Register("logout", NewLogoutCommand(app))
	registry.Register("whoami", NewWhoAmICommand(app))

	// Task commands
	registry.Register("list", NewListCommand(app))
	registry.Register("search", NewSearchCommand(app))
	registry.Register("add", NewAddCommand(app))
	registry.Register("edit", NewEditCommand(app))
	registry.Register("done", NewDoneCommand(app))
	registry.Register("delete", NewDeleteCommand(app))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return command.Execute(ctx, args)
}

// Names returns the registered command names in order.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetUsage returns the usage string for the CLI
func (r *CommandRegistry) GetUsage() string {
	return "usage: todo <command> [args], where command is one of " + strings.Join(r.Names(), ", ")
}
