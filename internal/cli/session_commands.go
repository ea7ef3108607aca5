package cli

import (
	"context"
	"strings"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// SignUpCommand handles the signup command
type SignUpCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewSignUpCommand creates a new signup command handler
func NewSignUpCommand(app *App) *SignUpCommand {
	return &SignUpCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the signup command: signup <email> [display name]. The
// password is read from input.
func (c *SignUpCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "signup", "usage: todo signup <email> [name]")
	}
	email := args[0]
	name := strings.Join(args[1:], " ")

	password, err := c.app.prompt("Password: ")
	if err != nil {
		return c.errorHandler.Handle("sign up", err)
	}

	session, err := c.api.SignUp(ctx, email, password, name)
	if err != nil {
		return c.errorHandler.Handle("sign up", err)
	}
	if session == nil {
		c.app.println("Account created. Confirm your email address, then log in.")
		return nil
	}
	c.app.println(c.app.styles.Success.Render("Signed up and logged in as " + displayName(session.DisplayName, session.Email)))
	return nil
}

// LoginCommand handles the login command
type LoginCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewLoginCommand creates a new login command handler
func NewLoginCommand(app *App) *LoginCommand {
	return &LoginCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the login command: login <email>.
func (c *LoginCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "login", "usage: todo login <email>")
	}

	password, err := c.app.prompt("Password: ")
	if err != nil {
		return c.errorHandler.Handle("log in", err)
	}

	session, err := c.api.SignIn(ctx, args[0], password)
	if err != nil {
		return c.errorHandler.Handle("log in", err)
	}
	c.app.println(c.app.styles.Success.Render("Logged in as " + displayName(session.DisplayName, session.Email)))
	return nil
}

// LogoutCommand handles the logout command
type LogoutCommand struct {
	app          *App
	api          api.TaskAPI
	errorHandler *ErrorHandler
}

// NewLogoutCommand creates a new logout command handler
func NewLogoutCommand(app *App) *LogoutCommand {
	return &LogoutCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute runs the logout command
func (c *LogoutCommand) Execute(ctx context.Context, args []string) error {
	if c.api.CurrentSession() == nil {
		c.app.println("Not logged in.")
		return nil
	}
	if err := c.api.SignOut(ctx); err != nil {
		return c.errorHandler.Handle("log out", err)
	}
	c.app.println("Logged out.")
	return nil
}

// WhoAmICommand handles the whoami command
type WhoAmICommand struct {
	app *App
	api api.TaskAPI
}

// NewWhoAmICommand creates a new whoami command handler
func NewWhoAmICommand(app *App) *WhoAmICommand {
	return &WhoAmICommand{app: app, api: app.api}
}

// Execute runs the whoami command
func (c *WhoAmICommand) Execute(ctx context.Context, args []string) error {
	session := c.api.CurrentSession()
	if session == nil {
		c.app.println("Not logged in.")
		return nil
	}
	if session.DisplayName != "" {
		c.app.printf("%s <%s>\n", session.DisplayName, session.Email)
		return nil
	}
	c.app.println(session.Email)
	return nil
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
