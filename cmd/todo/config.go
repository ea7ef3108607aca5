package main

import (
	"os"

	"todo-sync/internal/config"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// getEnvironment determines the current environment from TODO_ENV
func getEnvironment() Environment {
	switch Environment(os.Getenv("TODO_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		// Default to production for safety
		return Production
	}
}

// applyDefaults adjusts the built-in defaults for env. The config file,
// environment variables and flags still override them.
func (env Environment) applyDefaults(cfg *config.Config) {
	switch env {
	case Development:
		// A local database and session in the working directory
		cfg.Database.Dir = "."
		cfg.Database.Filename = "todo.db"
		cfg.Auth.SessionFile = ".todo-session.json"
	case Testing:
		// Nothing outlives the process
		cfg.Database.Filename = ":memory:"
		cfg.Auth.SessionFile = ""
	}
}

// newLoader creates the configuration loader for env
func newLoader(env Environment) *config.Loader {
	return config.NewLoader().WithDefaults(env.applyDefaults)
}
