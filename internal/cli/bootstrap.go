package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"todo-sync/internal/api"
	"todo-sync/internal/auth"
	"todo-sync/internal/cache"
	"todo-sync/internal/config"
	"todo-sync/internal/logging"
	"todo-sync/internal/repository"
	"todo-sync/internal/services"
	"todo-sync/internal/validation"
)

// Stack is everything below the command line, wired from one configuration.
type Stack struct {
	API     api.TaskAPI
	Backend repository.Backend
}

// BootstrapFunc builds the task API once configuration is final. The
// returned func releases what it opened.
type BootstrapFunc func(ctx context.Context, cfg *config.Config) (api.TaskAPI, func() error, error)

// Bootstrap opens the configured backend, restores the saved session and
// wires the service, cache and API on top.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Stack, error) {
	backend, err := config.CreateBackend(cfg)
	if err != nil {
		return nil, err
	}

	var store auth.SessionStore = &auth.MemoryStore{}
	if cfg.Auth.SessionFile != "" {
		store = auth.NewFileStore(cfg.Auth.SessionFile)
	}
	sessions := auth.NewManager(backend,
		auth.WithStore(store),
		auth.WithCredentialValidator(validation.NewCredentialValidator()),
	)
	if _, err := sessions.Restore(ctx); err != nil {
		// A stale session is not fatal: the user is simply signed out.
		logging.Logger().Warn("restore session", "err", err)
	}

	taskValidator := validation.NewTaskValidatorWithConfig(cfg)
	container := &services.ServiceContainer{
		TaskService: services.NewTaskService(backend, sessions, taskValidator),
	}
	taskCache := cache.New(container.TaskService, cache.OptionsFromConfig(cfg.Cache))
	taskAPI := api.New(container.TaskService, taskCache, sessions,
		api.WithTaskValidator(taskValidator),
		api.WithWriteTimeout(cfg.Application.Timeout),
	)

	logging.Debugf("bootstrapped %s backend", cfg.Backend.Kind)
	return &Stack{
		API:     taskAPI,
		Backend: backend,
	}, nil
}

// Close stops the API and closes the backend.
func (s *Stack) Close() error {
	s.API.Close()
	if err := s.Backend.Close(); err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return nil
}

// DefaultBootstrap adapts Bootstrap to a BootstrapFunc.
func DefaultBootstrap(ctx context.Context, cfg *config.Config) (api.TaskAPI, func() error, error) {
	stack, err := Bootstrap(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return stack.API, stack.Close, nil
}

// errNotBootstrapped is returned when a command runs before the stack exists.
var errNotBootstrapped = stderrors.New("application not initialized")
