package services

import (
	"context"
	"time"

	"todo-sync/internal/domain"
)

// TaskService is the task repository as the rest of the client sees it:
// domain types in, domain types out, with the session read at call time.
type TaskService interface {
	// Reads
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	SearchTasks(ctx context.Context, query string) ([]*domain.Task, error)

	// Writes
	CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error

	// CompleteTask flips the completed flag, refusing to complete an overdue task.
	CompleteTask(ctx context.Context, task domain.Task, now time.Time) (*domain.Task, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TaskService TaskService
}
