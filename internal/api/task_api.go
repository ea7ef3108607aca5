package api

import (
	"context"

	"github.com/google/uuid"

	"todo-sync/internal/cache"
	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
	"todo-sync/internal/logging"
)

// ========== Reads ==========

// Tasks returns the list for query through the cache. An empty query is the
// full list.
func (a *taskAPI) Tasks(ctx context.Context, query string) ([]*domain.Task, error) {
	tasks, err := a.cache.Get(ctx, cache.Search(query))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.FromTransport("list tasks", err)
	}
	return tasks, nil
}

// ========== Writes ==========

// CreateTask shows the task in the list at once under a placeholder id,
// then stores it under the id the placeholder was made for. The placeholder
// is replaced by the stored task, or removed if the store refuses it.
func (a *taskAPI) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	if err := a.validator.ValidateTaskInput(input); err != nil {
		return nil, errors.NewValidationError("invalid task", err)
	}
	input = a.validator.NormalizeInput(input)

	session := a.sessions.Current()
	if session == nil {
		return nil, errors.NewAuthRequiredError("create task")
	}

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	pending := a.cache.ApplyOptimisticCreate(domain.Task{
		ID:          input.ID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		OwnerID:     session.UserID,
		CreatedAt:   a.now(),
	})

	return a.detach(ctx, func(wctx context.Context) (*domain.Task, error) {
		created, err := a.service.CreateTask(wctx, input)
		if err != nil {
			pending.Rollback()
			return nil, err
		}
		pending.Confirm(*created)
		a.cache.InvalidateSearches()
		return created, nil
	})
}

// UpdateTask applies a partial update. Completing an overdue task is refused
// before anything is sent, loading the list first if the task is not cached.
func (a *taskAPI) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if cache.IsPlaceholder(id) {
		return nil, stillSaving(id)
	}
	if patch.Completed != nil && *patch.Completed {
		if err := a.validator.ValidateTaskID(id); err != nil {
			return nil, errors.NewValidationError("invalid task ID", err)
		}
		current, err := a.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		candidate := patch.Apply(*current)
		candidate.Completed = current.Completed
		if !domain.CanComplete(candidate, a.now()) {
			return nil, overdue(id)
		}
	}

	return a.detach(ctx, func(wctx context.Context) (*domain.Task, error) {
		updated, err := a.service.UpdateTask(wctx, id, patch)
		a.afterWrite(err)
		return updated, err
	})
}

// ToggleComplete flips the completed flag of a listed task.
func (a *taskAPI) ToggleComplete(ctx context.Context, id string) (*domain.Task, error) {
	if cache.IsPlaceholder(id) {
		return nil, stillSaving(id)
	}
	if err := a.validator.ValidateTaskID(id); err != nil {
		return nil, errors.NewValidationError("invalid task ID", err)
	}

	task, err := a.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	now := a.now()
	if !domain.CanComplete(*task, now) {
		return nil, overdue(id)
	}

	return a.detach(ctx, func(wctx context.Context) (*domain.Task, error) {
		updated, err := a.service.CompleteTask(wctx, *task, now)
		a.afterWrite(err)
		return updated, err
	})
}

// DeleteTask removes a task.
func (a *taskAPI) DeleteTask(ctx context.Context, id string) error {
	if cache.IsPlaceholder(id) {
		return stillSaving(id)
	}
	_, err := a.detach(ctx, func(wctx context.Context) (*domain.Task, error) {
		err := a.service.DeleteTask(wctx, id)
		a.afterWrite(err)
		return nil, err
	})
	return err
}

// ========== Helpers ==========

// lookup finds a task in the cache, loading the full list once if needed.
func (a *taskAPI) lookup(ctx context.Context, id string) (*domain.Task, error) {
	if task, ok := a.cache.Find(id); ok {
		return task, nil
	}
	if _, err := a.Tasks(ctx, ""); err != nil {
		return nil, err
	}
	if task, ok := a.cache.Find(id); ok {
		return task, nil
	}
	return nil, errors.NewNotFoundError("task", id)
}

// afterWrite invalidates every list once the store has changed, or once it
// has shown the list to be out of date.
func (a *taskAPI) afterWrite(err error) {
	if err == nil || errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		a.cache.InvalidateAll()
	}
}

type writeResult struct {
	task *domain.Task
	err  error
}

// detach runs write on a context that outlives the caller's. If the caller
// gives up, the write still completes and updates the cache; only its result
// is dropped.
func (a *taskAPI) detach(ctx context.Context, write func(context.Context) (*domain.Task, error)) (*domain.Task, error) {
	done := make(chan writeResult, 1)
	a.writes.Add(1)
	go func() {
		defer a.writes.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.writeTimeout)
		defer cancel()
		task, err := write(wctx)
		done <- writeResult{task: task, err: err}
	}()

	select {
	case r := <-done:
		return r.task, r.err
	case <-ctx.Done():
		logging.Debugf("caller left before write finished: %v", ctx.Err())
		return nil, ctx.Err()
	}
}

func stillSaving(id string) error {
	return errors.NewValidationError("task is still being saved", nil).WithContext("task_id", id)
}

func overdue(id string) error {
	return errors.NewValidationError("overdue tasks cannot be completed", nil).WithContext("task_id", id)
}
