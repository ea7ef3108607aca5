package services

import (
	"context"
	"time"

	"todo-sync/internal/auth"
	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
	"todo-sync/internal/logging"
	"todo-sync/internal/repository"
	"todo-sync/internal/validation"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store         repository.TaskStore
	sessions      auth.SessionSource
	mapper        *domain.TaskMapper
	taskValidator *validation.TaskValidator
	now           func() time.Time
}

// Option configures a TaskService.
type Option func(*taskServiceImpl)

// WithClock overrides the time source used for the completion rule.
func WithClock(now func() time.Time) Option {
	return func(t *taskServiceImpl) { t.now = now }
}

// NewTaskService creates a new TaskService instance. A nil validator uses the
// default limits.
func NewTaskService(store repository.TaskStore, sessions auth.SessionSource, taskValidator *validation.TaskValidator, opts ...Option) TaskService {
	if taskValidator == nil {
		taskValidator = validation.NewTaskValidator()
	}
	t := &taskServiceImpl{
		store:         store,
		sessions:      sessions,
		mapper:        domain.NewTaskMapper(),
		taskValidator: taskValidator,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// requireSession returns the session in effect or an AuthRequired error.
func (t *taskServiceImpl) requireSession(ctx context.Context, operation string) (*auth.Session, error) {
	session := t.sessions.Session(ctx)
	if session == nil {
		return nil, errors.NewAuthRequiredError(operation)
	}
	return session, nil
}

// toDomain maps one stored record, treating a malformed row as a backend fault.
func (t *taskServiceImpl) toDomain(operation string, record *repository.Record) (*domain.Task, error) {
	task, err := t.mapper.FromRecord(*record)
	if err != nil {
		return nil, errors.NewBackendError(operation, err)
	}
	return &task, nil
}

// ListTasks returns every task the session may see, oldest first. Without a
// session the backend still answers, with whatever it allows anonymously.
func (t *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return t.selectTasks(ctx, "list tasks", repository.Filter{})
}

func (t *taskServiceImpl) selectTasks(ctx context.Context, operation string, filter repository.Filter) ([]*domain.Task, error) {
	records, err := t.store.Select(ctx, t.sessions.Session(ctx), filter)
	if err != nil {
		return nil, errors.FromTransport(operation, err)
	}

	tasks, err := t.mapper.FromRecordSlice(records)
	if err != nil {
		return nil, errors.NewBackendError(operation, err)
	}
	logging.Debugf("%s: %d task(s)", operation, len(tasks))
	return tasks, nil
}

// CreateTask validates the input, then inserts it owned by the current user.
func (t *taskServiceImpl) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	if err := t.taskValidator.ValidateTaskInput(input); err != nil {
		return nil, errors.NewValidationError("invalid task", err)
	}
	input = t.taskValidator.NormalizeInput(input)

	session, err := t.requireSession(ctx, "create task")
	if err != nil {
		return nil, err
	}

	record, err := t.store.Insert(ctx, session, t.mapper.ToRecord(input, session.UserID))
	if err != nil {
		return nil, errors.FromTransport("create task", err)
	}
	logging.Debugf("created task %s", record.ID)
	return t.toDomain("create task", record)
}

// UpdateTask applies a partial update. The fields the patch sets are
// validated with the same rules as a new task, and a patch that completes a
// task is checked against the stored row.
func (t *taskServiceImpl) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := t.taskValidator.ValidateTaskID(id); err != nil {
		return nil, errors.NewValidationError("invalid task ID", err)
	}
	patch = t.taskValidator.NormalizePatch(patch)
	if err := t.taskValidator.ValidatePatch(patch); err != nil {
		return nil, errors.NewValidationError("invalid task", err)
	}

	session, err := t.requireSession(ctx, "update task")
	if err != nil {
		return nil, err
	}
	if patch.Completed != nil && *patch.Completed {
		if err := t.checkCompletable(ctx, session, id, patch); err != nil {
			return nil, err
		}
	}

	record, err := t.store.Update(ctx, session, id, t.mapper.ToChanges(patch))
	if err != nil {
		return nil, errors.FromTransport("update task", err)
	}
	logging.Debugf("updated task %s", id)
	return t.toDomain("update task", record)
}

// checkCompletable refuses a completing patch when the stored task, with the
// patch's other fields applied, is overdue.
func (t *taskServiceImpl) checkCompletable(ctx context.Context, session *auth.Session, id string, patch domain.TaskPatch) error {
	records, err := t.store.Select(ctx, session, repository.Filter{ID: id})
	if err != nil {
		return errors.FromTransport("update task", err)
	}
	if len(records) == 0 {
		return errors.NewNotFoundError("task", id)
	}
	current, err := t.toDomain("update task", records[0])
	if err != nil {
		return err
	}

	candidate := patch.Apply(*current)
	candidate.Completed = current.Completed
	if !domain.CanComplete(candidate, t.now()) {
		return overdueError(id)
	}
	return nil
}

// DeleteTask removes a task permanently.
func (t *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	if err := t.taskValidator.ValidateTaskID(id); err != nil {
		return errors.NewValidationError("invalid task ID", err)
	}

	session, err := t.requireSession(ctx, "delete task")
	if err != nil {
		return err
	}

	if err := t.store.Delete(ctx, session, id); err != nil {
		return errors.FromTransport("delete task", err)
	}
	logging.Debugf("deleted task %s", id)
	return nil
}

// CompleteTask toggles the completed flag. Completing an overdue task is
// refused before any call to the store; reopening is always allowed.
func (t *taskServiceImpl) CompleteTask(ctx context.Context, task domain.Task, now time.Time) (*domain.Task, error) {
	if !domain.CanComplete(task, now) {
		return nil, overdueError(task.ID)
	}
	return t.UpdateTask(ctx, task.ID, domain.CompletionPatch(!task.Completed))
}

func overdueError(id string) error {
	return errors.NewValidationError("overdue tasks cannot be completed", nil).WithContext("task_id", id)
}
