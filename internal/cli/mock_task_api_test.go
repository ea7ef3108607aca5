package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"todo-sync/internal/api"
	"todo-sync/internal/auth"
	"todo-sync/internal/config"
	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
)

// mockTaskAPI implements the TaskAPI interface for testing. It keeps tasks
// in insertion order and applies the same completion rule as the real API.
type mockTaskAPI struct {
	tasks     []*domain.Task
	session   *auth.Session
	nextID    int
	password  string
	signUpNil bool
	failWith  error
	queries   []string
	deleted   []string
	closed    bool
}

// newMockTaskAPI creates a mock signed in as ana
func newMockTaskAPI() *mockTaskAPI {
	return &mockTaskAPI{
		session:  &auth.Session{UserID: "u1", Email: "ana@example.com", DisplayName: "Ana"},
		nextID:   1,
		password: "secret1",
	}
}

func (m *mockTaskAPI) add(title string, due *domain.Date, completed bool) *domain.Task {
	task := &domain.Task{ID: fmt.Sprintf("task-%d", m.nextID), Title: title, DueDate: due, Completed: completed, OwnerID: "u1"}
	m.nextID++
	m.tasks = append(m.tasks, task)
	return task
}

func (m *mockTaskAPI) find(id string) (*domain.Task, int) {
	for i, t := range m.tasks {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

func (m *mockTaskAPI) SignUp(ctx context.Context, email, password, name string) (*auth.Session, error) {
	if len(password) < 6 {
		return nil, errors.NewValidationError("invalid credentials", fieldErrors("password must be at least 6 characters"))
	}
	if m.signUpNil {
		return nil, nil
	}
	m.session = &auth.Session{UserID: "u-" + email, Email: email, DisplayName: name}
	return m.session, nil
}

func (m *mockTaskAPI) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	if password != m.password {
		return nil, errors.NewInvalidCredentialsError()
	}
	m.session = &auth.Session{UserID: "u-" + email, Email: email}
	return m.session, nil
}

func (m *mockTaskAPI) SignOut(ctx context.Context) error {
	m.session = nil
	return nil
}

func (m *mockTaskAPI) CurrentSession() *auth.Session {
	return m.session
}

func (m *mockTaskAPI) Tasks(ctx context.Context, query string) ([]*domain.Task, error) {
	m.queries = append(m.queries, query)
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []*domain.Task
	for _, t := range m.tasks {
		if query == "" || strings.Contains(strings.ToLower(t.Title), strings.ToLower(query)) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockTaskAPI) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	if m.session == nil {
		return nil, errors.NewAuthRequiredError("create task")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.NewValidationError("invalid task", fieldErrors("title is required"))
	}
	task := m.add(strings.TrimSpace(input.Title), input.DueDate, false)
	task.Description = input.Description
	return task, nil
}

func (m *mockTaskAPI) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	task, _ := m.find(id)
	if task == nil {
		return nil, errors.NewNotFoundError("task", id)
	}
	*task = patch.Apply(*task)
	return task, nil
}

func (m *mockTaskAPI) ToggleComplete(ctx context.Context, id string) (*domain.Task, error) {
	task, _ := m.find(id)
	if task == nil {
		return nil, errors.NewNotFoundError("task", id)
	}
	if !domain.CanComplete(*task, timeNow()) {
		return nil, errors.NewValidationError("overdue tasks cannot be completed", nil)
	}
	task.Completed = !task.Completed
	return task, nil
}

func (m *mockTaskAPI) DeleteTask(ctx context.Context, id string) error {
	_, i := m.find(id)
	if i < 0 {
		return errors.NewNotFoundError("task", id)
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockTaskAPI) Close() {
	m.closed = true
}

var _ api.TaskAPI = (*mockTaskAPI)(nil)

// setupTestAppWithMockAPI returns an app over a mock API, reading input
// from stdin and writing to the returned buffer. Color is off.
func setupTestAppWithMockAPI(t *testing.T, stdin string) (*App, *mockTaskAPI, *bytes.Buffer) {
	t.Helper()
	mock := newMockTaskAPI()
	cfg := config.NewConfig()
	cfg.Display.Color = false
	out := &bytes.Buffer{}
	return NewAppWithConfig(mock, cfg, strings.NewReader(stdin), out), mock, out
}
