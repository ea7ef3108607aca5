package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
)

func TestParseDue(t *testing.T) {
	today := freezeTime(t, "2030-06-10")

	tests := []struct {
		value   string
		want    domain.Date
		wantErr bool
	}{
		{value: "today", want: today},
		{value: "Tomorrow", want: today.AddDays(1)},
		{value: "2030-12-24", want: domain.NewDate(2030, 12, 24)},
		{value: "next week", wantErr: true},
		{value: "24/12/2030", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseDue(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddCommand_Execute(t *testing.T) {
	today := freezeTime(t, "2030-06-10")

	tests := []struct {
		name     string
		args     []string
		wantTask *domain.Task
		wantOut  string
		wantErr  string
	}{
		{
			name:     "title only",
			args:     []string{"Buy", "milk"},
			wantTask: &domain.Task{Title: "Buy milk"},
			wantOut:  "Added: Buy milk\n",
		},
		{
			name:     "with description and due date",
			args:     []string{"Buy milk", "desc=two litres", "due=tomorrow"},
			wantTask: &domain.Task{Title: "Buy milk", Description: strPtr("two litres"), DueDate: datePtr(today.AddDays(1))},
			wantOut:  "Added: Buy milk\n",
		},
		{
			name:    "bad due date",
			args:    []string{"Buy milk", "due=soon"},
			wantErr: "failed to add task: invalid input for due: use YYYY-MM-DD, today or tomorrow",
		},
		{
			name:    "missing title",
			args:    []string{"due=today"},
			wantErr: "usage: todo add",
		},
		{
			name:    "blank title",
			args:    []string{" "},
			wantErr: "failed to add task: title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, mock, out := setupTestAppWithMockAPI(t, "")

			err := NewAddCommand(app).Execute(context.Background(), tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, mock.tasks)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, out.String())
			require.Len(t, mock.tasks, 1)
			got := mock.tasks[0]
			assert.Equal(t, tt.wantTask.Title, got.Title)
			assert.Equal(t, tt.wantTask.Description, got.Description)
			assert.Equal(t, tt.wantTask.DueDate, got.DueDate)
		})
	}
}

func TestAddCommand_RequiresSession(t *testing.T) {
	app, mock, _ := setupTestAppWithMockAPI(t, "")
	mock.session = nil

	err := NewAddCommand(app).Execute(context.Background(), []string{"Buy milk"})
	require.Error(t, err)
	assert.Equal(t, "failed to add task: You need to sign in first.", err.Error())
}

func TestEditCommand_Execute(t *testing.T) {
	today := freezeTime(t, "2030-06-10")

	tests := []struct {
		name     string
		args     []string
		wantErr  string
		validate func(t *testing.T, task *domain.Task)
	}{
		{
			name: "rename by number",
			args: []string{"1", "title=Buy oat milk"},
			validate: func(t *testing.T, task *domain.Task) {
				assert.Equal(t, "Buy oat milk", task.Title)
				assert.Equal(t, "two litres", *task.Description)
			},
		},
		{
			name: "move due date by id",
			args: []string{"task-1", "due=2030-07-01"},
			validate: func(t *testing.T, task *domain.Task) {
				require.NotNil(t, task.DueDate)
				assert.Equal(t, domain.NewDate(2030, 7, 1), *task.DueDate)
			},
		},
		{
			name: "empty values clear",
			args: []string{"1", "desc=", "due="},
			validate: func(t *testing.T, task *domain.Task) {
				assert.Nil(t, task.Description)
				assert.Nil(t, task.DueDate)
				assert.Equal(t, "Buy milk", task.Title)
			},
		},
		{
			name:    "no changes",
			args:    []string{"1"},
			wantErr: "usage: todo edit",
		},
		{
			name:    "two references",
			args:    []string{"1", "2", "title=x"},
			wantErr: "usage: todo edit",
		},
		{
			name:    "bad due date",
			args:    []string{"1", "due=someday"},
			wantErr: "failed to edit task: invalid input for due",
		},
		{
			name:    "unknown task",
			args:    []string{"9", "title=x"},
			wantErr: "failed to edit task: invalid input for task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, mock, out := setupTestAppWithMockAPI(t, "")
			task := mock.add("Buy milk", datePtr(today), false)
			desc := "two litres"
			task.Description = &desc

			err := NewEditCommand(app).Execute(context.Background(), tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, "Buy milk", mock.tasks[0].Title)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), "Updated: ")
			tt.validate(t, mock.tasks[0])
		})
	}
}

func TestDoneCommand_Execute(t *testing.T) {
	today := freezeTime(t, "2030-06-10")

	tests := []struct {
		name          string
		due           *domain.Date
		completed     bool
		wantOut       string
		wantCompleted bool
		wantErr       string
	}{
		{
			name:          "complete",
			wantOut:       "Completed: Buy milk\n",
			wantCompleted: true,
		},
		{
			name:          "due today can be completed",
			due:           datePtr(today),
			wantOut:       "Completed: Buy milk\n",
			wantCompleted: true,
		},
		{
			name:          "reopen",
			completed:     true,
			wantOut:       "Reopened: Buy milk\n",
			wantCompleted: false,
		},
		{
			name:          "reopen overdue",
			due:           datePtr(today.AddDays(-1)),
			completed:     true,
			wantOut:       "Reopened: Buy milk\n",
			wantCompleted: false,
		},
		{
			name:          "overdue is refused",
			due:           datePtr(today.AddDays(-1)),
			wantErr:       "failed to complete task: overdue tasks cannot be completed",
			wantCompleted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, mock, out := setupTestAppWithMockAPI(t, "")
			mock.add("Buy milk", tt.due, tt.completed)

			err := NewDoneCommand(app).Execute(context.Background(), []string{"1"})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOut, out.String())
			}
			assert.Equal(t, tt.wantCompleted, mock.tasks[0].Completed)
		})
	}
}

func TestDoneCommand_Usage(t *testing.T) {
	app, _, _ := setupTestAppWithMockAPI(t, "")
	err := NewDoneCommand(app).Execute(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func strPtr(s string) *string {
	return &s
}
